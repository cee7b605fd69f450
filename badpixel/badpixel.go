// Package badpixel implements the ".badpixels" side-channel: a sidecar
// file naming sensor sites known to be defective, each replaced with
// the average of same-color neighbors at increasing radius.
package badpixel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// Entry is one defective site named by a .badpixels file: its location
// and the time it was recorded bad. Entries newer than the shot's own
// timestamp are skipped, since the defect postdates the image.
type Entry struct {
	Col, Row int
	Time     int64
}

// Find walks upward from dir (normally the current working directory)
// looking for a ".badpixels" file, stopping at the first directory that
// has one or at the filesystem root. It reports "", nil if none is
// found.
//
// dir is resolved to an absolute path up front, and each ".badpixels"
// candidate is checked with os.Lstat before opening, so a symlink
// planted in an intermediate directory cannot redirect the read to an
// attacker-chosen target.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("badpixel: resolving %q: %w", dir, err)
	}
	for {
		candidate := filepath.Join(abs, ".badpixels")
		info, err := os.Lstat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

// Load parses a .badpixels file: one entry per line, "col row
// timestamp", an optional "#" comment to end of line, blank lines
// ignored. Malformed lines are skipped rather than treated as errors.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("badpixel: opening %q: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		col, err1 := strconv.Atoi(fields[0])
		row, err2 := strconv.Atoi(fields[1])
		ts, err3 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		entries = append(entries, Entry{Col: col, Row: row, Time: ts})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("badpixel: reading: %w", err)
	}
	return entries, nil
}

// Patch replaces every listed bad site (in bounds, with Time <=
// shotTimestamp) with the average of same-color neighbors found at
// increasing radius, stopping at the first radius (1 or 2) that finds
// any. It returns the coordinates actually patched, for a caller that
// wants to report them.
func Patch(im *mosaic.Image, filters cfa.Descriptor, entries []Entry, shotTimestamp int64) []Entry {
	var fixed []Entry
	for _, e := range entries {
		if e.Col < 0 || e.Col >= im.Width || e.Row < 0 || e.Row >= im.Height {
			continue
		}
		if e.Time > shotTimestamp {
			continue
		}
		color := filters.FC(e.Row, e.Col)
		var total, n int
		for rad := 1; rad < 3 && n == 0; rad++ {
			for r := e.Row - rad; r <= e.Row+rad; r++ {
				for c := e.Col - rad; c <= e.Col+rad; c++ {
					if r < 0 || r >= im.Height || c < 0 || c >= im.Width {
						continue
					}
					if r == e.Row && c == e.Col {
						continue
					}
					if filters.FC(r, c) != color {
						continue
					}
					total += int(im.At(r, c)[color])
					n++
				}
			}
		}
		if n == 0 {
			continue
		}
		im.At(e.Row, e.Col)[color] = uint16(total / n)
		fixed = append(fixed, e)
	}
	return fixed
}
