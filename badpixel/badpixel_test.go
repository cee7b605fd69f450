package badpixel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

func TestFind_WalksUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".badpixels"), []byte("1 1 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := filepath.Join(root, ".badpixels")
	if got != want {
		t.Errorf("Find = %q, want %q", got, want)
	}
}

func TestFind_NoneFound(t *testing.T) {
	root := t.TempDir()
	got, err := Find(root)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != "" {
		t.Errorf("Find = %q, want empty", got)
	}
}

func TestLoad_SkipsCommentsAndMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".badpixels")
	content := "# a comment line\n10 20 1000\n\nnot a valid line\n30 40 2000 # trailing comment\n5 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []Entry{{Col: 10, Row: 20, Time: 1000}, {Col: 30, Row: 40, Time: 2000}}
	if len(entries) != len(want) {
		t.Fatalf("Load returned %d entries, want %d: %v", len(entries), len(want), entries)
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestPatch_AveragesSameColorNeighbors(t *testing.T) {
	im := mosaic.New(5, 5)
	filters := cfa.BayerRGGB
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			im.At(row, col)[filters.FC(row, col)] = 100
		}
	}
	// plant a bad site far from its value so the patch is observable.
	badColor := filters.FC(2, 2)
	im.At(2, 2)[badColor] = 9000

	entries := []Entry{{Col: 2, Row: 2, Time: 0}}
	fixed := Patch(im, filters, entries, 1000)

	if len(fixed) != 1 {
		t.Fatalf("Patch fixed %d entries, want 1", len(fixed))
	}
	if got := im.At(2, 2)[badColor]; got != 100 {
		t.Errorf("patched site = %d, want averaged neighbor value 100", got)
	}
}

func TestPatch_AveragesFourDistinctNeighbors(t *testing.T) {
	im := mosaic.New(5, 5)
	filters := cfa.BayerRGGB

	// (2,1) is a green site whose four same-color radius-1 neighbors sit
	// on the diagonals; distinct values make the averaging observable.
	badRow, badCol := 2, 1
	color := filters.FC(badRow, badCol)
	neighbors := [][3]int{{1, 0, 100}, {1, 2, 200}, {3, 0, 300}, {3, 2, 400}}
	for _, n := range neighbors {
		if filters.FC(n[0], n[1]) != color {
			t.Fatalf("test setup: (%d,%d) is not color %d", n[0], n[1], color)
		}
		im.At(n[0], n[1])[color] = uint16(n[2])
	}
	im.At(badRow, badCol)[color] = 9999

	fixed := Patch(im, filters, []Entry{{Col: badCol, Row: badRow, Time: 0}}, 1000)
	if len(fixed) != 1 {
		t.Fatalf("Patch fixed %d entries, want 1", len(fixed))
	}
	if got := im.At(badRow, badCol)[color]; got != 250 {
		t.Errorf("patched site = %d, want 250 (mean of 100,200,300,400)", got)
	}
}

func TestPatch_SkipsEntriesAfterShotTime(t *testing.T) {
	im := mosaic.New(5, 5)
	filters := cfa.BayerRGGB
	entries := []Entry{{Col: 2, Row: 2, Time: 5000}}
	fixed := Patch(im, filters, entries, 1000)
	if len(fixed) != 0 {
		t.Errorf("Patch should skip an entry recorded after the shot, got %d fixed", len(fixed))
	}
}

func TestPatch_SkipsOutOfBounds(t *testing.T) {
	im := mosaic.New(5, 5)
	filters := cfa.BayerRGGB
	entries := []Entry{{Col: 99, Row: 99, Time: 0}}
	fixed := Patch(im, filters, entries, 1000)
	if len(fixed) != 0 {
		t.Errorf("Patch should skip an out-of-bounds entry, got %d fixed", len(fixed))
	}
}
