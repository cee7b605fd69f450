package rawdecode

import (
	"strconv"
	"strings"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/huffman"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// nikonBorders returns the invisible left/right sensor columns some
// Nikon bodies carry beyond the published width.
func nikonBorders(model string) (left, right int) {
	switch model {
	case "D1X":
		return 0, 4
	case "D2H":
		return 6, 8
	}
	return 0, 0
}

// nikonD100TagCompressed is the NEF compression tag that a handful of
// D100 bodies stamp on every image regardless of whether the payload is
// actually Huffman-compressed.
const nikonD100TagCompressed = 34713

// nikonIsCompressed resolves the D100's ambiguous compression tag:
// some D100 firmware tags every file 34713 even when the payload is
// plain 12-bit samples. Every other camera trusts the tag outright. The
// tie-break scans the first 256 payload bytes for a nonzero byte at
// every 16th position (offsets 15, 31, 47, ...): the uncompressed layout
// holds zero bytes there, so any nonzero byte marks the payload as
// compressed.
func nikonIsCompressed(data []byte, in Input) bool {
	if in.CompressionTag != nikonD100TagCompressed {
		return false
	}
	if in.Model != "D100" {
		return true
	}
	test, err := sliceAt(data, int(in.DataOffset), 256)
	if err != nil {
		return true
	}
	for i := 15; i < 256; i += 16 {
		if test[i] != 0 {
			return true
		}
	}
	return false
}

// decodeNikonDispatch is the KindNikonCompressed entry point: it resolves
// nikonIsCompressed before choosing which codec actually reads the
// payload, since a D100 body tagged compressed may in fact be carrying
// plain 12-bit samples.
func decodeNikonDispatch(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	if nikonIsCompressed(data, in) {
		return decodeNikonCompressed(data, dst, in)
	}
	return decodeNikonUncompressed(data, dst, in)
}

// decodeNikonUncompressed reads raw_width (here Width+left+right) plain
// 12-bit samples per row via the shared MSB-first bit reader, left and
// right border columns included in the stream but discarded on write.
// Coolpix "E"-series bodies interleave rows two-at-a-time; pre-5000
// series models additionally restart the bitstream at the file's
// midpoint when that interleave lands on physical row 1.
func decodeNikonUncompressed(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	left, right := nikonBorders(in.Model)
	br := newBitReaderAt(data, int(in.DataOffset))

	isE := strings.HasPrefix(in.Model, "E")
	var modelNum int
	if isE {
		modelNum, _ = strconv.Atoi(strings.TrimLeft(in.Model[1:], " "))
	}

	for irow := 0; irow < dst.Height; irow++ {
		row := irow
		if isE {
			row = irow*2%dst.Height + irow/(dst.Height/2)
			if row == 1 && modelNum < 5000 {
				br = newBitReaderAt(data, len(data)/2)
			}
		}
		for col := -left; col < dst.Width+right; col++ {
			v := br.Take(12)
			if col >= 0 && col < dst.Width {
				dst.At(row, col)[fc.FC(row, col)] = uint16(v) << 2
			}
		}
	}
	if br.Truncated() {
		return Result{}, ErrTruncated
	}
	return Result{}, nil
}

// readCurveTable loads the Nikon NEF linearization curve embedded at
// in.CurveOffset: four little-endian 16-bit vertical-predictor seeds,
// a 16-bit table size, then that many 16-bit curve entries.
func readCurveTable(data []byte, offset int) (vpred [4]int32, curve []uint16, err error) {
	off := offset
	for i := 0; i < 4; i++ {
		b, serr := sliceAt(data, off, 2)
		if serr != nil {
			return vpred, nil, serr
		}
		vpred[i] = int32(uint16(b[0]) | uint16(b[1])<<8)
		off += 2
	}
	szBytes, serr := sliceAt(data, off, 2)
	if serr != nil {
		return vpred, nil, serr
	}
	csize := int(uint16(szBytes[0]) | uint16(szBytes[1])<<8)
	off += 2
	curve = make([]uint16, csize)
	for i := 0; i < csize; i++ {
		b, serr := sliceAt(data, off, 2)
		if serr != nil {
			return vpred, nil, serr
		}
		curve[i] = uint16(b[0]) | uint16(b[1])<<8
		off += 2
	}
	return vpred, curve, nil
}

// decodeNikonCompressed implements Nikon's lossless NEF codec: a single
// fixed Huffman tree (huffman.NikonTree, the same for every body) decodes a
// bit-length per sample, and a sign-extended difference of that length
// accumulates into a per-(row-parity,column-parity) vertical predictor
// for the first two columns of each row, or a per-column-parity
// horizontal predictor thereafter. The accumulated value indexes a
// per-camera linearization curve before being written out.
func decodeNikonCompressed(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	tree, err := huffman.NikonTree()
	if err != nil {
		return Result{}, err
	}
	vpred, curve, err := readCurveTable(data, int(in.CurveOffset))
	if err != nil {
		return Result{}, err
	}
	if len(curve) == 0 {
		return Result{}, ErrMalformedCodec
	}

	fc := cfa.Descriptor(in.Filters)
	left, right := nikonBorders(in.Model)
	br := newBitReaderAt(data, int(in.DataOffset))
	var hpred [2]int32

	for row := 0; row < dst.Height; row++ {
		for col := -left; col < dst.Width+right; col++ {
			length, derr := tree.Decode(br)
			if derr != nil {
				return Result{}, derr
			}
			diff := signExtend(br.Take(int(length)), int(length))

			if col+left < 2 {
				i := 2*(row&1) + (col & 1)
				vpred[i] += diff
				hpred[col&1] = vpred[i]
			} else {
				hpred[col&1] += diff
			}
			if col < 0 || col >= dst.Width {
				continue
			}
			v := hpred[col&1]
			if v < 0 {
				v = 0
			}
			if int(v) >= len(curve) {
				v = int32(len(curve) - 1)
			}
			dst.At(row, col)[fc.FC(row, col)] = curve[v] << 2
		}
	}
	if br.Truncated() {
		return Result{}, ErrTruncated
	}
	return Result{}, nil
}

// decodeNikonE950 handles the original Coolpix 950-era layout: rows are
// delivered in a 2-way interleave (row = irow*2 mod height), each
// carrying Width ten-bit samples followed by 28 bytes of row padding.
func decodeNikonE950(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	br := newBitReaderAt(data, int(in.DataOffset))
	for irow := 0; irow < dst.Height; irow++ {
		row := irow * 2 % dst.Height
		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = uint16(br.Take(10)) << 4
		}
		for i := 0; i < 28; i++ {
			br.Take(8)
		}
	}
	if br.Truncated() {
		return Result{}, ErrTruncated
	}
	return Result{}, nil
}
