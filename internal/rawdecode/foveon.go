package rawdecode

import (
	"github.com/kantuck/rawmosaic/internal/huffman"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// foveonBorders returns the black border cropped per known raw
// dimension, for the X3 sensor's non-CFA three-layer payload.
func foveonBorders(rawHeight, rawWidth int) (top, left int) {
	switch rawHeight {
	case 763:
		top = 2
	case 1531:
		top = 7
	}
	switch rawWidth {
	case 1152:
		left = 8
	case 2304:
		left = 17
	}
	return top, left
}

// decodeFoveonPayload decodes the Sigma/Foveon X3 raw payload: a table
// of 1024 signed differences and 1024 prefix codes (little-endian, as
// the container's byte order is not modeled at this layer) starting at
// byte 260, followed by a single prefix-coded bitstream. Foveon sites
// carry no CFA pattern, so every column decodes all three layers in
// turn, each layer's predictor carrying over from the previous column.
func decodeFoveonPayload(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	const tableOffset = 260
	diffTable, err := sliceAt(data, tableOffset, 1024*2)
	if err != nil {
		return Result{}, err
	}
	huffTable, err := sliceAt(data, tableOffset+1024*2, 1024*4)
	if err != nil {
		return Result{}, err
	}

	var diff [1024]int16
	for i := 0; i < 1024; i++ {
		diff[i] = int16(uint16(diffTable[i*2]) | uint16(diffTable[i*2+1])<<8)
	}
	var codes [1024]uint32
	for i := 0; i < 1024; i++ {
		b := huffTable[i*4 : i*4+4]
		codes[i] = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	}

	tree, err := huffman.BuildFoveonTree(codes)
	if err != nil {
		return Result{}, err
	}

	top, left := foveonBorders(in.RawHeight, in.RawWidth)
	br := newBitReaderAt(data, tableOffset+1024*6)

	for row := 0; row < in.RawHeight; row++ {
		var pred [3]int32
		for col := 0; col < in.RawWidth; col++ {
			for c := 0; c < 3; c++ {
				leaf, derr := tree.Decode(br)
				if derr != nil {
					return Result{}, derr
				}
				pred[c] += int32(diff[leaf])
			}
			r, cc := row-top, col-left
			if r < 0 || r >= dst.Height || cc < 0 || cc >= dst.Width {
				continue
			}
			site := dst.At(r, cc)
			for c := 0; c < 3; c++ {
				if pred[c] > 0 {
					site[c] = uint16(pred[c])
				}
			}
		}
	}
	if br.Truncated() {
		return Result{}, ErrTruncated
	}
	return Result{ClearsFilters: true}, nil
}
