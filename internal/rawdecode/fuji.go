package rawdecode

import (
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// littleEndian16 decodes a 16-bit unsigned little-endian sample, the
// wire order of the Fuji S5000 and F700 layouts (the S2 layout is read
// big-endian).
func littleEndian16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

// decodeFujiS2 unpacks the Fuji Super CCD's 45-degree-rotated geometry:
// a fixed 2944-sample row, row-major, whose (row, col) coordinates map
// onto the upright sensor grid via a diagonal rotation.
func decodeFujiS2(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	const rawRows = 2144
	const rawCols = 2880
	const rowWords = 2944

	fc := cfa.Descriptor(in.Filters)
	off := int(in.DataOffset) + (rowWords*24+32)*2
	pixel := make([]uint16, rowWords)

	for row := 0; row < rawRows; row++ {
		raw, err := sliceAt(data, off, rowWords*2)
		if err != nil {
			return Result{}, err
		}
		off += rowWords * 2
		for i := range pixel {
			pixel[i] = bigEndian16(raw[i*2 : i*2+2])
		}
		for col := 0; col < rawCols; col++ {
			r := row + (col+1)>>1
			c := 2143 - row + col>>1
			if !dst.InBounds(r, c) {
				continue
			}
			dst.At(r, c)[fc.FC(r, c)] = pixel[col] << 2
		}
	}
	return Result{}, nil
}

// decodeFujiS5000 unpacks the S5000's narrower rotated geometry, stored
// little-endian and left unshifted (its native range already fills the
// working headroom).
func decodeFujiS5000(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	const rawRows = 2152
	const rowWords = 1472

	fc := cfa.Descriptor(in.Filters)
	off := int(in.DataOffset) + (rowWords*4+24)*2
	pixel := make([]uint16, rowWords)

	for row := 0; row < rawRows; row++ {
		raw, err := sliceAt(data, off, rowWords*2)
		if err != nil {
			return Result{}, err
		}
		off += rowWords * 2
		for i := range pixel {
			pixel[i] = littleEndian16(raw[i*2 : i*2+2])
		}
		for col := 0; col < 1424; col++ {
			r := 1423 - col + row>>1
			c := col + (row+1)>>1
			if !dst.InBounds(r, c) {
				continue
			}
			dst.At(r, c)[fc.FC(r, c)] = pixel[col]
		}
	}
	return Result{}, nil
}

// decodeFujiF700 is the Super CCD SR variant: each photosite has a
// primary and a much less sensitive secondary photodiode: whenever the
// primary saturates, the secondary (scaled up 4 bits) stands in.
func decodeFujiF700(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	const rawRows = 2168
	const rowWords = 2944

	fc := cfa.Descriptor(in.Filters)
	off := int(in.DataOffset)
	pixel := make([]uint16, rowWords)

	for row := 0; row < rawRows; row++ {
		raw, err := sliceAt(data, off, rowWords*2)
		if err != nil {
			return Result{}, err
		}
		off += rowWords * 2
		for i := range pixel {
			pixel[i] = littleEndian16(raw[i*2 : i*2+2])
		}
		for col := 0; col < 1440; col++ {
			r := 1439 - col + row>>1
			c := col + (row+1)>>1
			if !dst.InBounds(r, c) {
				continue
			}
			val := uint32(pixel[col+16])
			if val == 0x3fff {
				val = uint32(pixel[col+1488]) << 4
			}
			if val > 0xffff {
				val = 0xffff
			}
			dst.At(r, c)[fc.FC(r, c)] = uint16(val)
		}
	}
	return Result{}, nil
}

