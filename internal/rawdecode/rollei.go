package rawdecode

import (
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// rolleiBorders returns the top/left crop hardcoded for the two known
// Rollei raw widths.
func rolleiBorders(rawWidth int) (top, left int) {
	switch rawWidth {
	case 1316:
		return 1, 6
	case 2568:
		return 2, 8
	}
	return 0, 0
}

// decodeRollei implements the Rollei dual-stream interleave: every
// 10-byte chunk carries five "primary" samples read directly as 10-bit
// big-endian pairs and three "secondary" samples whose low bits were
// packed 6-at-a-time into a rolling buffer from the bits each primary
// byte didn't use. Both streams index into the same raster scan in
// strictly increasing order; only the 8 (position, value) results a
// chunk produces are ever written.
func decodeRollei(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	top, left := rolleiBorders(in.RawWidth)
	fc := cfa.Descriptor(in.Filters)

	iten := 0
	isix := in.RawWidth * in.RawHeight * 5 / 8
	var buffer uint32

	off := int(in.DataOffset)
	for {
		chunk, err := sliceAt(data, off, 10)
		if err != nil {
			break
		}
		off += 10

		var todoPos [8]int
		var todoVal [8]uint32
		n := 0

		for i := 0; i < 10; i += 2 {
			todoPos[n] = iten
			iten++
			todoVal[n] = uint32(chunk[i])<<8 | uint32(chunk[i+1])
			buffer = uint32(chunk[i]>>2) | buffer<<6
			n++
		}
		for i := 10; i < 16; i += 2 {
			todoPos[n] = isix
			isix++
			todoVal[n] = buffer >> uint((14-i)*5)
			n++
		}

		for i := 0; i < n; i++ {
			row := todoPos[i]/in.RawWidth - top
			col := todoPos[i]%in.RawWidth - left
			if row >= 0 && row < dst.Height && col >= 0 && col < dst.Width {
				dst.At(row, col)[fc.FC(row, col)] = uint16(todoVal[i]&0x3ff) << 4
			}
		}
	}
	return Result{}, nil
}

