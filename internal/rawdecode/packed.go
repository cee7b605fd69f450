package rawdecode

import (
	"fmt"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// sliceAt returns data[off:off+n], reporting ErrTruncated if the range
// runs past the end of data.
func sliceAt(data []byte, off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, off, len(data))
	}
	return data[off : off+n], nil
}

// decodePS600 implements the PowerShot 600 layout: 26-byte header, then
// rows of 896 ten-bit samples packed into 1120 bytes, with even rows
// delivered first and odd rows second.
func decodePS600(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	const rowBytes = 1120
	const rowSamples = 896
	fc := cfa.Descriptor(in.Filters)

	var black, blackCount int64
	orow := 0
	off := int(in.DataOffset)
	for irow := 0; irow < dst.Height; irow++ {
		row, err := sliceAt(data, off, rowBytes)
		if err != nil {
			return Result{}, err
		}
		off += rowBytes

		var pixel [rowSamples]uint16
		pi := 0
		for dp := 0; dp+10 <= rowBytes; dp += 10 {
			d := row[dp : dp+10]
			pixel[pi+0] = uint16(d[0])<<2 + uint16(d[1]>>6)
			pixel[pi+1] = uint16(d[2])<<2 + uint16(d[1]>>4&3)
			pixel[pi+2] = uint16(d[3])<<2 + uint16(d[1]>>2&3)
			pixel[pi+3] = uint16(d[4])<<2 + uint16(d[1]&3)
			pixel[pi+4] = uint16(d[5])<<2 + uint16(d[9]&3)
			pixel[pi+5] = uint16(d[6])<<2 + uint16(d[9]>>2&3)
			pixel[pi+6] = uint16(d[7])<<2 + uint16(d[9]>>4&3)
			pixel[pi+7] = uint16(d[8])<<2 + uint16(d[9]>>6)
			pi += 8
		}

		for col := 0; col < dst.Width; col++ {
			dst.At(orow, col)[fc.FC(orow, col)] = pixel[col] << 4
		}
		for col := dst.Width; col < rowSamples; col++ {
			black += int64(pixel[col])
			blackCount++
		}

		orow += 2
		if orow > dst.Height {
			orow = 1
		}
	}
	if blackCount == 0 {
		return Result{}, nil
	}
	return Result{Black: int((black << 4) / blackCount), HasBlack: true}, nil
}

// decodeTenBitRow8 unpacks one row of the PowerShot A5/A50/Pro70 layout:
// 10-bit samples packed 8 to every 10 bytes, masked to the low 10 bits
// when mask is set. The QV-5700 layout is read by decodeQV5700.
func decodeTenBitRow8(row []byte, pixel []uint16, mask bool) {
	for dp, pi := 0, 0; dp+10 <= len(row); dp, pi = dp+10, pi+8 {
		d := row[dp : dp+10]
		pixel[pi+0] = uint16(d[1])<<2 + uint16(d[0]>>6)
		pixel[pi+1] = uint16(d[0])<<4 + uint16(d[3]>>4)
		pixel[pi+2] = uint16(d[3])<<6 + uint16(d[2]>>2)
		pixel[pi+3] = uint16(d[2])<<8 + uint16(d[5])
		pixel[pi+4] = uint16(d[4])<<2 + uint16(d[7]>>6)
		pixel[pi+5] = uint16(d[7])<<4 + uint16(d[6]>>4)
		pixel[pi+6] = uint16(d[6])<<6 + uint16(d[9]>>2)
		pixel[pi+7] = uint16(d[9])<<8 + uint16(d[8])
	}
	if mask {
		for i := range pixel {
			pixel[i] &= 0x3ff
		}
	}
}

func decodeA5family(data []byte, dst *mosaic.Image, in Input, rowBytes, rowSamples int, mask bool) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	var black, blackCount int64
	off := int(in.DataOffset)
	pixel := make([]uint16, rowSamples)
	for row := 0; row < dst.Height; row++ {
		rawRow, err := sliceAt(data, off, rowBytes)
		if err != nil {
			return Result{}, err
		}
		off += rowBytes
		decodeTenBitRow8(rawRow, pixel, mask)

		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = (pixel[col] & 0x3ff) << 4
		}
		for col := dst.Width; col < rowSamples; col++ {
			black += int64(pixel[col] & 0x3ff)
			blackCount++
		}
	}
	if blackCount == 0 {
		return Result{}, nil
	}
	return Result{Black: int((black << 4) / blackCount), HasBlack: true}, nil
}

func decodeA5(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	return decodeA5family(data, dst, in, 1240, 992, true)
}

func decodeA50(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	return decodeA5family(data, dst, in, 1650, 1320, true)
}

// decodePro70 uses the same 10-byte/8-sample layout as A5/A50, masking
// to the low 10 bits before the output shift, but has no black border
// to accumulate: every column is live.
func decodePro70(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	const rowBytes = 1940
	const rowSamples = 1552
	fc := cfa.Descriptor(in.Filters)
	off := int(in.DataOffset)
	pixel := make([]uint16, rowSamples)
	for row := 0; row < dst.Height; row++ {
		rawRow, err := sliceAt(data, off, rowBytes)
		if err != nil {
			return Result{}, err
		}
		off += rowBytes
		decodeTenBitRow8(rawRow, pixel, false)
		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = (pixel[col] & 0x3ff) << 4
		}
	}
	return Result{}, nil
}

// decodeQV5700 packs 10-bit samples 4-to-a-5-byte-group, with an extra
// 12 bytes of row padding beyond the live sample bytes.
func decodeQV5700(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	const rowBytes = 3232
	const liveBytes = 3220
	fc := cfa.Descriptor(in.Filters)
	off := 0 // the QV-5700 payload always starts at file offset 0
	_ = in.DataOffset
	pixel := make([]uint16, liveBytes/5*4)
	for row := 0; row < dst.Height; row++ {
		rawRow, err := sliceAt(data, off, rowBytes)
		if err != nil {
			return Result{}, err
		}
		off += rowBytes
		pi := 0
		for dp := 0; dp+5 <= liveBytes; dp += 5 {
			d := rawRow[dp : dp+5]
			pixel[pi+0] = uint16(d[0])<<2 + uint16(d[1]>>6)
			pixel[pi+1] = uint16(d[1])<<4 + uint16(d[2]>>4)
			pixel[pi+2] = uint16(d[2])<<6 + uint16(d[3]>>2)
			pixel[pi+3] = uint16(d[3])<<8 + uint16(d[4])
			pi += 4
		}
		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = (pixel[col] & 0x3ff) << 4
		}
	}
	return Result{}, nil
}

// decodeCasioEasy reads raw_width 8-bit samples per row, left-shifted 6
// bits into the 14-bit headroom.
func decodeCasioEasy(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	off := int(in.DataOffset)
	for row := 0; row < dst.Height; row++ {
		rawRow, err := sliceAt(data, off, in.RawWidth)
		if err != nil {
			return Result{}, err
		}
		off += in.RawWidth
		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = uint16(rawRow[col]) << 6
		}
	}
	return Result{}, nil
}

// decodeKodakEasy reads raw_width 8-bit samples per row, shifted 6 bits,
// with an optional symmetric left/right margin whose border pixels seed
// the black-level estimate.
func decodeKodakEasy(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	margin := (in.RawWidth - dst.Width) / 2
	off := int(in.DataOffset)
	var black int64
	for row := 0; row < dst.Height; row++ {
		rawRow, err := sliceAt(data, off, in.RawWidth)
		if err != nil {
			return Result{}, err
		}
		off += in.RawWidth
		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = uint16(rawRow[col+margin]) << 6
		}
		if margin == 2 {
			black += int64(rawRow[0]) + int64(rawRow[1]) + int64(rawRow[in.RawWidth-2]) + int64(rawRow[in.RawWidth-1])
		}
	}
	if margin == 0 {
		return Result{}, nil
	}
	return Result{Black: int((black << 6) / int64(4*dst.Height)), HasBlack: true}, nil
}

// bigEndian16 decodes a 16-bit unsigned big-endian sample.
func bigEndian16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }

// decodeUnpacked12 reads raw_width big-endian 16-bit samples per row
// (the low 12 bits carry the sample) shifted left 2 bits into the
// headroom.
func decodeUnpacked12(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	return decodeUnpackedBE(data, dst, in, 2, false)
}

// decodeOlympus16 is the unpacked-16 variant that shifts right instead of
// left, since its samples already fill more than 14 bits.
func decodeOlympus16(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	return decodeUnpackedBE(data, dst, in, 0, true)
}

func decodeUnpackedBE(data []byte, dst *mosaic.Image, in Input, shiftLeft int, shiftRight bool) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	off := int(in.DataOffset)
	stride := int(in.RawWidth)
	if stride < dst.Width {
		stride = dst.Width
	}
	for row := 0; row < dst.Height; row++ {
		rawRow, err := sliceAt(data, off, stride*2)
		if err != nil {
			return Result{}, err
		}
		off += stride * 2
		for col := 0; col < dst.Width; col++ {
			v := bigEndian16(rawRow[col*2 : col*2+2])
			if shiftRight {
				v >>= 2
			} else {
				v <<= uint(shiftLeft)
			}
			dst.At(row, col)[fc.FC(row, col)] = v
		}
	}
	return Result{}, nil
}

// decodePacked12 and decodeNucore's sibling olympus2 both read a bitio
// stream of 12-bit samples; packed12 is the straightforward row-major
// case shared by plain packed-12 sensors and Kyocera.
func decodePacked12(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	br := newBitReaderAt(data, int(in.DataOffset))
	fc := cfa.Descriptor(in.Filters)
	for row := 0; row < dst.Height; row++ {
		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = uint16(br.Take(12)) << 2
		}
	}
	if br.Truncated() {
		return Result{}, ErrTruncated
	}
	return Result{}, nil
}

// decodeOlympus2Packed12 reorders rows: irow maps to a row computed from
// a doubling permutation, and the bit reader resets at each of the first
// two physical rows to a model-specific byte offset.
func decodeOlympus2Packed12(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	br := newBitReaderAt(data, 0)
	for irow := 0; irow < dst.Height; irow++ {
		row := irow*2%dst.Height + irow/(dst.Height/2)
		if row < 2 {
			br.Seek(15360 + row*(dst.Width*dst.Height*3/4+184))
		}
		for col := 0; col < dst.Width; col++ {
			dst.At(row, col)[fc.FC(row, col)] = uint16(br.Take(12)) << 2
		}
	}
	if br.Truncated() {
		return Result{}, ErrTruncated
	}
	return Result{}, nil
}

// decodeNucore reads 2 bytes/sample, little-endian (first byte low,
// second byte high), shifted left 2 bits, optionally reversing row order for one 2598-column body whose
// model name starts with "B".
func decodeNucore(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	off := int(in.DataOffset)
	reorder := len(in.Model) > 0 && in.Model[0] == 'B' && dst.Width == 2598
	for irow := 0; irow < dst.Height; irow++ {
		rawRow, err := sliceAt(data, off, dst.Width*2)
		if err != nil {
			return Result{}, err
		}
		off += dst.Width * 2
		row := irow
		if reorder {
			row = dst.Height - 1 - irow/2 - dst.Height/2*(irow&1)
		}
		for col := 0; col < dst.Width; col++ {
			d := rawRow[col*2 : col*2+2]
			dst.At(row, col)[fc.FC(row, col)] = uint16(d[0])<<2 + uint16(d[1])<<10
		}
	}
	return Result{}, nil
}
