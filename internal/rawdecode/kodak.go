package rawdecode

import (
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// byteFeed pulls single bytes sequentially from data starting at off,
// reporting exhaustion rather than panicking. Kodak's compressed codecs
// build their own little bit buffer on top of plain bytes rather than
// using the shared MSB-first bitio.Reader, since their refill cadence
// is driven by the per-pixel bit-length table, not a fixed window.
type byteFeed struct {
	data []byte
	pos  int
}

func (f *byteFeed) next() byte {
	if f.pos >= len(f.data) {
		return 0
	}
	c := f.data[f.pos]
	f.pos++
	return c
}

// decodeKodakCompressed implements the DC120/DCS-era Kodak codec: every
// 256 pixels are preceded by a nibble-packed table of per-pixel bit
// lengths, followed by 16 bits of bitstream priming when the chunk
// length is 4 more than a multiple of 8, and each pixel's signed difference of its own
// bit length accumulates into a per-column-parity linear predictor.
func decodeKodakCompressed(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fc := cfa.Descriptor(in.Filters)
	feed := &byteFeed{data: data, pos: int(in.DataOffset)}

	var blen [256]byte
	var bitbuf int64
	var bits uint
	var pred [2]int32

	for row := 0; row < dst.Height; row++ {
		for col := 0; col < dst.Width; col++ {
			if col&255 == 0 {
				length := dst.Width - col
				if length > 256 {
					length = 256
				}
				for i := 0; i < length; {
					c := feed.next()
					blen[i] = c & 15
					i++
					blen[i] = c >> 4
					i++
				}
				bitbuf, bits, pred[0], pred[1] = 0, 0, 0, 0
				if length%8 == 4 {
					bitbuf = int64(feed.next()) << 8
					bitbuf += int64(feed.next())
					bits = 16
				}
			}
			length := int(blen[col&255])
			if bits < uint(length) {
				for i := 0; i < 32; i += 8 {
					bitbuf += int64(feed.next()) << (bits + uint(i^8))
				}
				bits += 32
			}
			diff := int32(bitbuf & int64(0xffff>>(16-length)))
			bitbuf >>= uint(length)
			bits -= uint(length)
			if length > 0 && diff&(1<<uint(length-1)) == 0 {
				diff -= 1<<uint(length) - 1
			}
			pred[col&1] += diff
			dst.At(row, col)[fc.FC(row, col)] = uint16(pred[col&1]) << 2
		}
	}
	return Result{}, nil
}

// decodeKodakYUV implements the DCS200/DC50-era 2x2-block Y/Cb/Cr codec.
// Each 2-column step of a 2-row band is preceded (every 128 columns) by
// a nibble table of 6 bit lengths per block; the 6 decoded differences
// reconstruct 4 luma samples (via alternating forward prediction) and
// running chroma accumulators, which a fixed YCbCr->RGB matrix turns
// into the four corner pixels of the 2x2 block. The result is full RGB
// at every site, so the caller should treat the image as no longer
// mosaiced (ClearsFilters).
func decodeKodakYUV(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	feed := &byteFeed{data: data, pos: int(in.DataOffset)}

	var blen [384]byte
	var bitbuf int64
	var bits uint
	li := 0
	var y [4]int32
	var cb, cr int32

	for row := 0; row < dst.Height; row += 2 {
		for col := 0; col < dst.Width; col += 2 {
			if col&127 == 0 {
				length := (dst.Width - col) * 3
				if length > 384 {
					length = 384
				}
				for i := 0; i < length; {
					c := feed.next()
					blen[i] = c & 15
					i++
					blen[i] = c >> 4
					i++
				}
				li, bitbuf, bits = 0, 0, 0
				y[1], y[3], cb, cr = 0, 0, 0, 0
			}

			var six [6]int32
			for si := 0; si < 6; si++ {
				length := int(blen[li])
				li++
				if bits < uint(length) {
					for i := 0; i < 32; i += 8 {
						bitbuf += int64(feed.next()) << (bits + uint(i^8))
					}
					bits += 32
				}
				diff := int32(bitbuf & int64(0xffff>>(16-length)))
				bitbuf >>= uint(length)
				bits -= uint(length)
				if length > 0 && diff&(1<<uint(length-1)) == 0 {
					diff -= 1<<uint(length) - 1
				}
				six[si] = diff << 2
			}

			y[0] = six[0] + y[1]
			y[1] = six[1] + y[0]
			y[2] = six[2] + y[3]
			y[3] = six[3] + y[2]
			cb += six[4]
			cr += six[5]

			for i := 0; i < 4; i++ {
				r := row + i>>1
				c := col + i&1
				if r >= dst.Height || c >= dst.Width {
					continue
				}
				rgb := [3]int32{
					int32(float64(y[i]) + 1.40200/2*float64(cr)),
					int32(float64(y[i]) - 0.34414/2*float64(cb) - 0.71414/2*float64(cr)),
					int32(float64(y[i]) + 1.77200/2*float64(cb)),
				}
				site := dst.At(r, c)
				for ch := 0; ch < 3; ch++ {
					if rgb[ch] > 0 {
						site[ch] = uint16(rgb[ch])
					}
				}
			}
		}
	}
	return Result{ClearsFilters: true}, nil
}
