package rawdecode

import (
	"github.com/kantuck/rawmosaic/internal/bitio"
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/huffman"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// canonHasLowBits reports whether a Canon compressed payload also
// carries a 2-bit low-bits plane ahead of the Huffman-coded high bits.
// The probe scans the file's first 8192 bytes for a literal 0xff,
// starting at offset 540 to skip the header; a 0xff immediately
// followed by a zero byte is the codec's own byte-stuffing and doesn't
// count, but a 0xff followed by a nonzero byte can only occur in the
// low-bits plane.
func canonHasLowBits(data []byte) bool {
	end := 8191
	if end > len(data)-1 {
		end = len(data) - 1
	}
	ret := true
	for i := 540; i < end; i++ {
		if data[i] == 0xff {
			if data[i+1] != 0 {
				return true
			}
			ret = false
		}
	}
	return ret
}

// canonBorders returns the black-border top/left margins hardcoded per
// raw width (G1, EOS D30, G2/G3, S50, EOS D60).
func canonBorders(rawWidth int) (top, left int) {
	switch rawWidth {
	case 2144:
		return 8, 4
	case 2224:
		return 6, 48
	case 2376:
		return 6, 12
	case 2672:
		return 6, 12
	case 3152:
		return 12, 64
	}
	return 0, 0
}

// canonBlockDecoder decodes the differential stream block by block: each
// call to next decodes one 64-sample block, draining the first leaf
// from the small "first" tree and every subsequent leaf in the block
// from the larger "second" tree, carrying a running first-sample bias
// and a per-column-parity linear predictor that resets every raw_width
// output samples.
type canonBlockDecoder struct {
	br            *bitio.Reader
	first, second *huffman.Tree
	carry         int32
	pixel         int
	rawWidth      int
	base          [2]int32
}

func newCanonBlockDecoder(br *bitio.Reader, first, second *huffman.Tree, rawWidth int) *canonBlockDecoder {
	return &canonBlockDecoder{br: br, first: first, second: second, rawWidth: rawWidth}
}

func (d *canonBlockDecoder) next() ([64]int32, error) {
	var diffbuf [64]int32
	tree := d.first
	for i := 0; i < 64; i++ {
		leaf, err := tree.Decode(d.br)
		if err != nil {
			return diffbuf, err
		}
		tree = d.second

		if leaf == 0 && i > 0 {
			break
		}
		if leaf == 0xff {
			continue
		}
		i += int(leaf >> 4)
		length := int(leaf & 15)
		if length == 0 {
			continue
		}
		sign := d.br.Take(1)
		diff := int32(d.br.Take(length - 1))
		if sign != 0 {
			diff += 1 << uint(length-1)
		} else {
			diff += -1<<uint(length) + 1
		}
		if i < 64 {
			diffbuf[i] = diff
		}
	}
	diffbuf[0] += d.carry
	d.carry = diffbuf[0]

	var out [64]int32
	for i := 0; i < 64; i++ {
		if d.pixel%d.rawWidth == 0 {
			d.base[0], d.base[1] = 512, 512
		}
		d.pixel++
		d.base[i&1] += diffbuf[i]
		out[i] = d.base[i&1]
	}
	return out, nil
}

// decodeCanonCompressed implements Canon's differential-Huffman raw
// codec: successive 64-sample blocks across 8-row bands, Huffman-coded
// against a small "first" tree for the block's first symbol and a large
// "second" tree thereafter, reconstructed through a running carry and a
// per-column-parity predictor. Cameras that also emit a 2-bit low-bits
// plane pack it starting at byte 26, merged into the high bits of each
// band before the fixed per-model black border is cropped away.
func decodeCanonCompressed(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	first, second, err := huffman.CanonTrees(in.TableIndex)
	if err != nil {
		return Result{}, err
	}

	lowBits := canonHasLowBits(data)
	shift := 4 - boolToInt(lowBits)*2
	startOffset := 540 + boolToInt(lowBits)*in.RawHeight*in.RawWidth/4

	br := newStuffedBitReaderAt(data, startOffset)
	dec := newCanonBlockDecoder(br, first, second, in.RawWidth)

	top, left := canonBorders(in.RawWidth)
	fc := cfa.Descriptor(in.Filters)

	band := make([]uint16, in.RawWidth*8)
	var black int64

	for row := 0; row < in.RawHeight; row += 8 {
		for block := 0; block < in.RawWidth/8; block++ {
			out, derr := dec.next()
			if derr != nil {
				return Result{}, derr
			}
			for i, v := range out {
				band[block*64+i] = uint16(v)
			}
		}

		if lowBits {
			// Each low-bits byte packs four 2-bit fields LSB-pair-first
			// ((c>>r)&3 for r=0,2,4,6), not MSB-first: read the bytes
			// directly rather than running the generic bit reader over
			// this stream.
			lowBytes, lerr := sliceAt(data, 26+row*in.RawWidth/4, len(band)/4)
			if lerr != nil {
				return Result{}, lerr
			}
			for i := 0; i < len(band); i += 4 {
				c := lowBytes[i/4]
				band[i+0] = band[i+0]<<2 | uint16(c&3)
				band[i+1] = band[i+1]<<2 | uint16((c>>2)&3)
				band[i+2] = band[i+2]<<2 | uint16((c>>4)&3)
				band[i+3] = band[i+3]<<2 | uint16((c>>6)&3)
			}
		}

		for r := 0; r < 8; r++ {
			irow := row + r - top
			if irow < 0 || irow >= dst.Height {
				continue
			}
			for col := 0; col < in.RawWidth; col++ {
				icol := col - left
				v := band[r*in.RawWidth+col]
				if icol >= 0 && icol < dst.Width {
					dst.At(irow, icol)[fc.FC(irow, icol)] = v << uint(shift)
				} else {
					black += int64(v)
				}
			}
		}
	}

	if br.Truncated() {
		return Result{}, ErrTruncated
	}
	denom := int64((in.RawWidth - dst.Width) * dst.Height)
	if denom == 0 {
		return Result{}, nil
	}
	return Result{Black: int((black << uint(shift)) / denom), HasBlack: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
