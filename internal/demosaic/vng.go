// Package demosaic fills in the two missing color channels at every
// mosaic site using Variable Number of Gradients interpolation: a
// bilinear first pass, optionally refined by a gradient-thresholded
// neighbor average that adapts to local edges.
package demosaic

import (
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// gradTerm is one entry of the fixed VNG gradient-template table: two
// probe offsets (y1,x1) and (y2,x2) whose difference contributes, after
// being shifted left by weight, to every gradient direction named in
// grads (a bitmask over the 8 compass directions, NW=0 clockwise).
type gradTerm struct {
	y1, x1, y2, x2 int
	weight         uint
	grads          uint8
}

// terms is the fixed VNG gradient template. It depends only on the CFA
// colors at FC(row%8, col%2), never on pixel data.
var terms = []gradTerm{
	{-2, -2, 0, -1, 0, 0x01}, {-2, -2, 0, 0, 1, 0x01}, {-2, -1, -1, 0, 0, 0x01},
	{-2, -1, 0, -1, 0, 0x02}, {-2, -1, 0, 0, 0, 0x03}, {-2, -1, 0, 1, 0, 0x01},
	{-2, 0, 0, -1, 0, 0x06}, {-2, 0, 0, 0, 1, 0x02}, {-2, 0, 0, 1, 0, 0x03},
	{-2, 1, -1, 0, 0, 0x04}, {-2, 1, 0, -1, 0, 0x04}, {-2, 1, 0, 0, 0, 0x06},
	{-2, 1, 0, 1, 0, 0x02}, {-2, 2, 0, 0, 1, 0x04}, {-2, 2, 0, 1, 0, 0x04},
	{-1, -2, -1, 0, 0, 0x80}, {-1, -2, 0, -1, 0, 0x01}, {-1, -2, 1, -1, 0, 0x01},
	{-1, -2, 1, 0, 0, 0x01}, {-1, -1, -1, 1, 0, 0x88}, {-1, -1, 1, -2, 0, 0x40},
	{-1, -1, 1, -1, 0, 0x22}, {-1, -1, 1, 0, 0, 0x33}, {-1, -1, 1, 1, 1, 0x11},
	{-1, 0, -1, 2, 0, 0x08}, {-1, 0, 0, -1, 0, 0x44}, {-1, 0, 0, 1, 0, 0x11},
	{-1, 0, 1, -2, 0, 0x40}, {-1, 0, 1, -1, 0, 0x66}, {-1, 0, 1, 0, 1, 0x22},
	{-1, 0, 1, 1, 0, 0x33}, {-1, 0, 1, 2, 0, 0x10}, {-1, 1, 1, -1, 1, 0x44},
	{-1, 1, 1, 0, 0, 0x66}, {-1, 1, 1, 1, 0, 0x22}, {-1, 1, 1, 2, 0, 0x10},
	{-1, 2, 0, 1, 0, 0x04}, {-1, 2, 1, 0, 0, 0x04}, {-1, 2, 1, 1, 0, 0x04},
	{0, -2, 0, 0, 1, 0x80}, {0, -1, 0, 1, 1, 0x88}, {0, -1, 1, -2, 0, 0x40},
	{0, -1, 1, 0, 0, 0x11}, {0, -1, 2, -2, 0, 0x40}, {0, -1, 2, -1, 0, 0x20},
	{0, -1, 2, 0, 0, 0x30}, {0, -1, 2, 1, 0, 0x10}, {0, 0, 0, 2, 1, 0x08},
	{0, 0, 2, -2, 1, 0x40}, {0, 0, 2, -1, 0, 0x60}, {0, 0, 2, 0, 1, 0x20},
	{0, 0, 2, 1, 0, 0x30}, {0, 0, 2, 2, 1, 0x10}, {0, 1, 1, 0, 0, 0x44},
	{0, 1, 1, 2, 0, 0x10}, {0, 1, 2, -1, 0, 0x40}, {0, 1, 2, 0, 0, 0x60},
	{0, 1, 2, 1, 0, 0x20}, {0, 1, 2, 2, 0, 0x10}, {1, -2, 1, 0, 0, 0x80},
	{1, -1, 1, 1, 0, 0x88}, {1, 0, 1, 2, 0, 0x08}, {1, 0, 2, -1, 0, 0x40},
	{1, 0, 2, 1, 0, 0x10},
}

// chood lists the 8 compass probe directions clockwise from NW, used
// both by the bilinear pass's shift rule and the VNG averaging pass.
var chood = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Options selects how VNG fills in an image's missing channels.
type Options struct {
	Filters cfa.Descriptor
	Colors  int
	// Quick stops after the bilinear pass, skipping the gradient-guided
	// refinement: a speed trade for preview-quality output.
	Quick bool
}

// VNG demosaics im in place: every site ends up with all Colors channels
// populated, the CFA-native one preserved and the rest interpolated.
//
// bilinear produces a full, separate copy, and refine (when requested)
// reads only from that untouched copy while writing the final result
// into im, so a refined row can never feed a later row's gradients.
func VNG(im *mosaic.Image, opt Options) {
	base := bilinear(im, opt.Filters, opt.Colors)
	if opt.Quick {
		copyInto(im, base)
		return
	}
	refine(im, base, opt.Filters, opt.Colors)
}

func copyInto(dst *mosaic.Image, src *mosaic.Image) {
	copy(dst.Pix, src.Pix)
}

// bilinear returns a new image where every site's non-native channels
// are the shift-weighted average of same-color neighbors in the 3x3
// block around it (orthogonal neighbors weighted double a diagonal
// neighbor's single weight; the center keeps its own native channel).
// Border sites (row/col 0 or
// Height-1/Width-1) are left as in the source image.
func bilinear(im *mosaic.Image, filters cfa.Descriptor, colors int) *mosaic.Image {
	out := mosaic.New(im.Width, im.Height)
	copy(out.Pix, im.Pix)

	for row := 1; row < im.Height-1; row++ {
		for col := 1; col < im.Width-1; col++ {
			var sum, weight [4]int
			for _, d := range chood {
				y, x := d[0], d[1]
				shift := 1
				if y == 0 || x == 0 {
					shift = 2
				}
				c := filters.FC(row+y, col+x)
				sum[c] += int(im.At(row+y, col+x)[c]) << uint(shift-1)
				weight[c] += 1 << uint(shift-1)
			}
			own := filters.FC(row, col)
			sum[own] = int(im.At(row, col)[own])
			weight[own] = 1
			site := out.At(row, col)
			for c := 0; c < colors; c++ {
				if c == own || weight[c] == 0 {
					continue
				}
				site[c] = uint16(sum[c] / weight[c])
			}
		}
	}
	return out
}

// refine applies the gradient-threshold pass of VNG: for each interior
// site (margin 2, since probes reach 2 pixels out), it scores all 8
// compass directions by local color gradients, keeps directions at or
// below gmin+gmax/2, and averages the bilinear result over the
// surviving directions. base supplies every read; im receives the
// final values (sites outside the margin keep base's bilinear result).
func refine(im *mosaic.Image, base *mosaic.Image, filters cfa.Descriptor, colors int) {
	copy(im.Pix, base.Pix)

	for row := 2; row < im.Height-2; row++ {
		for col := 2; col < im.Width-2; col++ {
			color := filters.FC(row, col)

			var gval [8]int
			for _, t := range terms {
				c := filters.FC(row+t.y1, col+t.x1)
				if filters.FC(row+t.y2, col+t.x2) != c {
					continue
				}
				diag := 1
				if filters.FC(row, col+1) == c && filters.FC(row+1, col) == c {
					diag = 2
				}
				if abs(t.y1-t.y2) == diag && abs(t.x1-t.x2) == diag {
					continue
				}
				diff := abs(int(base.At(row+t.y1, col+t.x1)[c]) - int(base.At(row+t.y2, col+t.x2)[c]))
				diff <<= t.weight
				for g := 0; g < 8; g++ {
					if t.grads&(1<<uint(g)) != 0 {
						gval[g] += diff
					}
				}
			}

			gmin, gmax := gval[0], gval[0]
			for _, g := range gval[1:] {
				if g < gmin {
					gmin = g
				}
				if g > gmax {
					gmax = g
				}
			}
			// The direction holding gmin always passes the threshold, so
			// at least one neighbor is averaged even on a flat patch.
			thold := gmin + gmax>>1

			var sum [4]int
			num := 0
			for g, d := range chood {
				if gval[g] > thold {
					continue
				}
				y, x := d[0], d[1]
				hasSecond := g&1 == 0 && filters.FC(row+y, col+x) != color && filters.FC(row+2*y, col+2*x) == color
				for c := 0; c < colors; c++ {
					if c == color && hasSecond {
						sum[c] += (int(base.At(row, col)[color]) + int(base.At(row+2*y, col+2*x)[color])) / 2
					} else {
						sum[c] += int(base.At(row+y, col+x)[c])
					}
				}
				num++
			}

			site := im.At(row, col)
			own := int(base.At(row, col)[color])
			for c := 0; c < colors; c++ {
				if c == color {
					continue
				}
				v := own + (sum[c]-sum[color])/num
				if v < 0 {
					v = 0
				}
				if v > 0xffff {
					v = 0xffff
				}
				site[c] = uint16(v)
			}
			site[color] = uint16(own)
		}
	}
}
