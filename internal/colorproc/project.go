package colorproc

import (
	"math"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// ProjectOptions controls how Project turns a demosaiced (or Foveon, or
// document-mode single-channel) image into display RGB.
type ProjectOptions struct {
	Colors       int
	UseCoeff     bool
	Coeff        Coeff
	IsCMY        bool
	DocumentMode bool
	Filters      cfa.Descriptor
	RGBMax       int
	Trim         int
}

// Result carries the projected image's brightness histogram (0x2000
// buckets of width 8, covering magnitudes 0..0xffff) alongside the
// mutated image; it is the input to WhitePoint's 99th-percentile
// search.
type Result struct {
	Histogram [0x2000]int
}

// Project converts every site's raw channels to RGB in place (channels
// 0-2) and stores a brightness magnitude in channel 3, recombining the
// four-color-RGB green pair first when no explicit coefficient matrix
// is in play. It returns the resulting histogram for white-point
// selection.
func Project(im *mosaic.Image, opt ProjectOptions) Result {
	var res Result
	colors := opt.Colors
	if opt.DocumentMode {
		colors = 1
	}

	for row := opt.Trim; row < im.Height-opt.Trim; row++ {
		for col := opt.Trim; col < im.Width-opt.Trim; col++ {
			site := im.At(row, col)
			c := 0
			if opt.DocumentMode {
				c = opt.Filters.FC(row, col)
			}
			if colors == 4 && !opt.UseCoeff {
				site[1] = uint16((int(site[1]) + int(site[3])) / 2)
			}

			var rgb [4]float64
			switch {
			case colors == 1:
				for r := 0; r < 3; r++ {
					rgb[r] = float64(site[c])
				}
			case opt.UseCoeff:
				for r := 0; r < 3; r++ {
					var acc float64
					for g := 0; g < colors; g++ {
						acc += float64(site[g]) * opt.Coeff[r][g]
					}
					rgb[r] = acc
				}
			case opt.IsCMY:
				rgb[0] = float64(site[0]) + float64(site[1]) - float64(site[2])
				rgb[1] = float64(site[1]) + float64(site[2]) - float64(site[0])
				rgb[2] = float64(site[2]) + float64(site[0]) - float64(site[1])
			default:
				for r := 0; r < 3; r++ {
					rgb[r] = float64(site[r])
				}
			}

			for r := 0; r < 3; r++ {
				if rgb[r] < 0 {
					rgb[r] = 0
				}
				if rgb[r] > float64(opt.RGBMax) {
					rgb[r] = float64(opt.RGBMax)
				}
				rgb[3] += rgb[r] * rgb[r]
			}
			rgb[3] = math.Sqrt(rgb[3]) / 2
			if rgb[3] > 0xffff {
				rgb[3] = 0xffff
			}
			for r := 0; r < 4; r++ {
				site[r] = uint16(rgb[r])
			}
			res.Histogram[int(site[3])>>3]++
		}
	}
	return res
}

// WhitePoint scans the histogram from the top bucket down until the
// accumulated count passes 1% of totalPixels, and returns that bucket's
// index shifted left 4 bits (twice the lowest magnitude the bucket
// holds, since each bucket spans 8 magnitude steps): the dynamic white
// point the 24-bit output scales against.
func WhitePoint(hist [0x2000]int, totalPixels int) int {
	threshold := int(float64(totalPixels) * 0.01)
	total := 0
	val := 0x2000
	for val > 1 {
		val--
		total += hist[val]
		if total > threshold {
			break
		}
	}
	return val << 4
}
