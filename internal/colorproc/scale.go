// Package colorproc turns a decoded mosaic.Image (or, for Foveon,
// already-populated RGB layers) into a display-ready RGB image: black
// subtraction, per-channel scaling, document-mode auto white balance,
// a handful of fixed output color matrices, and the final magnitude
// projection with its histogram.
package colorproc

import "github.com/kantuck/rawmosaic/internal/mosaic"

// Balance holds the per-channel black level and multipliers applied
// before demosaic or color projection.
type Balance struct {
	Black  int
	RGBMax int
	PreMul [4]float64
}

// Scale subtracts the black level from every nonzero sample, applies
// PreMul, and clamps to [0, RGBMax-Black], in place.
func Scale(im *mosaic.Image, colors int, bal Balance) {
	rgbMax := bal.RGBMax - bal.Black
	for i := range im.Pix {
		site := &im.Pix[i]
		for c := 0; c < colors; c++ {
			val := int(site[c])
			if val == 0 {
				continue
			}
			val -= bal.Black
			scaled := float64(val) * bal.PreMul[c]
			if scaled < 0 {
				scaled = 0
			}
			if scaled > float64(rgbMax) {
				scaled = float64(rgbMax)
			}
			site[c] = uint16(scaled)
		}
	}
}

// AutoScale derives document-mode white balance multipliers from the
// image's own per-channel averages: the channel with the highest mean
// gets PreMul 1, and every other channel is scaled up to match it.
func AutoScale(im *mosaic.Image, colors int, black int) [4]float64 {
	var sum [4]float64
	var count [4]int
	min := [4]int{1<<31 - 1, 1<<31 - 1, 1<<31 - 1, 1<<31 - 1}
	max := [4]int{}

	for i := range im.Pix {
		site := im.Pix[i]
		for c := 0; c < colors; c++ {
			val := int(site[c])
			if val == 0 {
				continue
			}
			val -= black
			if val < 0 {
				val = 0
			}
			if min[c] > val {
				min[c] = val
			}
			if max[c] < val {
				max[c] = val
			}
			sum[c] += float64(val)
			count[c]++
		}
	}

	var preMul [4]float64
	var maxd float64
	for c := 0; c < colors; c++ {
		if count[c] > 0 {
			preMul[c] = sum[c] / float64(count[c])
		}
		if maxd < preMul[c] {
			maxd = preMul[c]
		}
	}
	for c := 0; c < colors; c++ {
		if preMul[c] != 0 {
			preMul[c] = maxd / preMul[c]
		}
	}
	return preMul
}
