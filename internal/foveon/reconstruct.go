// Package foveon reconstructs a viewable image from the three stacked
// photodiode layers a Sigma/Foveon X3 sensor records at every site (no
// color filter array, so there is nothing for internal/demosaic to
// interpolate). The raw layers are noisy and mutually correlated in a
// way a straight color-matrix projection leaves soft and mottled, so
// this package sharpens the layers, smooths chroma while preserving
// their sum, and rotates them into the working colorspace before the
// caller hands the image to internal/colorproc for final projection.
package foveon

import "github.com/kantuck/rawmosaic/internal/mosaic"

// mul scales each channel-mixed pixel before the sharpen pass clamps it,
// correcting for the three layers' differing response.
var mul = [3]float64{1.0321, 1.0, 1.1124}

// weight is the cubic channel-mixing matrix the sharpen pass dots
// against each pixel's squared and cross-multiplied channel values.
var weight = [3][3][3]int{
	{{4141, 37726, 11265}, {-30437, 16066, -41102}, {326, -413, 362}},
	{{1770, -1316, 3480}, {-2139, 213, -4998}, {-2381, 3496, -2008}},
	{{-3838, -24025, -12968}, {20144, -12195, 30272}, {-631, -2025, 822}},
}

// trans is the fixed matrix that rotates the sharpened, hue-smoothed
// layers into the RGB-like working colorspace internal/colorproc expects.
var trans = [3][3]int{
	{7576, -2933, 1279},
	{-11594, 29911, -12394},
	{4000, -18850, 20772},
}

var curve1 = []int{72,
	0, 1, 2, 2, 3, 4, 5, 6, 6, 7, 8, 9, 9, 10, 11, 11, 12, 13, 13, 14, 14,
	15, 16, 16, 17, 17, 18, 18, 18, 19, 19, 20, 20, 20, 21, 21, 21, 22,
	22, 22, 23, 23, 23, 23, 23, 24, 24, 24, 24, 24, 25, 25, 25, 25, 25,
	25, 25, 25, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26,
}

var curve2 = []int{20,
	0, 1, 1, 2, 3, 3, 4, 4, 5, 5, 6, 6, 6, 7, 7, 7, 7, 7, 7, 7,
}

var curve3 = []int{72,
	0, 1, 1, 2, 2, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 8, 9, 9, 10, 10, 10, 10,
	11, 11, 11, 12, 12, 12, 12, 12, 12, 13, 13, 13, 13, 13, 13, 13, 13,
	14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14,
	14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14, 14,
}

var curve4 = []int{36,
	0, 1, 1, 2, 3, 3, 4, 4, 5, 6, 6, 7, 7, 7, 8, 8, 9, 9, 9, 10, 10, 10,
	11, 11, 11, 11, 11, 12, 12, 12, 12, 12, 12, 12, 12, 12,
}

var curve5 = []int{110,
	0, 1, 1, 2, 3, 3, 4, 5, 6, 6, 7, 7, 8, 9, 9, 10, 11, 11, 12, 12, 13, 13,
	14, 14, 15, 15, 16, 16, 17, 17, 18, 18, 18, 19, 19, 19, 20, 20, 20,
	21, 21, 21, 21, 22, 22, 22, 22, 22, 23, 23, 23, 23, 23, 24, 24, 24, 24,
	24, 24, 24, 24, 25, 25, 25, 25, 25, 25, 25, 25, 25, 25, 25, 25, 26, 26,
	26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26,
	26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26, 26,
}

// chromaCurves holds the per-channel tone curves the final chroma
// adjustment pass applies, red, green and blue respectively.
var chromaCurves = [3][]int{curve3, curve4, curve5}

// applyCurve evaluates one of the piecewise tone curves above at i. A
// curve's first element is its half-width; i outside that range
// saturates at the curve's last table entry.
func applyCurve(i int, curve []int) int {
	n := curve[0]
	switch {
	case i <= -n:
		return -curve[n] - 1
	case i < 0:
		return -curve[1-i]
	case i < n:
		return curve[1+i]
	default:
		return curve[n] + 1
	}
}

func clampRange(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Reconstruct turns the three raw, mutually correlated Foveon layers
// decoded into im into a sharpened, denoised image ready for
// internal/colorproc's projection. Each pass mutates im in place and
// runs to completion before the next begins, in a fixed order: cubic
// channel-mix sharpening, a 5x5-averaged red unsharp mask,
// an 8-neighbor clamp against the ringing the unsharp pass can
// introduce, hue smoothing that preserves the R+G+B total, a fixed
// colorspace rotation, and a quarter-scale low-pass pass that pulls
// chroma toward its local average without touching luminance.
func Reconstruct(im *mosaic.Image) {
	if im.Width < 8 || im.Height < 8 {
		return
	}
	sharpenColors(im)
	sharpenRed(im)
	clampNeighborhood(im)
	smoothHuesPreserveTotal(im)
	rotateColorspace(im)
	smoothChromaQuarterScale(im)
}

// sharpenColors applies an unsharp mask against the previous column's
// value on every channel, then mixes in a cubic term from all three
// channels (via weight) to correct cross-layer crosstalk.
func sharpenColors(im *mosaic.Image) {
	width, height := im.Width, im.Height
	for row := 0; row < height; row++ {
		var prev [3]int
		p0 := im.At(row, 0)
		for c := 0; c < 3; c++ {
			prev[c] = int(p0[c])
		}
		for col := 0; col < width; col++ {
			site := im.At(row, col)
			var ipix [3]int
			for c := 0; c < 3; c++ {
				cur := int(site[c])
				diff := cur - prev[c]
				prev[c] = cur
				ipix[c] = cur + (((diff + (diff*diff>>14)) * 0x3333) >> 14)
			}
			var work [3][3]int
			for c := 0; c < 3; c++ {
				work[0][c] = (ipix[c] * ipix[c]) >> 14
				work[2][c] = (ipix[c] * work[0][c]) >> 14
				work[1][2-c] = (ipix[(c+1)%3] * ipix[(c+2)%3]) >> 14
			}
			for c := 0; c < 3; c++ {
				sum := 0
				for i := 0; i < 3; i++ {
					for j := 0; j < 3; j++ {
						sum += weight[c][i][j] * work[i][j]
					}
				}
				v := float64(ipix[c]+(sum>>14)) * mul[c]
				site[c] = uint16(clampRange(int(v), 0, 32000))
			}
		}
	}
}

// sharpenRed runs a separate unsharp mask against the red channel only,
// using a 5x5-averaged (not single-pixel) baseline so it doesn't
// amplify the sensor's per-pixel red noise.
func sharpenRed(im *mosaic.Image) {
	width, height := im.Width, im.Height
	if width < 5 || height < 5 {
		return
	}
	hblur := func(row int) []int {
		buf := make([]int, width)
		for col := 2; col < width-2; col++ {
			r := func(dc int) int { return int(im.At(row, col+dc)[0]) }
			buf[col] = (r(0)*6 + (r(-1)+r(1))*4 + r(-2) + r(2) + 8) >> 4
		}
		return buf
	}

	window := make([][]int, 5)
	for i := 0; i < 5; i++ {
		window[i] = hblur(i)
	}

	smredPrev := 0
	for row := 2; row < height-2; row++ {
		if row > 2 {
			copy(window, window[1:])
			window[4] = hblur(row + 2)
		}
		for col := 2; col < width-2; col++ {
			smred := (window[2][col]*6 + (window[1][col]+window[3][col])*4 + window[0][col] + window[4][col] + 8) >> 4
			if col == 2 {
				smredPrev = smred
			}
			site := im.At(row, col)
			cur := int(site[0])
			v := cur + ((cur - ((smred*7 + smredPrev) >> 3)) >> 2)
			v = clampRange(v, 0, 10000)
			site[0] = uint16(v)
			smredPrev = smred
		}
	}
}

// clampNeighborhood clamps every channel of every interior site to the
// min/max of its 8 neighbors (the previous column's pre-clamp value
// plus the 3 sites above and 3 below), stopping the two sharpen passes
// from inventing new extrema.
func clampNeighborhood(im *mosaic.Image) {
	width, height := im.Width, im.Height
	for row := 1; row < height-1; row++ {
		var prev [3]int
		p0 := im.At(row, 0)
		for c := 0; c < 3; c++ {
			prev[c] = int(p0[c])
		}
		for col := 1; col < width-1; col++ {
			site := im.At(row, col)
			right := im.At(row, col+1)
			ul := im.At(row-1, col-1)
			up := im.At(row-1, col)
			ur := im.At(row-1, col+1)
			ll := im.At(row+1, col-1)
			lo := im.At(row+1, col)
			lr := im.At(row+1, col+1)
			for c := 0; c < 3; c++ {
				lo16, hi16 := prev[c], prev[c]
				for _, n := range [7]uint16{right[c], ul[c], up[c], ur[c], ll[c], lo[c], lr[c]} {
					v := int(n)
					if v < lo16 {
						lo16 = v
					}
					if v > hi16 {
						hi16 = v
					}
				}
				cur := int(site[c])
				prev[c] = cur
				site[c] = uint16(clampRange(cur, lo16, hi16))
			}
		}
	}
}

// smoothHuesPreserveTotal smooths the hue (the ratio between channels)
// against a 5x5 box average while leaving R+G+B alone, since the sum of
// the three layers is far less noisy than any one of them.
func smoothHuesPreserveTotal(im *mosaic.Image) {
	width, height := im.Width, im.Height
	if width < 5 || height < 5 {
		return
	}
	hsum := func(row int) [][3]int {
		buf := make([][3]int, width)
		for col := 2; col < width-2; col++ {
			var s [3]int
			for c := 0; c < 3; c++ {
				s[c] = int(im.At(row, col-2)[c]) + int(im.At(row, col-1)[c]) +
					int(im.At(row, col)[c]) + int(im.At(row, col+1)[c]) + int(im.At(row, col+2)[c])
			}
			buf[col] = s
		}
		return buf
	}

	window := make([][][3]int, 5)
	for i := 0; i < 5; i++ {
		window[i] = hsum(i)
	}

	for row := 2; row < height-2; row++ {
		if row > 2 {
			copy(window, window[1:])
			window[4] = hsum(row + 2)
		}
		for col := 2; col < width-2; col++ {
			var total [3]int
			for i := 0; i < 5; i++ {
				s := window[i][col]
				for c := 0; c < 3; c++ {
					total[c] += s[c]
				}
			}
			site := im.At(row, col)
			totalAll := 1500 + total[0] + total[1] + total[2]
			sum := 60 + int(site[0]) + int(site[1]) + int(site[2])
			j := (sum << 16) / totalAll
			var ipix [3]int
			for c := 0; c < 3; c++ {
				i := applyCurve((total[c]*j>>16)-int(site[c]), curve1)
				bonus := 0
				if c == 1 {
					bonus = 1
				}
				i += int(site[c]) - 13 - bonus
				ipix[c] = i - applyCurve(i, curve2)
			}
			hue := (ipix[0] + ipix[1] + ipix[1] + ipix[2]) >> 2
			for c := 0; c < 3; c++ {
				i := ipix[c] - applyCurve(ipix[c]-hue, curve2)
				if i < 0 {
					i = 0
				}
				site[c] = uint16(i)
			}
		}
	}
}

// rotateColorspace applies the fixed trans matrix to every site,
// carrying the layers from sensor space into the working colorspace.
func rotateColorspace(im *mosaic.Image) {
	for i := range im.Pix {
		site := &im.Pix[i]
		var out [3]int
		for c := 0; c < 3; c++ {
			v := trans[c][0]*int(site[0]) + trans[c][1]*int(site[1]) + trans[c][2]*int(site[2])
			v = (v + 0x1000) >> 13
			out[c] = clampRange(v, 0, 24000)
		}
		for c := 0; c < 3; c++ {
			site[c] = uint16(out[c])
		}
	}
}

// smoothChromaQuarterScale shrinks the image to 1/4 resolution with an
// IIR low-pass in each direction, then pulls every site's chroma toward
// that smoothed local average via chromaCurves, leaving fine luminance
// detail alone.
func smoothChromaQuarterScale(im *mosaic.Image) {
	width, height := im.Width, im.Height
	qw, qh := width/4, height/4
	if qw == 0 || qh == 0 {
		return
	}
	shrink := make([][3]int, qw*qh)
	idx := func(row, col int) int { return row*qw + col }
	for row := qh - 1; row >= 0; row-- {
		for col := 0; col < qw; col++ {
			var sum [3]int
			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					site := im.At(row*4+i, col*4+j)
					for c := 0; c < 3; c++ {
						sum[c] += int(site[c])
					}
				}
			}
			for c := 0; c < 3; c++ {
				if row+2 > qh {
					shrink[idx(row, col)][c] = sum[c] >> 4
				} else {
					shrink[idx(row, col)][c] = (shrink[idx(row+1, col)][c]*1840 + sum[c]*141) >> 12
				}
			}
		}
	}

	w4 := width &^ 3
	h4 := height &^ 3
	if w4 == 0 || h4 == 0 {
		return
	}
	smrow0 := make([][3]int, w4)
	smrow1 := make([][3]int, w4)
	smrow2 := make([][3]int, w4)

	for row := 0; row < h4; row++ {
		if row&3 == 0 {
			var ipix [3]int
			for col := w4 - 1; col >= 0; col-- {
				s := shrink[idx(row/4, col/4)]
				for c := 0; c < 3; c++ {
					ipix[c] = (s[c]*1485 + ipix[c]*6707) >> 13
					smrow0[col][c] = ipix[c]
				}
			}
		}

		var ipix [3]int
		for col := 0; col < w4; col++ {
			for c := 0; c < 3; c++ {
				ipix[c] = (smrow0[col][c]*1485 + ipix[c]*6707) >> 13
				smrow1[col][c] = ipix[c]
			}
		}

		if row == 0 {
			copy(smrow2, smrow1)
		} else {
			for col := 0; col < w4; col++ {
				for c := 0; c < 3; c++ {
					smrow2[col][c] = (smrow2[col][c]*6707 + smrow1[col][c]*1485) >> 13
				}
			}
		}

		for col := 0; col < w4; col++ {
			site := im.At(row, col)
			i, j := 60, 60
			for c := 0; c < 3; c++ {
				i += smrow2[col][c]
				j += int(site[c])
			}
			j = (j << 16) / i
			var adj [3]int
			sum := 0
			for c := 0; c < 3; c++ {
				v := (smrow2[col][c]*j)>>16 - int(site[c])
				adj[c] = applyCurve(v, chromaCurves[c])
				sum += adj[c]
			}
			sum >>= 3
			for c := 0; c < 3; c++ {
				v := int(site[c]) + adj[c] - sum
				if v < 0 {
					v = 0
				}
				site[c] = uint16(v)
			}
		}
	}
}
