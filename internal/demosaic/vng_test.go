package demosaic

import (
	"testing"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

func flatBayer(w, h int, filters cfa.Descriptor, r, g, b uint16) *mosaic.Image {
	im := mosaic.New(w, h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := filters.FC(row, col)
			v := [3]uint16{r, g, b}[c]
			im.At(row, col)[c] = v
		}
	}
	return im
}

func TestVNG_FlatFieldInterpolatesToKnownValue(t *testing.T) {
	im := flatBayer(6, 6, cfa.BayerRGGB, 100, 200, 300)
	VNG(im, Options{Filters: cfa.BayerRGGB, Colors: 3})

	// interior sites on a perfectly flat field should recover the exact
	// per-channel values the native sample already carried, regardless of
	// which channel was native at that site.
	for row := 2; row < 4; row++ {
		for col := 2; col < 4; col++ {
			site := im.At(row, col)
			if site[0] != 100 || site[1] != 200 || site[2] != 300 {
				t.Errorf("(%d,%d) = %v, want [100 200 300 ...]", row, col, site[:3])
			}
		}
	}
}

func TestVNG_QuickStopsAfterBilinear(t *testing.T) {
	im := flatBayer(8, 8, cfa.BayerRGGB, 50, 60, 70)
	quick := mosaic.New(8, 8)
	copy(quick.Pix, im.Pix)

	VNG(im, Options{Filters: cfa.BayerRGGB, Colors: 3, Quick: true})
	VNG(quick, Options{Filters: cfa.BayerRGGB, Colors: 3, Quick: false})

	// on a flat field both passes converge to the same result, so this
	// mainly checks Quick doesn't panic or leave channels unpopulated.
	site := im.At(4, 4)
	if site[0] != 50 || site[1] != 60 || site[2] != 70 {
		t.Errorf("quick interpolation = %v, want [50 60 70]", site[:3])
	}
}

func TestVNG_BorderUntouched(t *testing.T) {
	im := flatBayer(6, 6, cfa.BayerRGGB, 10, 20, 30)
	VNG(im, Options{Filters: cfa.BayerRGGB, Colors: 3})

	site := im.At(0, 0)
	own := cfa.BayerRGGB.FC(0, 0)
	for c := 0; c < 3; c++ {
		if c == own {
			continue
		}
		if site[c] != 0 {
			t.Errorf("border site (0,0) channel %d = %d, want untouched 0", c, site[c])
		}
	}
}
