package colorproc

import (
	"testing"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/mosaic"
)

func TestProject_DefaultPassesChannelsThrough(t *testing.T) {
	im := mosaic.New(1, 1)
	im.At(0, 0)[0], im.At(0, 0)[1], im.At(0, 0)[2] = 10, 20, 30

	Project(im, ProjectOptions{Colors: 3, RGBMax: 100})

	site := im.At(0, 0)
	if site[0] != 10 || site[1] != 20 || site[2] != 30 {
		t.Errorf("default projection should pass RGB through unchanged, got %v", site[:3])
	}
}

func TestProject_CMYDerivesRGB(t *testing.T) {
	im := mosaic.New(1, 1)
	// cyan=100, magenta=100, yellow=100 should decode to gray
	im.At(0, 0)[0], im.At(0, 0)[1], im.At(0, 0)[2] = 100, 100, 100

	Project(im, ProjectOptions{Colors: 3, IsCMY: true, RGBMax: 200})

	site := im.At(0, 0)
	if site[0] != 100 || site[1] != 100 || site[2] != 100 {
		t.Errorf("equal CMY inputs should project to gray, got %v", site[:3])
	}
}

func TestProject_RGBMaxClampAndMagnitude(t *testing.T) {
	im := mosaic.New(1, 1)
	im.At(0, 0)[0], im.At(0, 0)[1], im.At(0, 0)[2] = 1000, 0, 0

	res := Project(im, ProjectOptions{Colors: 3, RGBMax: 500})

	site := im.At(0, 0)
	if site[0] != 500 {
		t.Errorf("channel should clamp to RGBMax, got %d", site[0])
	}
	wantMag := uint16(250) // sqrt(500^2)/2
	if site[3] != wantMag {
		t.Errorf("magnitude channel = %d, want %d", site[3], wantMag)
	}
	if res.Histogram[int(site[3])>>3] != 1 {
		t.Errorf("histogram should record one sample in the magnitude's bucket")
	}
}

func TestProject_DocumentModeUsesSingleChannel(t *testing.T) {
	im := mosaic.New(2, 1)
	im.At(0, 0)[0] = 77
	im.At(0, 1)[0] = 77

	Project(im, ProjectOptions{
		Colors:       3,
		DocumentMode: true,
		Filters:      cfa.BayerRGGB,
		RGBMax:       200,
	})

	site := im.At(0, 0)
	if site[0] != 77 || site[1] != 77 || site[2] != 77 {
		t.Errorf("document mode should broadcast the native channel to all three, got %v", site[:3])
	}
}

func TestProject_HistogramTotalMatchesTrimmedArea(t *testing.T) {
	im := mosaic.New(6, 5)
	for i := range im.Pix {
		im.Pix[i] = mosaic.Site{40, 50, 60, 0}
	}

	res := Project(im, ProjectOptions{Colors: 3, RGBMax: 1000, Trim: 1})

	var total int
	for _, n := range res.Histogram {
		total += n
	}
	want := (6 - 2) * (5 - 2)
	if total != want {
		t.Errorf("histogram total = %d, want %d (every interior site counted once)", total, want)
	}
}

func TestWhitePoint_FindsPercentileBucket(t *testing.T) {
	var hist [0x2000]int
	hist[50] = 100
	got := WhitePoint(hist, 100)
	want := 50 << 4
	if got != want {
		t.Errorf("WhitePoint = %d, want %d", got, want)
	}
}
