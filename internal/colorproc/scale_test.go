package colorproc

import (
	"testing"

	"github.com/kantuck/rawmosaic/internal/mosaic"
)

func TestScale_BlackSubtractAndClamp(t *testing.T) {
	im := mosaic.New(2, 1)
	im.At(0, 0)[0] = 100
	im.At(0, 0)[1] = 50 // below black, should clamp to 0
	im.At(0, 1)[0] = 1000

	Scale(im, 3, Balance{Black: 60, RGBMax: 500, PreMul: [4]float64{1, 1, 1, 1}})

	if got := im.At(0, 0)[0]; got != 40 {
		t.Errorf("site0 ch0 = %d, want 40", got)
	}
	if got := im.At(0, 0)[1]; got != 0 {
		t.Errorf("site0 ch1 = %d, want 0 (clamped below black)", got)
	}
	if got := im.At(0, 1)[0]; got != 440 {
		t.Errorf("site1 ch0 = %d, want 440 (clamped to RGBMax-Black)", got)
	}
}

func TestScale_ZeroSamplesUntouched(t *testing.T) {
	im := mosaic.New(1, 1)
	Scale(im, 3, Balance{Black: 60, RGBMax: 500, PreMul: [4]float64{2, 2, 2, 2}})
	if got := im.At(0, 0)[0]; got != 0 {
		t.Errorf("zero sample should stay zero, got %d", got)
	}
}

func TestAutoScale_MaxChannelGetsUnitMultiplier(t *testing.T) {
	im := mosaic.New(2, 2)
	// channel 0 averages 100, channel 1 averages 200, channel 2 averages 50
	im.At(0, 0)[0], im.At(0, 0)[1], im.At(0, 0)[2] = 100, 200, 50
	im.At(0, 1)[0], im.At(0, 1)[1], im.At(0, 1)[2] = 100, 200, 50
	im.At(1, 0)[0], im.At(1, 0)[1], im.At(1, 0)[2] = 100, 200, 50
	im.At(1, 1)[0], im.At(1, 1)[1], im.At(1, 1)[2] = 100, 200, 50

	preMul := AutoScale(im, 3, 0)
	if preMul[1] != 1 {
		t.Errorf("channel with highest mean should get multiplier 1, got %v", preMul[1])
	}
	if preMul[0] <= 1 || preMul[2] <= 1 {
		t.Errorf("lower-mean channels should be boosted above 1, got %v", preMul)
	}
	if want := preMul[0] * 100; want < 199 || want > 201 {
		t.Errorf("channel 0 boosted mean should land near channel 1's mean 200, got %v", want)
	}
}
