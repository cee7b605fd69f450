package rawmosaic

import (
	"testing"

	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/rawdecode"
)

// unpacked12Payload builds a raw_width x raw_height grid of big-endian
// 12-bit samples, one per site, the layout decodeUnpacked12 expects.
func unpacked12Payload(width, height int, value uint16) []byte {
	data := make([]byte, width*height*2)
	for i := 0; i < width*height; i++ {
		data[i*2] = byte(value >> 8)
		data[i*2+1] = byte(value)
	}
	return data
}

func testProfile() CameraProfile {
	return CameraProfile{
		Make:      "Test",
		Model:     "Unit",
		RawWidth:  4,
		RawHeight: 4,
		Width:     4,
		Height:    4,
		Colors:    3,
		Filters:   cfa.BayerRGGB,
		RGBMax:    16380,
		PreMul:    [4]float64{1, 1, 1, 1},
		Kind:      rawdecode.KindUnpacked12,
	}
}

func TestDecodeMosaic_RunsUnpacked12Pipeline(t *testing.T) {
	profile := testProfile()
	data := unpacked12Payload(4, 4, 1000)

	im, warnings, err := DecodeMosaic(data, profile, DefaultOptions())
	if err != nil {
		t.Fatalf("DecodeMosaic: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if im.Width != 4 || im.Height != 4 {
		t.Fatalf("image dims = %dx%d, want 4x4", im.Width, im.Height)
	}
	// every site should have its native channel populated to 1000<<2.
	site := im.At(1, 1)
	color := profile.Filters.FC(1, 1)
	if site[color] == 0 {
		t.Errorf("native channel %d at (1,1) was not populated", color)
	}
}

func TestDecode_ProjectsAndComputesWhitePoint(t *testing.T) {
	profile := testProfile()
	data := unpacked12Payload(4, 4, 1000)

	decoded, err := Decode(data, profile, DefaultOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Style.Trim != 1 {
		t.Errorf("Trim = %d, want 1 for a mosaic sensor", decoded.Style.Trim)
	}
	if decoded.Image.Width != 4 {
		t.Errorf("projected image width changed to %d, want 4 (trim applies at write time)", decoded.Image.Width)
	}
}

func TestDecodeMosaic_RejectsOversizedDimensions(t *testing.T) {
	profile := testProfile()
	profile.RawWidth = maxDim + 1
	_, _, err := DecodeMosaic(nil, profile, DefaultOptions())
	if err == nil {
		t.Fatal("expected an error for an oversized raw width")
	}
}

func TestDecodeMosaic_CameraWBWarnsWithoutMultipliers(t *testing.T) {
	profile := testProfile()
	data := unpacked12Payload(4, 4, 1000)
	opt := DefaultOptions()
	opt.UseCameraWB = true

	_, warnings, err := DecodeMosaic(data, profile, opt)
	if err != nil {
		t.Fatalf("DecodeMosaic: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one camera-WB warning", warnings)
	}
}

func TestDecodeMosaic_FourColorRGBSplitsGreen(t *testing.T) {
	profile := testProfile()
	data := unpacked12Payload(4, 4, 1000)
	opt := DefaultOptions()
	opt.FourColorRGB = true

	_, _, err := DecodeMosaic(data, profile, opt)
	if err != nil {
		t.Fatalf("DecodeMosaic with FourColorRGB: %v", err)
	}
}

func TestDecodeMosaic_TruncatedPayload(t *testing.T) {
	profile := testProfile()
	_, _, err := DecodeMosaic([]byte{1, 2, 3}, profile, DefaultOptions())
	if err == nil {
		t.Fatal("expected a truncation error from a 3-byte payload")
	}
}
