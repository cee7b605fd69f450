package rawmosaic

import (
	"io"

	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// LosslessJPEGDecoder is the external collaborator a caller supplies to
// handle camera families whose raw payload is lossless-JPEG-compressed.
// No implementation ships with this module; a CameraProfile naming such
// a family without one set resolves to ErrUnsupportedFormat.
type LosslessJPEGDecoder interface {
	DecodeLosslessJPEG(r io.Reader, dst *mosaic.Image, profile CameraProfile) error
}

// Options controls the parts of the pipeline a driver, not the
// Identifier, decides: output tone, white balance policy, and which
// optional passes to run.
type Options struct {
	// Gamma is the output gamma exponent applied by the 24-bit sink.
	Gamma float64
	// Bright is the overall brightness multiplier.
	Bright float64
	// RedScale and BlueScale are extra per-channel multipliers stacked
	// on top of PreMul (or Coeff's red/blue rows, when UseCoeff).
	RedScale, BlueScale float64

	// DocumentMode replaces whatever white balance the profile and
	// camera WB would have produced with an automatic one derived from
	// the image's own per-channel averages, and skips demosaic (the
	// output stays single-channel per site).
	DocumentMode bool
	// QuickInterpolate stops VNG after its bilinear pass.
	QuickInterpolate bool
	// FourColorRGB synthesizes a fourth channel by splitting green on a
	// 3-color sensor instead of averaging the two green sites together.
	FourColorRGB bool
	// UseCameraWB prefers CameraProfile.CameraRed/CameraBlue over
	// PreMul[0]/PreMul[2], when the Identifier supplied them.
	UseCameraWB bool

	// BadPixelsDir is the directory Find starts its upward .badpixels
	// search from. Empty disables the side-channel entirely.
	BadPixelsDir string

	// JPEGDecoder, when non-nil, handles CameraProfile.Kind values that
	// name a lossless-JPEG-compressed family.
	JPEGDecoder LosslessJPEGDecoder
}

// DefaultOptions returns the conventional defaults: gamma 0.8, unit
// brightness, unit red/blue scale, every optional pass off.
func DefaultOptions() Options {
	return Options{
		Gamma:     0.8,
		Bright:    1,
		RedScale:  1,
		BlueScale: 1,
	}
}
