package rawmosaic

import (
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/colorproc"
	"github.com/kantuck/rawmosaic/internal/rawdecode"
)

// CameraProfile is the immutable record an external Identifier produces
// for one input file: everything the pipeline needs to decode and color
// that file's sensor payload, short of the payload bytes themselves.
// It carries no parsing methods of its own; a container parser outside
// this module populates it and the pipeline consumes it read-only.
type CameraProfile struct {
	Make, Model string

	RawWidth, RawHeight int
	Width, Height       int

	// Colors is the sensor's native channel count: 1 for a document-mode
	// single-channel read, 3 for Bayer/CMY/Foveon, 4 for a sensor with a
	// genuine fourth photosite color.
	Colors  int
	Filters cfa.Descriptor
	IsCMY   bool

	// IsFoveon selects the non-CFA three-layer reconstruction path
	// (internal/foveon) instead of black/scale + VNG demosaic.
	IsFoveon bool

	// YMag is the vertical row-magnification PPM24 output applies (1 or
	// 2); it corrects sensors whose photosites aren't square.
	YMag int

	// Black is the profile's starting black-level estimate. A raw
	// decoder that computes its own (rawdecode.Result.HasBlack) takes
	// precedence over this value.
	Black  int
	RGBMax int
	PreMul [4]float64

	// CameraRed and CameraBlue are the red/blue multipliers an
	// Identifier extracted from the container's white-balance tags, used
	// only when Options.UseCameraWB is set. Zero means "not available":
	// Decode falls back to PreMul and reports a warning.
	CameraRed, CameraBlue float64

	// UseCoeff and Coeff carry an explicit camera-specific RGB output
	// matrix. When UseCoeff is false, ColorPreset is tried next, and
	// failing that a 4-color sensor falls back to the automatically
	// derived GMCY matrix.
	UseCoeff    bool
	Coeff       colorproc.Coeff
	ColorPreset colorproc.ColorPreset

	// Kind selects the raw decoder family, and the following fields are
	// decoder-specific parameters read by the decoder registry.
	Kind           rawdecode.Kind
	DataOffset     int64
	CompressionTag int
	CurveOffset    int64
	TableIndex     int

	// Timestamp is the shot's own capture time (Unix seconds), used to
	// filter out .badpixels entries recorded after this image was taken.
	Timestamp int64
}
