// Package rawdecode holds the camera-specific raw payload decoders and
// the registry that dispatches to them by decoder kind. Every decoder
// writes into a mosaic.Image, left-shifting samples so the output
// occupies the upper bits of a 14-bit range, and produces a black-level
// estimate from whatever border pixels its layout exposes.
package rawdecode

import (
	"errors"

	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// Sentinel errors surfaced by decoders. Each names a distinct failure
// class a driver may want to report differently.
var (
	ErrUnsupportedFormat = errors.New("rawdecode: unsupported format")
	ErrTruncated         = errors.New("rawdecode: truncated payload")
	ErrMalformedCodec    = errors.New("rawdecode: malformed codec stream")
)

// Input is the minimal, decoder-agnostic view of a CameraProfile that raw
// decoders need. It is built by the root package from the public
// CameraProfile so that this package does not depend on it (avoiding an
// import cycle) and so each decoder sees only the fields relevant to
// payload layout, not color or output concerns.
type Input struct {
	Make, Model string

	RawWidth, RawHeight int
	Width, Height       int

	Filters uint32

	// DataOffset is the byte offset within Data at which the sensor
	// payload begins, as supplied by the external Identifier.
	DataOffset int64

	// CompressionTag carries the container's raw compression tag. Only
	// the Nikon compressed-vs-raw heuristic reads it; lossless-JPEG
	// payloads are selected by KindLosslessJPEG, not by this tag.
	CompressionTag int

	// CurveOffset is the byte offset of the Nikon NEF linearization
	// curve within the file, as recorded in the maker-note.
	CurveOffset int64

	// TableIndex selects one of the three canonical Canon Huffman tree
	// pairs.
	TableIndex int

	// JPEGDecoder, when non-nil, decodes KindLosslessJPEG payloads;
	// without it that kind reports ErrUnsupportedFormat. The decoder is an external
	// collaborator; this module never implements one.
	JPEGDecoder LosslessJPEGDecoder
}

// LosslessJPEGDecoder is the external interface a caller may supply to
// handle camera families whose raw payload is lossless-JPEG-compressed.
// No implementation ships with this module.
type LosslessJPEGDecoder interface {
	DecodeLosslessJPEG(data []byte, dst *mosaic.Image, in Input) error
}

// Result carries what the decoder learned beyond the populated image.
type Result struct {
	// Black is the estimated black level, in the decoder's own units
	// (already shifted consistently with the pixel data it wrote). Only
	// meaningful when HasBlack is true.
	Black int

	// HasBlack reports whether this decoder computed Black from its own
	// border pixels. Decoders with no black border in their raw layout
	// leave this false so the caller keeps CameraProfile.Black instead of
	// overwriting it with a meaningless zero.
	HasBlack bool

	// ClearsFilters is true for decoders (Kodak YUV, Foveon) that write full RGB
	// directly and therefore want the caller to treat the sensor as
	// non-mosaic from here on.
	ClearsFilters bool
}

// Func is the shape every raw decoder implements.
type Func func(data []byte, dst *mosaic.Image, in Input) (Result, error)
