// Package rawmosaic decodes raw sensor payloads from 1997-2004-era
// digital cameras into a demosaiced, color-balanced, gamma-ready image.
// Container parsing and the final output encoding stay outside this
// package: callers supply a CameraProfile (normally produced by an
// external TIFF/CIFF/proprietary-header identifier) and the decoded
// image is handed to one of the sinks package's writers.
package rawmosaic

import (
	"errors"

	"github.com/kantuck/rawmosaic/internal/rawdecode"
)

// Sentinel errors a caller can match with errors.Is. ErrUnsupportedFormat,
// ErrTruncated and ErrMalformedCodec are the same values internal/rawdecode
// returns, so a failure from the decoder registry compares equal without
// this package re-wrapping it under a different identity.
var (
	ErrUnsupportedFormat = rawdecode.ErrUnsupportedFormat
	ErrTruncated         = rawdecode.ErrTruncated
	ErrMalformedCodec    = rawdecode.ErrMalformedCodec
	ErrResourceExhausted = errors.New("rawmosaic: resource exhausted")
)

// maxDim bounds the raw dimensions this package will allocate for,
// rejecting profiles an Identifier got wrong before they reach a
// multi-gigabyte mosaic.New call.
const maxDim = 1 << 16
