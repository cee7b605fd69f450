// Package sinks implements the output-format writers a caller plugs
// into the decode pipeline once internal/colorproc has projected a
// mosaic.Image to RGB+magnitude. Each writer consumes the same
// pre-projected image and a shared white-point/gamma/brightness policy.
package sinks

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// Style controls how channel 3 (the per-site magnitude the projection
// stage leaves behind) is converted to a display scale factor.
type Style struct {
	// Bright is the user brightness multiplier (Options.Bright).
	Bright float64
	// Gamma is the output gamma exponent (Options.Gamma).
	Gamma float64
	// White is the dynamic white point picked from the projection
	// histogram (see colorproc.WhitePoint), used only by PPM24.
	White int
	// Trim crops this many pixels off every edge before writing.
	Trim int
	// YMag is the vertical row-magnification factor PPM24 applies to
	// sensors whose pixel aspect ratio isn't square (e.g. early Kodak
	// DCS bodies). It only affects PPM24; 0 and 1 both mean no repeat.
	YMag int
}

// ImageSink writes a projected mosaic.Image to w.
type ImageSink interface {
	Write(w io.Writer, im *mosaic.Image, style Style) error
}

// PPM24 writes a classic 24-bit-per-pixel PPM using a 99th-percentile
// dynamic white point and gamma curve: every site's magnitude channel
// sets a per-pixel exposure scale so that dark regions aren't crushed
// by a single global linear scale.
type PPM24 struct{}

func (PPM24) Write(w io.Writer, im *mosaic.Image, style Style) error {
	width, height := im.Width-style.Trim*2, im.Height-style.Trim*2
	if width <= 0 || height <= 0 {
		return fmt.Errorf("sinks: trim %d leaves no image (%dx%d)", style.Trim, im.Width, im.Height)
	}
	ymag := style.YMag
	if ymag < 1 {
		ymag = 1
	}
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height*ymag); err != nil {
		return err
	}

	max := float64(style.White)
	if max == 0 {
		max = 1
	}
	mul := style.Bright * 442 / max
	row := make([]byte, width*3)

	for r := style.Trim; r < im.Height-style.Trim; r++ {
		for c := style.Trim; c < im.Width-style.Trim; c++ {
			site := im.At(r, c)
			var scale float64
			if site[3] != 0 {
				scale = mul * math.Pow(float64(site[3])*2/max, style.Gamma-1)
			}
			for ch := 0; ch < 3; ch++ {
				val := int(float64(site[ch]) * scale)
				if val > 255 {
					val = 255
				}
				if val < 0 {
					val = 0
				}
				row[(c-style.Trim)*3+ch] = byte(val)
			}
		}
		for i := 0; i < ymag; i++ {
			if _, err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// PPM48 writes a straight-scaled 48-bit-per-pixel PPM: no gamma curve,
// no dynamic white point, just Style.Bright and a hard 0xffff clamp.
type PPM48 struct{}

func (PPM48) Write(w io.Writer, im *mosaic.Image, style Style) error {
	width, height := im.Width-style.Trim*2, im.Height-style.Trim*2
	if width <= 0 || height <= 0 {
		return fmt.Errorf("sinks: trim %d leaves no image (%dx%d)", style.Trim, im.Width, im.Height)
	}
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n65535\n", width, height); err != nil {
		return err
	}

	row := make([]byte, width*6)
	for r := style.Trim; r < im.Height-style.Trim; r++ {
		for c := style.Trim; c < im.Width-style.Trim; c++ {
			site := im.At(r, c)
			for ch := 0; ch < 3; ch++ {
				val := int(float64(site[ch]) * style.Bright)
				if val > 0xffff {
					val = 0xffff
				}
				binary.BigEndian.PutUint16(row[(c-style.Trim)*6+ch*2:], uint16(val))
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// psdHeader is the fixed 40-byte Photoshop file header: signature,
// version, channel count, dimensions (patched in), bit depth, and mode.
var psdHeader = [40]byte{
	'8', 'B', 'P', 'S',
	0, 1, 0, 0, 0, 0, 0, 0,
	0, 3,
	0, 0, 0, 0,
	0, 0, 0, 0,
	0, 16,
	0, 3,
	0, 0, 0, 0,
	0, 0, 0, 0,
	0, 0, 0, 0,
	0, 0,
}

// PSD48 writes a 48-bit, 3-channel, uncompressed Photoshop file with
// planar (not interleaved) channel order.
type PSD48 struct{}

func (PSD48) Write(w io.Writer, im *mosaic.Image, style Style) error {
	width, height := im.Width-style.Trim*2, im.Height-style.Trim*2
	if width <= 0 || height <= 0 {
		return fmt.Errorf("sinks: trim %d leaves no image (%dx%d)", style.Trim, im.Width, im.Height)
	}
	head := psdHeader
	binary.BigEndian.PutUint32(head[14:], uint32(height))
	binary.BigEndian.PutUint32(head[18:], uint32(width))
	if _, err := w.Write(head[:]); err != nil {
		return err
	}

	psize := width * height
	plane := make([]uint16, psize)
	for ch := 0; ch < 3; ch++ {
		i := 0
		for r := style.Trim; r < im.Height-style.Trim; r++ {
			for c := style.Trim; c < im.Width-style.Trim; c++ {
				val := int(float64(im.At(r, c)[ch]) * style.Bright)
				if val > 0xffff {
					val = 0xffff
				}
				plane[i] = uint16(val)
				i++
			}
		}
		buf := make([]byte, psize*2)
		for i, v := range plane {
			binary.BigEndian.PutUint16(buf[i*2:], v)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
