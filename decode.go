package rawmosaic

import (
	"bytes"
	"fmt"

	"github.com/kantuck/rawmosaic/badpixel"
	"github.com/kantuck/rawmosaic/internal/cfa"
	"github.com/kantuck/rawmosaic/internal/colorproc"
	"github.com/kantuck/rawmosaic/internal/demosaic"
	"github.com/kantuck/rawmosaic/internal/foveon"
	"github.com/kantuck/rawmosaic/internal/mosaic"
	"github.com/kantuck/rawmosaic/internal/rawdecode"
	"github.com/kantuck/rawmosaic/sinks"
)

// Decoded is the full result of Decode: a projected, display-ready image
// plus the output style a sinks.ImageSink needs and any soft warnings
// the pipeline produced along the way.
type Decoded struct {
	Image    *mosaic.Image
	Style    sinks.Style
	Warnings []string
}

// jpegAdapter bridges the root-level LosslessJPEGDecoder (which sees a
// stream and a CameraProfile) to internal/rawdecode's own interface
// (which sees a byte slice and its narrower Input view), so a caller's
// implementation never has to depend on the internal package.
type jpegAdapter struct {
	impl    LosslessJPEGDecoder
	profile CameraProfile
}

func (a jpegAdapter) DecodeLosslessJPEG(data []byte, dst *mosaic.Image, _ rawdecode.Input) error {
	return a.impl.DecodeLosslessJPEG(bytes.NewReader(data), dst, a.profile)
}

// splitGreenFourColor rewrites filters and coeff for four-color-RGB
// mode: every CFA nibble naming one of the two green codes (9 or 6 in
// the packed descriptor) gains the other green's bit too, so FC sees
// four distinct codes instead of two aliased ones, and an explicit
// coefficient matrix gets its green column split evenly into a new
// fourth column.
func splitGreenFourColor(filters cfa.Descriptor, useCoeff bool, coeff colorproc.Coeff) (cfa.Descriptor, colorproc.Coeff) {
	f := uint32(filters)
	for i := 0; i < 32; i += 4 {
		if (f>>uint(i))&15 == 9 {
			f |= 2 << uint(i)
		}
		if (f>>uint(i))&15 == 6 {
			f |= 8 << uint(i)
		}
	}
	if useCoeff {
		for i := 0; i < 3; i++ {
			coeff[i][1] /= 2
			coeff[i][3] = coeff[i][1]
		}
	}
	return cfa.Descriptor(f), coeff
}

// colorSetup is the resolved color state DecodeMosaic derives from a
// CameraProfile and Options before touching any pixel data: the output
// matrix (or per-channel multipliers), the working channel count and
// CFA descriptor once four-color-RGB and GMCY derivation have had their
// say. Decode recomputes the same state (a pure function of profile and
// opt) rather than threading it back out of DecodeMosaic, so the two
// entry points can be called independently and still agree. The one
// exception is a decoder that reports ClearsFilters: DecodeMosaic then
// drops the CFA descriptor and forces three colors, which the state
// Decode recomputes does not reflect.
type colorSetup struct {
	coeff    colorproc.Coeff
	useCoeff bool
	colors   int
	filters  cfa.Descriptor
	preMul   [4]float64

	// wbWarning is set when Options.UseCameraWB was requested but the
	// profile carries no usable camera multipliers.
	wbWarning bool
}

// resolveColorSetup resolves the color state in a fixed order: an
// explicit coefficient matrix (direct or via ColorPreset) wins
// outright; camera white balance overrides the red and blue
// multipliers on a plain 3-color sensor; a 4-color sensor with no
// matrix gets the automatically derived GMCY one; RedScale and
// BlueScale stack on top; and four-color-RGB green-splitting runs last
// since it depends on the final filters value.
func resolveColorSetup(profile CameraProfile, opt Options) colorSetup {
	s := colorSetup{
		coeff:    profile.Coeff,
		useCoeff: profile.UseCoeff,
		colors:   profile.Colors,
		filters:  profile.Filters,
		preMul:   profile.PreMul,
	}
	if !s.useCoeff {
		if c, ok := profile.ColorPreset.Coeff(); ok {
			s.coeff, s.useCoeff = c, true
		}
	}
	if opt.UseCameraWB {
		if profile.CameraRed > 0 && profile.CameraBlue > 0 && s.colors == 3 {
			s.preMul[0] = profile.CameraRed
			s.preMul[2] = profile.CameraBlue
		} else {
			s.wbWarning = true
		}
	}
	if s.colors == 4 && !s.useCoeff {
		s.coeff = colorproc.GMCYCoeff()
		s.useCoeff = true
	}

	if s.useCoeff {
		for i := 0; i < s.colors; i++ {
			s.coeff[0][i] *= opt.RedScale
			s.coeff[2][i] *= opt.BlueScale
		}
	} else {
		s.preMul[0] *= opt.RedScale
		s.preMul[2] *= opt.BlueScale
	}

	if opt.FourColorRGB && !s.filters.IsZero() && s.colors == 3 {
		s.filters, s.coeff = splitGreenFourColor(s.filters, s.useCoeff, s.coeff)
		s.colors++
	}
	return s
}

// DecodeMosaic runs the pipeline through color scale and demosaic,
// stopping short of the final RGB projection: the mosaic.Image it
// returns still carries native-CFA channels (or, for a Foveon profile,
// reconstructed RGB layers), the form internal/colorproc.Project and
// ultimately Decode expect.
func DecodeMosaic(data []byte, profile CameraProfile, opt Options) (*mosaic.Image, []string, error) {
	if profile.RawWidth <= 0 || profile.RawHeight <= 0 ||
		profile.RawWidth > maxDim || profile.RawHeight > maxDim {
		return nil, nil, fmt.Errorf("rawmosaic: %w: raw dimensions %dx%d", ErrResourceExhausted, profile.RawWidth, profile.RawHeight)
	}

	setup := resolveColorSetup(profile, opt)
	colors := setup.colors
	filters := setup.filters
	preMul := setup.preMul

	if profile.DataOffset < 0 || profile.DataOffset > int64(len(data)) {
		return nil, nil, fmt.Errorf("rawmosaic: %w: data offset %d beyond %d-byte payload", ErrTruncated, profile.DataOffset, len(data))
	}
	payload := data[profile.DataOffset:]

	im := mosaic.New(profile.Width, profile.Height)

	var jd rawdecode.LosslessJPEGDecoder
	if opt.JPEGDecoder != nil {
		jd = jpegAdapter{impl: opt.JPEGDecoder, profile: profile}
	}
	in := rawdecode.Input{
		Make:           profile.Make,
		Model:          profile.Model,
		RawWidth:       profile.RawWidth,
		RawHeight:      profile.RawHeight,
		Width:          profile.Width,
		Height:         profile.Height,
		Filters:        uint32(filters),
		DataOffset:     0,
		CompressionTag: profile.CompressionTag,
		CurveOffset:    profile.CurveOffset,
		TableIndex:     profile.TableIndex,
		JPEGDecoder:    jd,
	}

	result, err := rawdecode.Decode(profile.Kind, payload, im, in)
	if err != nil {
		return nil, nil, fmt.Errorf("rawmosaic: decoding %s %s (%s): %w", profile.Make, profile.Model, profile.Kind, err)
	}

	var warnings []string

	black := profile.Black
	if result.HasBlack {
		black = result.Black
	}
	if result.ClearsFilters {
		filters = 0
		colors = 3
	}

	if profile.IsFoveon {
		foveon.Reconstruct(im)
	} else {
		if opt.BadPixelsDir != "" {
			path, ferr := badpixel.Find(opt.BadPixelsDir)
			if ferr != nil {
				warnings = append(warnings, fmt.Sprintf("badpixel: %v", ferr))
			} else if path != "" {
				entries, lerr := badpixel.Load(path)
				if lerr != nil {
					warnings = append(warnings, fmt.Sprintf("badpixel: %v", lerr))
				} else {
					badpixel.Patch(im, filters, entries, profile.Timestamp)
				}
			}
		}

		if setup.wbWarning {
			warnings = append(warnings, "cannot use camera white balance: profile carries no camera white-balance multipliers")
		}
		if opt.DocumentMode {
			preMul = colorproc.AutoScale(im, colors, black)
		}

		colorproc.Scale(im, colors, colorproc.Balance{Black: black, RGBMax: profile.RGBMax, PreMul: preMul})

		if !opt.DocumentMode && !filters.IsZero() {
			demosaic.VNG(im, demosaic.Options{Filters: filters, Colors: colors, Quick: opt.QuickInterpolate})
		}
	}

	return im, warnings, nil
}

// Decode runs the full pipeline: DecodeMosaic, then colorproc.Project
// and a dynamic white-point search, returning an image ready for any
// sinks.ImageSink.
func Decode(data []byte, profile CameraProfile, opt Options) (Decoded, error) {
	setup := resolveColorSetup(profile, opt)

	im, warnings, err := DecodeMosaic(data, profile, opt)
	if err != nil {
		return Decoded{}, err
	}

	trim := 0
	if !profile.IsFoveon && !setup.filters.IsZero() && !opt.DocumentMode {
		trim = 1
	}

	projRes := colorproc.Project(im, colorproc.ProjectOptions{
		Colors:       setup.colors,
		UseCoeff:     setup.useCoeff,
		Coeff:        setup.coeff,
		IsCMY:        profile.IsCMY,
		DocumentMode: opt.DocumentMode,
		Filters:      setup.filters,
		RGBMax:       profile.RGBMax,
		Trim:         trim,
	})

	total := (im.Width - 2*trim) * (im.Height - 2*trim)
	white := colorproc.WhitePoint(projRes.Histogram, total)

	return Decoded{
		Image: im,
		Style: sinks.Style{
			Bright: opt.Bright,
			Gamma:  opt.Gamma,
			White:  white,
			Trim:   trim,
			YMag:   profile.YMag,
		},
		Warnings: warnings,
	}, nil
}
