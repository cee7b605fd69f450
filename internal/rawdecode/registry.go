package rawdecode

import (
	"fmt"

	"github.com/kantuck/rawmosaic/internal/mosaic"
)

// Kind identifies which raw decoder family a CameraProfile selects. It is
// the tagged-variant discriminator the DESIGN NOTES call for in place of
// a bare function pointer plus process-global scratch: decoder-specific
// parameters travel alongside it on Input rather than in package globals.
type Kind int

const (
	KindPS600 Kind = iota
	KindA5
	KindA50
	KindPro70
	KindQV5700
	KindCasioEasy
	KindPacked12
	KindUnpacked12
	KindOlympus16
	KindOlympus2Packed12
	KindKyocera
	KindNucore
	KindKodakEasy
	KindKodakCompressed
	KindKodakYUV
	KindCanonCompressed
	KindNikonUncompressed
	KindNikonCompressed
	KindNikonE950
	KindFujiS2
	KindFujiS5000
	KindFujiF700
	KindRollei
	KindFoveon
	KindLosslessJPEG
)

func (k Kind) String() string {
	switch k {
	case KindPS600:
		return "ps600"
	case KindA5:
		return "a5"
	case KindA50:
		return "a50"
	case KindPro70:
		return "pro70"
	case KindQV5700:
		return "qv5700"
	case KindCasioEasy:
		return "casio-easy"
	case KindPacked12:
		return "packed-12"
	case KindUnpacked12:
		return "unpacked-12"
	case KindOlympus16:
		return "olympus-16"
	case KindOlympus2Packed12:
		return "olympus2-packed-12"
	case KindKyocera:
		return "kyocera"
	case KindNucore:
		return "nucore"
	case KindKodakEasy:
		return "kodak-easy"
	case KindKodakCompressed:
		return "kodak-compressed"
	case KindKodakYUV:
		return "kodak-yuv"
	case KindCanonCompressed:
		return "canon-compressed"
	case KindNikonUncompressed:
		return "nikon-uncompressed"
	case KindNikonCompressed:
		return "nikon-compressed"
	case KindNikonE950:
		return "nikon-e950"
	case KindFujiS2:
		return "fuji-s2"
	case KindFujiS5000:
		return "fuji-s5000"
	case KindFujiF700:
		return "fuji-f700"
	case KindRollei:
		return "rollei"
	case KindFoveon:
		return "foveon"
	case KindLosslessJPEG:
		return "lossless-jpeg"
	default:
		return fmt.Sprintf("rawdecode.Kind(%d)", int(k))
	}
}

var registry = map[Kind]Func{
	KindPS600:             decodePS600,
	KindA5:                decodeA5,
	KindA50:               decodeA50,
	KindPro70:             decodePro70,
	KindQV5700:            decodeQV5700,
	KindCasioEasy:         decodeCasioEasy,
	KindPacked12:          decodePacked12,
	KindUnpacked12:        decodeUnpacked12,
	KindOlympus16:         decodeOlympus16,
	KindOlympus2Packed12:  decodeOlympus2Packed12,
	KindKyocera:           decodePacked12, // same bit layout as generic packed-12
	KindNucore:            decodeNucore,
	KindKodakEasy:         decodeKodakEasy,
	KindKodakCompressed:   decodeKodakCompressed,
	KindKodakYUV:          decodeKodakYUV,
	KindCanonCompressed:   decodeCanonCompressed,
	KindNikonUncompressed: decodeNikonUncompressed,
	KindNikonCompressed:   decodeNikonDispatch,
	KindNikonE950:         decodeNikonE950,
	KindFujiS2:            decodeFujiS2,
	KindFujiS5000:         decodeFujiS5000,
	KindFujiF700:          decodeFujiF700,
	KindRollei:            decodeRollei,
	KindFoveon:            decodeFoveonPayload,
	KindLosslessJPEG:      decodeLosslessJPEGExternal,
}

// Decode invokes the decoder registered for kind. Kinds with no built-in
// decoder (currently only KindLosslessJPEG without a supplied
// Input.JPEGDecoder) return ErrUnsupportedFormat.
func Decode(kind Kind, data []byte, dst *mosaic.Image, in Input) (Result, error) {
	fn, ok := registry[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown decoder kind %s", ErrUnsupportedFormat, kind)
	}
	return fn(data, dst, in)
}

func decodeLosslessJPEGExternal(data []byte, dst *mosaic.Image, in Input) (Result, error) {
	if in.JPEGDecoder == nil {
		return Result{}, fmt.Errorf("%w: %s requires a lossless-JPEG decoder but none was supplied", ErrUnsupportedFormat, in.Model)
	}
	if err := in.JPEGDecoder.DecodeLosslessJPEG(data, dst, in); err != nil {
		return Result{}, fmt.Errorf("rawdecode: external lossless-JPEG decode: %w", err)
	}
	return Result{}, nil
}
