package colorproc

// ColorPreset names one of the fixed per-camera-family output matrices
// this package ships, letting a CameraProfile reference a matrix by
// name instead of embedding one.
type ColorPreset int

const (
	PresetNone ColorPreset = iota
	PresetFoveon
	PresetCanonRGB
	PresetNikonE950
	PresetGMCY
)

// Coeff resolves a preset to its fixed matrix. PresetNone reports
// ok=false so the caller falls back to whatever Coeff its CameraProfile
// carries directly, or to the automatic GMCY derivation for 4-color
// sensors that name no preset at all.
func (p ColorPreset) Coeff() (Coeff, bool) {
	switch p {
	case PresetFoveon:
		return FoveonCoeff(), true
	case PresetCanonRGB:
		return CanonRGBCoeff(), true
	case PresetNikonE950:
		return NikonE950Coeff(), true
	case PresetGMCY:
		return GMCYCoeff(), true
	default:
		return Coeff{}, false
	}
}
