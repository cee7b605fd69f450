// Package cfa implements the 8-row by 2-column repeating color filter
// array descriptor shared by every mosaic sensor this module decodes.
package cfa

// Descriptor is the packed 32-bit color filter array pattern. Color codes
// are either {R,G1,B,G2} for Bayer sensors or {G,M,C,Y} for complementary
// sensors; which interpretation applies is carried by the caller (the
// CameraProfile's IsCMY flag), not by the descriptor itself.
type Descriptor uint32

// FC returns the color index (0..3) of the mosaic site at (row, col). It
// is an O(1) lookup into the 8x2 repeating pattern packed into the
// descriptor:
//
//	FC(row,col) = (filters >> ((((row<<1) & 14) + (col & 1)) << 1)) & 3
func (d Descriptor) FC(row, col int) int {
	shift := (((row << 1) & 14) + (col & 1)) << 1
	return int((uint32(d) >> uint(shift)) & 3)
}

// IsZero reports whether the descriptor carries no CFA pattern at all,
// which marks sensors whose raw decoder already wrote full RGB per site
// (the Kodak YUV decoder clears filters for exactly this reason).
func (d Descriptor) IsZero() bool { return d == 0 }

// Known descriptor constants for the Bayer grids every RGB camera in the
// supported set uses, named after the color seen at (0,0)-(1,1).
const (
	BayerBGGR Descriptor = 0x16161616
	BayerGRBG Descriptor = 0x61616161
	BayerGBRG Descriptor = 0x49494949
	BayerRGGB Descriptor = 0x94949494
)

// Complementary (GMCY) descriptor constants for the PowerShot-family
// sensors that are not Bayer.
const (
	CMYPowerShot600   Descriptor = 0xe1e4e1e4
	CMYPowerShotA5    Descriptor = 0x1e4e1e4e
	CMYPowerShotA50   Descriptor = 0x1b4e4b1e
	CMYPowerShotPro70 Descriptor = 0x1e4b4e1b
	CMYPro90AndG1     Descriptor = 0xb4b4b4b4
)
