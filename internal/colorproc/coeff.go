package colorproc

// Coeff is a fixed color-output matrix: up to 4 input channels (RGB or
// GMCY) projected onto 3 output channels.
type Coeff [3][4]float64

// FoveonCoeff is the fixed Sigma/Foveon X3 sensor-to-sRGB matrix.
func FoveonCoeff() Coeff {
	m := [3][3]float64{
		{2.0343955, -0.727533, -0.3067457},
		{-0.2287194, 1.231793, -0.0028293},
		{-0.0086152, -0.153336, 1.1617814},
	}
	mul := [3]float64{1.179, 1.0, 0.713}
	var c Coeff
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[i][j] = m[i][j] * mul[i]
		}
	}
	return c
}

// CanonRGBCoeff is the optional saturation-boost matrix for early
// PowerShot G-series bodies, blended 10% against identity so the
// effect stays mild.
func CanonRGBCoeff() Coeff {
	m := [3][3]float64{
		{1.116187, -0.107427, -0.008760},
		{-1.551374, 4.157144, -1.605770},
		{0.090939, -0.399727, 1.308788},
	}
	const juice = 0.1
	var c Coeff
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			identity := 0.0
			if i == j {
				identity = 1
			}
			c[i][j] = m[i][j]*juice + identity*(1-juice)
		}
	}
	return c
}

// NikonE950Coeff is the fixed 3x4 matrix for the four-channel Coolpix
// 950-era CMY-ish sensor.
func NikonE950Coeff() Coeff {
	return Coeff{
		{-1.936280, 1.800443, -1.448486, 2.584324},
		{1.405365, -0.524955, -0.289090, 0.408680},
		{-1.204965, 1.082304, 2.941367, -1.818705},
	}
}

// GMCYCoeff inverts a fixed RGB->GMCY matrix into a GMCY->RGB one. Since
// only square matrices invert, it builds four 3x3 matrices (each
// omitting one GMCY channel), inverts each by Gauss-Jordan elimination,
// and sums the results into the final 3x4 coefficient matrix, which it
// then row-normalizes so that (1,1,1,1) x coeff = (1,1,1).
func GMCYCoeff() Coeff {
	gmcy := [4][3]float64{
		{0.11, 0.86, 0.08}, // green
		{0.50, 0.29, 0.51}, // magenta
		{0.11, 0.92, 0.75}, // cyan
		{0.81, 0.98, 0.08}, // yellow
	}

	var c Coeff
	for ignore := 0; ignore < 4; ignore++ {
		var invert [3][6]float64
		for j := 0; j < 3; j++ {
			g := j
			if j >= ignore {
				g = j + 1
			}
			for r := 0; r < 3; r++ {
				invert[j][r] = gmcy[g][r]
				if r == j {
					invert[j][r+3] = 1
				}
			}
		}
		for j := 0; j < 3; j++ {
			num := invert[j][j]
			for i := 0; i < 6; i++ {
				invert[j][i] /= num
			}
			for k := 0; k < 3; k++ {
				if k == j {
					continue
				}
				num := invert[k][j]
				for i := 0; i < 6; i++ {
					invert[k][i] -= invert[j][i] * num
				}
			}
		}
		for j := 0; j < 3; j++ {
			g := j
			if j >= ignore {
				g = j + 1
			}
			for r := 0; r < 3; r++ {
				c[r][g] += invert[r][j+3]
			}
		}
	}
	for r := 0; r < 3; r++ {
		var num float64
		for g := 0; g < 4; g++ {
			num += c[r][g]
		}
		for g := 0; g < 4; g++ {
			c[r][g] /= num
		}
	}
	return c
}
