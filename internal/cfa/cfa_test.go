package cfa

import "testing"

func TestFC_RGGBSeedScenario(t *testing.T) {
	d := Descriptor(0x94949494)
	cases := []struct {
		row, col, want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 2},
	}
	for _, c := range cases {
		if got := d.FC(c.row, c.col); got != c.want {
			t.Errorf("FC(%d,%d) = %d, want %d", c.row, c.col, got, c.want)
		}
	}
}

func TestFC_Periodicity(t *testing.T) {
	descriptors := []Descriptor{
		BayerBGGR, BayerGRBG, BayerGBRG, BayerRGGB,
		CMYPowerShot600, CMYPowerShotA5, CMYPowerShotA50, CMYPowerShotPro70, CMYPro90AndG1,
	}
	for _, d := range descriptors {
		for row := 0; row < 16; row++ {
			for col := 0; col < 8; col++ {
				base := d.FC(row, col)
				if got := d.FC(row+8, col); got != base {
					t.Errorf("%#x: FC(%d,%d)=%d but FC(%d,%d)=%d", uint32(d), row, col, base, row+8, col, got)
				}
				if got := d.FC(row, col+2); got != base {
					t.Errorf("%#x: FC(%d,%d)=%d but FC(%d,%d)=%d", uint32(d), row, col, base, row, col+2, got)
				}
			}
		}
	}
}
