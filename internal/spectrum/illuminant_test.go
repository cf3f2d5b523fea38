package spectrum

import "testing"

func TestWhiteBalanceCoefficientsNormalizeToMaxOne(t *testing.T) {
	wb := WhiteBalanceCoefficients([3]float32{2, 1, 4})
	max := wb[0]
	for _, v := range wb {
		if v > max {
			max = v
		}
	}
	if max < 0.999 || max > 1.001 {
		t.Errorf("max(wb) = %v, want 1", max)
	}
	if wb[2] >= wb[0] || wb[0] >= wb[1] {
		t.Errorf("wb = %v, expected coefficients inversely ordered vs exposures", wb)
	}
}

func TestWhiteBalanceCoefficientsHandlesZeroExposure(t *testing.T) {
	wb := WhiteBalanceCoefficients([3]float32{0, 1, 1})
	for i, v := range wb {
		if v <= 0 {
			t.Errorf("wb[%d] = %v, want > 0", i, v)
		}
	}
}

func TestD65NameAndNonNegative(t *testing.T) {
	d65 := D65()
	if d65.Name != "D65" {
		t.Errorf("D65().Name = %q, want D65", d65.Name)
	}
	if d65.SPD.Integrate() <= 0 {
		t.Error("D65 spectrum should integrate to a positive value")
	}
}
