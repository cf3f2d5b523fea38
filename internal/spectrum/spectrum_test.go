package spectrum

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestNewConstantClampsAndFills(t *testing.T) {
	s := NewConstant(-5)
	for i, v := range s.Samples {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0 for negative constant", i, v)
		}
	}
}

func TestNewGaussianNormalizedConservesEnergy(t *testing.T) {
	s := NewGaussianNormalized(550, 40, 100)
	area := s.Integrate()
	if !scalar.EqualWithinRel(float64(area), 100, 1e-3) {
		t.Errorf("integrated energy = %v, want ~100", area)
	}
}

func TestNewBlackbodyPeakIsOne(t *testing.T) {
	s := NewBlackbody(6504)
	peak := float32(0)
	for _, v := range s.Samples {
		if v > peak {
			peak = v
		}
	}
	if !scalar.EqualWithinAbs(float64(peak), 1, 1e-3) {
		t.Errorf("peak sample = %v, want ~1", peak)
	}
	for i, v := range s.Samples {
		if v < 0 {
			t.Fatalf("sample %d = %v, want non-negative", i, v)
		}
	}
}

func TestIntegrateProductSymmetric(t *testing.T) {
	a := NewGaussian(500, 50, 1)
	b := NewGaussian(520, 30, 2)
	if a.IntegrateProduct(b) != b.IntegrateProduct(a) {
		t.Error("IntegrateProduct should be symmetric")
	}
}

func TestWavelengthAtBounds(t *testing.T) {
	if WavelengthAt(0) != MinNM {
		t.Errorf("WavelengthAt(0) = %v, want %v", WavelengthAt(0), float32(MinNM))
	}
	if WavelengthAt(NumSamples-1) != MaxNM {
		t.Errorf("WavelengthAt(last) = %v, want %v", WavelengthAt(NumSamples-1), float32(MaxNM))
	}
}
