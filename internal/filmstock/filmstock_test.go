package filmstock

import (
	"testing"

	"github.com/filmr/filmr/internal/ferrors"
	"github.com/filmr/filmr/internal/spectrum"
)

func TestPresetsValidate(t *testing.T) {
	for _, stock := range Presets() {
		if err := stock.Validate(); err != nil {
			t.Errorf("preset %q failed validation: %v", stock.Name, err)
		}
	}
}

func TestByNameUnknownReturnsConfigurationError(t *testing.T) {
	_, err := ByName("Nonexistent Stock XYZ")
	if err == nil {
		t.Fatal("expected an error for an unknown stock name")
	}
	if _, ok := err.(*ferrors.ConfigurationError); !ok {
		t.Fatalf("expected *ferrors.ConfigurationError, got %T", err)
	}
}

func TestByNameFindsPreset(t *testing.T) {
	stock, err := ByName("Portra 400")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if stock.Manufacturer != "Kodak" {
		t.Errorf("Manufacturer = %q, want Kodak", stock.Manufacturer)
	}
}

func TestValidateRejectsBadGamma(t *testing.T) {
	stock := Portra400()
	stock.CurveR.Gamma = 0
	if err := stock.Validate(); err == nil {
		t.Fatal("expected validation error for gamma <= 0")
	}
}

func TestValidateRejectsNegativeReciprocityBeta(t *testing.T) {
	stock := Portra400()
	stock.Reciprocity.Beta = -0.1
	if err := stock.Validate(); err == nil {
		t.Fatal("expected validation error for negative reciprocity beta")
	}
}

func TestComputeSpectralMatrixNeutralAxis(t *testing.T) {
	stock := Portra400()
	m, err := ComputeSpectralMatrix(stock, spectrum.D65())
	if err != nil {
		t.Fatalf("ComputeSpectralMatrix: %v", err)
	}
	e := m.NeutralLayerExposures()
	for i := 1; i < 3; i++ {
		rel := (e[i] - e[0]) / e[0]
		if rel > 1e-3 || rel < -1e-3 {
			t.Errorf("neutral layer exposures not equal: %v", e)
			break
		}
	}
}

func TestBlackAndWhiteStockIsNotColor(t *testing.T) {
	stock := TriX400()
	if stock.IsColor() {
		t.Error("TriX400 should not report IsColor()")
	}
}
