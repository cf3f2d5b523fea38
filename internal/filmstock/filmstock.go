// Copyright (C) 2024 Filmr Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package filmstock holds the FilmStock parameter bundle — spectral
// sensitivities, H-D curves, coupling matrix, grain and halation
// parameters — that parameterizes the develop/grain/halation/output stages,
// plus the derived spectral matrix used to turn linear sRGB into per-layer
// exposure (spec.md §3, §4.2).
package filmstock

import (
	"github.com/filmr/filmr/internal/ferrors"
	"github.com/filmr/filmr/internal/spectrum"
)

// Type enumerates the broad film chemistry families.
type Type int

const (
	ColorNegative Type = iota
	ColorPositive      // slide / reversal
	BlackWhiteNegative
)

func (t Type) String() string {
	switch t {
	case ColorNegative:
		return "ColorNegative"
	case ColorPositive:
		return "ColorPositive"
	case BlackWhiteNegative:
		return "BlackWhiteNegative"
	default:
		return "Unknown"
	}
}

// HDCurve is the Hurter-Driffield characteristic curve for one layer.
type HDCurve struct {
	DMin           float32 `json:"dMin"`
	DMax           float32 `json:"dMax"`
	Gamma          float32 `json:"gamma"`
	ExposureOffset float32 `json:"exposureOffset"`
	ShoulderPoint  float32 `json:"shoulderPoint"`
}

// GrainParams parametrizes the density-variant correlated noise model
// (spec.md §4.4).
type GrainParams struct {
	Alpha              float32 `json:"alpha"`
	SigmaRead          float32 `json:"sigmaRead"`
	Roughness          float32 `json:"roughness"`
	Monochrome         bool    `json:"monochrome"`
	ColorCorrelation   float32 `json:"colorCorrelation"`
	ShadowNoise        float32 `json:"shadowNoise"`
	HighlightCoarseness float32 `json:"highlightCoarseness"`
	// GrainRadius is the blur radius (in pixels, at the 2000px reference
	// width) applied to the noise field before addition; 0 disables.
	GrainRadius float32 `json:"grainRadius"`
}

// HalationParams parametrizes the bloom/halation stage (spec.md §4.5).
type HalationParams struct {
	Threshold float32    `json:"threshold"`
	Sigma     float32    `json:"sigma"`
	Strength  float32    `json:"strength"`
	TintRGB   [3]float32 `json:"tintRGB"`
}

// ReciprocityParams parametrizes the Schwarzschild reciprocity-failure
// correction (spec.md §4.3 step 3).
type ReciprocityParams struct {
	Beta float32 `json:"beta"`
}

// DynamicRange holds metadata consumed only by the quality verifier.
type DynamicRange struct {
	LatitudeStops float32 `json:"latitudeStops"`
	DMax          float32 `json:"dMax"`
	DMin          float32 `json:"dMin"`
}

// FilmStock is the immutable parameter bundle for one film. It is a value
// type: construct once (from a preset or a JSON file) and hold it for the
// duration of a processing job (spec.md §3 "Lifecycle").
type FilmStock struct {
	Manufacturer string `json:"manufacturer"`
	Name         string `json:"name"`
	Type         Type   `json:"type"`

	SensitivityR spectrum.Spectrum `json:"-"`
	SensitivityG spectrum.Spectrum `json:"-"`
	SensitivityB spectrum.Spectrum `json:"-"`

	// LayerGains are the nominal relative sensitivity scalings per layer.
	LayerGains [3]float32 `json:"layerGains"`

	CurveR HDCurve `json:"curveR"`
	CurveG HDCurve `json:"curveG"`
	CurveB HDCurve `json:"curveB"`

	// Coupling is the 3x3 inter-layer dye inhibition matrix M (ISO 4090
	// IIE), row-major.
	Coupling [3][3]float32 `json:"coupling"`

	Grain      GrainParams       `json:"grain"`
	Halation   HalationParams    `json:"halation"`
	Reciprocity ReciprocityParams `json:"reciprocity"`
	DynamicRange DynamicRange    `json:"dynamicRange"`

	// Paper projection calibration for the Output stage's Positive mode.
	TMin float32 `json:"tMin"`
	TMax float32 `json:"tMax"`
}

func (f FilmStock) curves() [3]HDCurve { return [3]HDCurve{f.CurveR, f.CurveG, f.CurveB} }

// Validate checks the invariants in spec.md §3, returning a
// *ferrors.ConfigurationError on the first violation.
func (f FilmStock) Validate() error {
	for i, c := range f.curves() {
		layer := "RGB"[i : i+1]
		if !(c.DMax > c.DMin && c.DMin >= 0) {
			return ferrors.NewConfigurationError("stock %q layer %s: dMax (%.3f) must exceed dMin (%.3f) >= 0", f.Name, layer, c.DMax, c.DMin)
		}
		if c.Gamma <= 0 {
			return ferrors.NewConfigurationError("stock %q layer %s: gamma (%.3f) must be > 0", f.Name, layer, c.Gamma)
		}
		if c.ExposureOffset <= 0 {
			return ferrors.NewConfigurationError("stock %q layer %s: exposureOffset (%.3f) must be > 0", f.Name, layer, c.ExposureOffset)
		}
		if !(c.ShoulderPoint > c.DMin && c.ShoulderPoint <= c.DMax) {
			return ferrors.NewConfigurationError("stock %q layer %s: shoulderPoint (%.3f) must be in (dMin,dMax]", f.Name, layer, c.ShoulderPoint)
		}
	}
	for i, s := range []spectrum.Spectrum{f.SensitivityR, f.SensitivityG, f.SensitivityB} {
		layer := "RGB"[i : i+1]
		for _, v := range s.Samples {
			if v < 0 {
				return ferrors.NewConfigurationError("stock %q sensitivity %s: negative sample", f.Name, layer)
			}
		}
		if s.Integrate() <= 0 {
			return ferrors.NewConfigurationError("stock %q sensitivity %s: integrates to a non-positive value", f.Name, layer)
		}
	}
	if f.Reciprocity.Beta < 0 {
		return ferrors.NewConfigurationError("stock %q: reciprocity beta (%.3f) must be signed non-negative by convention; negative values are rejected at load time (spec.md §9)", f.Name, f.Reciprocity.Beta)
	}
	return nil
}

// IsColor reports whether the stock has distinct per-layer sensitivities
// (false for panchromatic B&W stocks, spec.md §3).
func (f FilmStock) IsColor() bool {
	return f.Type != BlackWhiteNegative
}
