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

package filmstock

import "github.com/filmr/filmr/internal/spectrum"

// panchromaticSensitivity returns a single spectrum shared by all three
// layers, approximating an orthopanchromatic B&W response.
func panchromaticSensitivity() spectrum.Spectrum {
	return spectrum.NewGaussian(250, 900, 1).Add(spectrum.NewGaussian(550, 260, 0.6))
}

func colorSensitivities(rPeak, gPeak, bPeak, rFWHM, gFWHM, bFWHM float32) (r, g, b spectrum.Spectrum) {
	r = spectrum.NewGaussian(rPeak, rFWHM, 1)
	g = spectrum.NewGaussian(gPeak, gFWHM, 1)
	b = spectrum.NewGaussian(bPeak, bFWHM, 1)
	return
}

// neutralCoupling returns a coupling matrix with diagonal ~1 and small
// negative off-diagonal inter-layer inhibition; each row sums to 1 so a
// neutral density triple survives coupling unperturbed (spec.md §4.3
// invariant).
func neutralCoupling(inhibition float32) [3][3]float32 {
	off := -inhibition / 2
	diag := 1 + inhibition
	return [3][3]float32{
		{diag, off, off},
		{off, diag, off},
		{off, off, diag},
	}
}

// Portra400 approximates Kodak Portra 400, a medium-contrast color negative
// with a warm orange mask and fine grain — the stock spec.md's scenario 1
// (neutral ramp) and scenario 4 (halation) are built around.
func Portra400() FilmStock {
	r, g, b := colorSensitivities(600, 545, 450, 90, 80, 55)
	return FilmStock{
		Manufacturer: "Kodak", Name: "Portra 400", Type: ColorNegative,
		SensitivityR: r, SensitivityG: g, SensitivityB: b,
		LayerGains: [3]float32{1, 1, 1},
		CurveR: HDCurve{DMin: 0.92, DMax: 3.3, Gamma: 0.62, ExposureOffset: 0.011, ShoulderPoint: 2.6},
		CurveG: HDCurve{DMin: 0.55, DMax: 3.1, Gamma: 0.60, ExposureOffset: 0.011, ShoulderPoint: 2.5},
		CurveB: HDCurve{DMin: 0.22, DMax: 2.95, Gamma: 0.58, ExposureOffset: 0.011, ShoulderPoint: 2.4},
		Coupling: neutralCoupling(0.06),
		Grain: GrainParams{Alpha: 0.018, SigmaRead: 0.004, Roughness: 0.15, Monochrome: false,
			ColorCorrelation: 0.6, ShadowNoise: 0.0009, HighlightCoarseness: 0.3, GrainRadius: 0.6},
		Halation: HalationParams{Threshold: 0.78, Sigma: 6, Strength: 0.35, TintRGB: [3]float32{1.0, 0.3, 0.1}},
		Reciprocity:  ReciprocityParams{Beta: 0.03},
		DynamicRange: DynamicRange{LatitudeStops: 5.5, DMax: 3.3, DMin: 0.15},
		TMin: 0.02, TMax: 0.92,
	}
}

// Velvia50 approximates Fujifilm Velvia 50, a high-saturation, high-contrast
// color slide film — scenario 2 (pure red) exercises it.
func Velvia50() FilmStock {
	r, g, b := colorSensitivities(595, 540, 445, 70, 60, 40)
	return FilmStock{
		Manufacturer: "Fujifilm", Name: "Velvia 50", Type: ColorPositive,
		SensitivityR: r, SensitivityG: g, SensitivityB: b,
		LayerGains: [3]float32{1, 1.02, 1.05},
		CurveR: HDCurve{DMin: 0.15, DMax: 3.6, Gamma: 1.75, ExposureOffset: 0.018, ShoulderPoint: 3.0},
		CurveG: HDCurve{DMin: 0.14, DMax: 3.55, Gamma: 1.72, ExposureOffset: 0.018, ShoulderPoint: 2.95},
		CurveB: HDCurve{DMin: 0.16, DMax: 3.5, Gamma: 1.70, ExposureOffset: 0.018, ShoulderPoint: 2.9},
		Coupling: neutralCoupling(0.04),
		Grain: GrainParams{Alpha: 0.01, SigmaRead: 0.003, Roughness: 0.1, Monochrome: false,
			ColorCorrelation: 0.5, ShadowNoise: 0.0006, HighlightCoarseness: 0.2, GrainRadius: 0.4},
		Halation: HalationParams{Threshold: 0.85, Sigma: 4, Strength: 0.2, TintRGB: [3]float32{1.0, 0.25, 0.08}},
		Reciprocity:  ReciprocityParams{Beta: 0.08},
		DynamicRange: DynamicRange{LatitudeStops: 3.2, DMax: 3.6, DMin: 0.15},
		TMin: 0.015, TMax: 0.90,
	}
}

// TriX400 approximates Kodak Tri-X 400, a classic panchromatic B&W
// negative with pronounced, coarse grain — scenario 3 exercises it.
func TriX400() FilmStock {
	s := panchromaticSensitivity()
	return FilmStock{
		Manufacturer: "Kodak", Name: "Tri-X 400", Type: BlackWhiteNegative,
		SensitivityR: s, SensitivityG: s, SensitivityB: s,
		LayerGains: [3]float32{1, 1, 1},
		CurveR: HDCurve{DMin: 0.16, DMax: 2.9, Gamma: 0.68, ExposureOffset: 0.010, ShoulderPoint: 2.3},
		CurveG: HDCurve{DMin: 0.16, DMax: 2.9, Gamma: 0.68, ExposureOffset: 0.010, ShoulderPoint: 2.3},
		CurveB: HDCurve{DMin: 0.16, DMax: 2.9, Gamma: 0.68, ExposureOffset: 0.010, ShoulderPoint: 2.3},
		Coupling: neutralCoupling(0),
		Grain: GrainParams{Alpha: 0.05, SigmaRead: 0.01, Roughness: 0.35, Monochrome: true,
			ColorCorrelation: 1, ShadowNoise: 0.002, HighlightCoarseness: 0.45, GrainRadius: 0.8},
		Halation: HalationParams{Threshold: 0.9, Sigma: 3, Strength: 0.05, TintRGB: [3]float32{0.6, 0.6, 0.6}},
		Reciprocity:  ReciprocityParams{Beta: 0.18},
		DynamicRange: DynamicRange{LatitudeStops: 6.5, DMax: 2.9, DMin: 0.16},
		TMin: 0.02, TMax: 0.9,
	}
}

// Ektar100 approximates Kodak Ektar 100, a fine-grain, vivid color negative
// with strong reciprocity correction — scenario 5 exercises it.
func Ektar100() FilmStock {
	r, g, b := colorSensitivities(602, 548, 452, 85, 75, 52)
	return FilmStock{
		Manufacturer: "Kodak", Name: "Ektar 100", Type: ColorNegative,
		SensitivityR: r, SensitivityG: g, SensitivityB: b,
		LayerGains: [3]float32{1, 1, 1},
		CurveR: HDCurve{DMin: 0.9, DMax: 3.4, Gamma: 0.7, ExposureOffset: 0.014, ShoulderPoint: 2.7},
		CurveG: HDCurve{DMin: 0.52, DMax: 3.2, Gamma: 0.68, ExposureOffset: 0.014, ShoulderPoint: 2.6},
		CurveB: HDCurve{DMin: 0.2, DMax: 3.05, Gamma: 0.66, ExposureOffset: 0.014, ShoulderPoint: 2.5},
		Coupling: neutralCoupling(0.05),
		Grain: GrainParams{Alpha: 0.01, SigmaRead: 0.0025, Roughness: 0.08, Monochrome: false,
			ColorCorrelation: 0.55, ShadowNoise: 0.0005, HighlightCoarseness: 0.2, GrainRadius: 0.35},
		Halation: HalationParams{Threshold: 0.8, Sigma: 5, Strength: 0.25, TintRGB: [3]float32{1.0, 0.28, 0.1}},
		Reciprocity:  ReciprocityParams{Beta: 0.12},
		DynamicRange: DynamicRange{LatitudeStops: 5.0, DMax: 3.4, DMin: 0.15},
		TMin: 0.02, TMax: 0.93,
	}
}

// Gold200 approximates Kodak Gold 200, an amateur-grade color negative used
// for the CPU/GPU parity scenario 6.
func Gold200() FilmStock {
	r, g, b := colorSensitivities(598, 543, 448, 95, 85, 60)
	return FilmStock{
		Manufacturer: "Kodak", Name: "Gold 200", Type: ColorNegative,
		SensitivityR: r, SensitivityG: g, SensitivityB: b,
		LayerGains: [3]float32{1, 1, 1},
		CurveR: HDCurve{DMin: 0.95, DMax: 3.1, Gamma: 0.58, ExposureOffset: 0.012, ShoulderPoint: 2.5},
		CurveG: HDCurve{DMin: 0.58, DMax: 2.95, Gamma: 0.56, ExposureOffset: 0.012, ShoulderPoint: 2.4},
		CurveB: HDCurve{DMin: 0.25, DMax: 2.8, Gamma: 0.54, ExposureOffset: 0.012, ShoulderPoint: 2.3},
		Coupling: neutralCoupling(0.07),
		Grain: GrainParams{Alpha: 0.022, SigmaRead: 0.005, Roughness: 0.2, Monochrome: false,
			ColorCorrelation: 0.65, ShadowNoise: 0.0011, HighlightCoarseness: 0.35, GrainRadius: 0.7},
		Halation: HalationParams{Threshold: 0.76, Sigma: 6.5, Strength: 0.4, TintRGB: [3]float32{1.0, 0.32, 0.12}},
		Reciprocity:  ReciprocityParams{Beta: 0.04},
		DynamicRange: DynamicRange{LatitudeStops: 5.2, DMax: 3.1, DMin: 0.18},
		TMin: 0.025, TMax: 0.9,
	}
}

// Presets returns the built-in film stock table (spec.md's "preset table").
func Presets() []FilmStock {
	return []FilmStock{Portra400(), Velvia50(), TriX400(), Ektar100(), Gold200()}
}

// ByName looks up a built-in preset by case-sensitive name, returning a
// *ferrors.ConfigurationError if none matches.
func ByName(name string) (FilmStock, error) {
	for _, s := range Presets() {
		if s.Name == name {
			return s, nil
		}
	}
	return FilmStock{}, notFound(name)
}
