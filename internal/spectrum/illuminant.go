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

package spectrum

// Illuminant is a named spectral power distribution lighting the scene.
// The core only needs two: the D65 reference white, and an optional
// blackbody color-temperature override (spec.md §4.1).
type Illuminant struct {
	Name string
	SPD  Spectrum
}

// D65 approximates the CIE D65 standard illuminant as a 6504K blackbody.
// A true D65 table differs from a blackbody curve in its UV/near-IR tail,
// but the two agree to within a few percent across 400-700nm, which is
// within the tolerances this package operates at; using the same
// NewBlackbody constructor keeps the illuminant model self-consistent with
// Blackbody(kelvin) overrides (spec.md's reciprocity/WB math is insensitive
// to which exact D65 approximation is used, since the spectral matrix is
// row-normalized against whichever illuminant is active).
func D65() Illuminant {
	return Illuminant{Name: "D65", SPD: NewBlackbody(6504)}
}

// NewBlackbodyIlluminant returns a named blackbody illuminant at the given
// color temperature.
func NewBlackbodyIlluminant(kelvin float32) Illuminant {
	return Illuminant{Name: "Blackbody", SPD: NewBlackbody(kelvin)}
}

// sRGBPrimaries approximates the CIE 1931 spectral power distributions of
// the sRGB primaries as normalized Gaussians. This is a simplification of
// the true piecewise sRGB primary spectra, adequate for the purpose they
// serve here: projecting a linear sRGB triple into per-layer exposure via
// compute_spectral_matrix (spec.md §4.2).
func sRGBPrimaries() (r, g, b Spectrum) {
	r = NewGaussian(611, 60, 1)
	g = NewGaussian(549, 70, 1)
	b = NewGaussian(466, 45, 1)
	return
}

// SRGBPrimaries exposes the approximate sRGB primary SPDs for use by
// filmstock.ComputeSpectralMatrix.
func SRGBPrimaries() (r, g, b Spectrum) {
	return sRGBPrimaries()
}

// WhiteBalanceCoefficients computes (wb_r, wb_g, wb_b) = 1/(layerExposures),
// renormalized so max=1, per spec.md §4.1. layerExposures are the exposures
// a neutral-energy illuminant sample produces through the spectral matrix.
func WhiteBalanceCoefficients(layerExposures [3]float32) (wb [3]float32) {
	for i, e := range layerExposures {
		if e <= 0 {
			wb[i] = 1
			continue
		}
		wb[i] = 1 / e
	}
	maxWB := wb[0]
	for _, v := range wb {
		if v > maxWB {
			maxWB = v
		}
	}
	if maxWB <= 0 {
		return [3]float32{1, 1, 1}
	}
	for i := range wb {
		wb[i] /= maxWB
	}
	return wb
}
