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

import (
	"github.com/filmr/filmr/internal/ferrors"
	"github.com/filmr/filmr/internal/spectrum"
	"gonum.org/v1/gonum/mat"
)

// SpectralMatrix maps linear sRGB (R,G,B) to per-layer exposure
// (E_R,E_G,E_B) (spec.md §3 "Derived value - Spectral Matrix").
type SpectralMatrix struct {
	m *mat.Dense // 3x3, row i = layer, column j = primary
}

// Apply projects a linear sRGB triple into per-layer exposure.
func (s SpectralMatrix) Apply(rgb [3]float32) (exposure [3]float32) {
	in := mat.NewVecDense(3, []float64{float64(rgb[0]), float64(rgb[1]), float64(rgb[2])})
	var out mat.VecDense
	out.MulVec(s.m, in)
	return [3]float32{float32(out.AtVec(0)), float32(out.AtVec(1)), float32(out.AtVec(2))}
}

// ComputeSpectralMatrix integrates each sRGB primary's spectral power
// distribution under the given illuminant against each layer sensitivity,
// then row-normalizes so a neutral, uniform-energy white maps to equal
// layer exposures (spec.md §4.2).
func ComputeSpectralMatrix(f FilmStock, illuminant spectrum.Illuminant) (SpectralMatrix, error) {
	primaries := [3]spectrum.Spectrum{}
	primaries[0], primaries[1], primaries[2] = spectrum.SRGBPrimaries()

	sensitivities := [3]spectrum.Spectrum{f.SensitivityR, f.SensitivityG, f.SensitivityB}

	raw := mat.NewDense(3, 3, nil)
	for layer := 0; layer < 3; layer++ {
		for primary := 0; primary < 3; primary++ {
			lit := primaries[primary].Mul(illuminant.SPD)
			v := lit.IntegrateProduct(sensitivities[layer])
			raw.Set(layer, primary, float64(v))
		}
	}

	// Neutral test: uniform-energy white is RGB=(1,1,1).
	for layer := 0; layer < 3; layer++ {
		neutral := raw.At(layer, 0) + raw.At(layer, 1) + raw.At(layer, 2)
		if neutral <= 0 {
			return SpectralMatrix{}, ferrors.NewConfigurationError(
				"stock %q layer %d: degenerate sensitivity integrates to zero against the active illuminant", f.Name, layer)
		}
		scale := 1.0 / neutral
		for primary := 0; primary < 3; primary++ {
			raw.Set(layer, primary, raw.At(layer, primary)*scale)
		}
	}

	return SpectralMatrix{m: raw}, nil
}

// NeutralLayerExposures returns the per-layer exposure a neutral,
// uniform-energy illuminant sample produces through m; used to derive
// white-balance coefficients (spec.md §4.1).
func (s SpectralMatrix) NeutralLayerExposures() (e [3]float32) {
	return s.Apply([3]float32{1, 1, 1})
}
