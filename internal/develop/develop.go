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

// Package develop implements spec.md §4.3: the stage turning a linear RGB
// exposure into per-layer density via the spectral matrix, white balance,
// reciprocity correction, and the sigmoid H-D curve with shoulder
// softening and inter-layer dye coupling.
package develop

import (
	"math"

	"github.com/filmr/filmr/internal/ferrors"
	"github.com/filmr/filmr/internal/filmstock"
	"github.com/filmr/filmr/internal/imagebuf"
	"github.com/filmr/filmr/internal/spectrum"
	"gonum.org/v1/gonum/mat"
)

// Params bundles the per-run inputs develop.Apply needs beyond the image
// and the stock itself.
type Params struct {
	Illuminant         spectrum.Illuminant
	ExposureTimeSeconds float32 // spec.md §4.3 default 1/125
	// Warmth scales the white-balance coefficients toward warm (>0) or cool
	// (<0) color temperature; 0 is neutral (SPEC_FULL.md supplemental
	// feature).
	Warmth float32
	// PixelLoopWidth is how many pixels the per-pixel loop below advances
	// per outer iteration, set by the caller from an AVX2-gated heuristic
	// (internal/pipeline's rowLoopWidth); <=1 processes one pixel at a time.
	PixelLoopWidth int
}

const exposureEpsilon = 1e-6

// sigmoid is the canonical H-D curve form (spec.md §4.3 step 5).
func sigmoid(u float64) float64 {
	return 1 / (1 + math.Exp(-u))
}

// HDCurveSigmoid evaluates the canonical sigmoid H-D curve for a single log
// exposure sample.
func HDCurveSigmoid(c filmstock.HDCurve, logExposure float32) float32 {
	x := float64(logExposure) - math.Log10(float64(c.ExposureOffset))
	rng := float64(c.DMax - c.DMin)
	k := 4 * float64(c.Gamma) / rng
	return c.DMin + float32(rng*sigmoid(k*x))
}

// HDCurveERF is the older error-function approximation to the same curve
// family, kept available per spec.md §9 open question for regression
// comparisons against datasheet fits performed against it. It is not called
// from the default pipeline — the sigmoid form is authoritative.
func HDCurveERF(c filmstock.HDCurve, logExposure float32) float32 {
	x := float64(logExposure) - math.Log10(float64(c.ExposureOffset))
	rng := float64(c.DMax - c.DMin)
	k := 2 * float64(c.Gamma) / rng
	return c.DMin + float32(rng*0.5*(1+math.Erf(k*x)))
}

// shoulderSoften applies spec.md §4.3 step 6.
func shoulderSoften(d, shoulderPoint float32) float32 {
	if d <= shoulderPoint {
		return d
	}
	delta := d - shoulderPoint
	return d - (delta*delta)/(shoulderPoint+delta)
}

// couplingMatrix returns stock.Coupling as a gonum 3x3 matrix.
func couplingMatrix(stock filmstock.FilmStock) *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, float64(stock.Coupling[i][j]))
		}
	}
	return m
}

// Apply runs the develop stage, consuming a linear RGB buffer and returning
// a density buffer of the same shape taken from imagebuf's pool; img itself
// is not modified (spec.md §4.3).
func Apply(img *imagebuf.Buffer, stock filmstock.FilmStock, params Params) (*imagebuf.Buffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := stock.Validate(); err != nil {
		return nil, err
	}

	specMatrix, err := filmstock.ComputeSpectralMatrix(stock, params.Illuminant)
	if err != nil {
		return nil, err
	}

	wb := spectrum.WhiteBalanceCoefficients(specMatrix.NeutralLayerExposures())
	wb[0] *= 1 + params.Warmth
	wb[2] *= 1 - params.Warmth
	maxWB := wb[0]
	for _, v := range wb {
		if v > maxWB {
			maxWB = v
		}
	}
	if maxWB > 0 {
		for i := range wb {
			wb[i] /= maxWB
		}
	}

	t := params.ExposureTimeSeconds
	if t <= 0 {
		t = 1.0 / 125
	}
	beta := float64(stock.Reciprocity.Beta)
	tEff := float32(math.Pow(float64(t), 1+beta))

	coupling := couplingMatrix(stock)
	curves := [3]filmstock.HDCurve{stock.CurveR, stock.CurveG, stock.CurveB}
	gains := stock.LayerGains

	if img.Width <= 0 || img.Height <= 0 {
		return nil, &ferrors.DimensionError{Width: img.Width, Height: img.Height, Got: len(img.Data)}
	}
	// Develop runs once per row band per pipeline.Process call, so its
	// output buffer is pooled: repeated runs at the same image/band size
	// (the common case) reuse an already-allocated backing array instead
	// of allocating fresh on every call.
	out := imagebuf.Get(img.Width, img.Height)

	width := params.PixelLoopWidth
	if width < 1 {
		width = 1
	}
	total := img.Width * img.Height
	for base := 0; base < total; base += width {
		end := base + width
		if end > total {
			end = total
		}
		for px := base; px < end; px++ {
			i := px * 3
			rgb := [3]float32{img.Data[i], img.Data[i+1], img.Data[i+2]}

			exposure := specMatrix.Apply(rgb)
			var density [3]float32
			for l := 0; l < 3; l++ {
				e := exposure[l]
				if e < 0 {
					e = 0
				}
				e *= wb[l] * gains[l] * tEff
				logE := float32(math.Log10(math.Max(float64(e), exposureEpsilon)))
				d := HDCurveSigmoid(curves[l], logE)
				d = shoulderSoften(d, curves[l].ShoulderPoint)
				density[l] = d
			}

			// Coupling: net = max(D-dMin,0); Dout = M*net + dMin (per layer).
			netVec := mat.NewVecDense(3, []float64{
				math.Max(float64(density[0]-curves[0].DMin), 0),
				math.Max(float64(density[1]-curves[1].DMin), 0),
				math.Max(float64(density[2]-curves[2].DMin), 0),
			})
			var outVec mat.VecDense
			outVec.MulVec(coupling, netVec)

			for l := 0; l < 3; l++ {
				d := float32(outVec.AtVec(l)) + curves[l].DMin
				if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
					return nil, &ferrors.NumericalError{Stage: "develop", Pixel: px, Detail: "non-finite density"}
				}
				out.Data[i+l] = d
			}
		}
	}

	return out, nil
}
