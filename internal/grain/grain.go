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

// Package grain implements spec.md §4.4: density-variant correlated
// Gaussian noise synthesis, with optional monochrome mode and
// resolution-dependent amplitude/blur scaling.
package grain

import (
	"math"

	"github.com/filmr/filmr/internal/filmstock"
	"github.com/filmr/filmr/internal/imagebuf"
)

// referenceWidth is the resolution grain parameters are calibrated against
// (spec.md §4.4 "Resolution scaling").
const referenceWidth = 2000

// Params bundles the per-run inputs grain.Apply needs beyond the image and
// the stock's GrainParams.
type Params struct {
	Seed uint64
}

// uniform01 turns a 32-bit hash into a uniform float in (0,1), using only
// its top 24 bits as a mantissa so the conversion is exact in float32 and
// reproducible bit-for-bit across CPU and GPU (spec.md §5).
func uniform01(h uint32) float32 {
	v := (h >> 8) // 24 bits
	f := float32(v) * (1.0 / 16777216.0)
	if f <= 0 {
		f = 1e-7
	}
	if f >= 1 {
		f = 1 - 1e-7
	}
	return f
}

// boxMuller draws one standard-normal sample from two independent uniform
// hashes of the same pixel (spec.md §4.4 "Draw Gaussian samples via
// Box-Muller from a deterministic hash").
func boxMuller(x, y int32, channel uint32, seed uint64) float32 {
	u1 := uniform01(pixelHash(x, y, channel*2, seed))
	u2 := uniform01(pixelHash(x, y, channel*2+1, seed))
	r := math.Sqrt(-2 * math.Log(float64(u1)))
	theta := 2 * math.Pi * float64(u2)
	return float32(r * math.Cos(theta))
}

// variance evaluates sigma^2(D) from spec.md §4.4.
func variance(g filmstock.GrainParams, d float32) float32 {
	dc := d
	if dc < 0 {
		dc = 0
	}
	if dc > 1 {
		dc = 1
	}
	base := g.Alpha*float32(math.Pow(float64(d), 1.5)) + g.SigmaRead*g.SigmaRead
	rough := 1 + g.Roughness*float32(math.Sin(math.Pi*float64(dc)))
	shadow := g.ShadowNoise / (d + 0.1)
	return base*rough + shadow
}

// blurNoiseField applies the resolution-scaled Gaussian blur spec.md §4.4
// calls for ("a post-hoc Gaussian blur ... is applied to the noise field
// before addition"), using golang.org/x/image/draw to resample the noise
// plane down and back up at a factor derived from the requested radius —
// an inexpensive way to introduce the requested spatial correlation length
// without hand-rolling a second convolution kernel (the separable kernel in
// internal/halation already covers that code path).
func blurNoiseField(field []float32, width, height int, radius float32) []float32 {
	if radius < 0.5 {
		return field
	}
	factor := radius
	if factor < 1 {
		factor = 1
	}
	smallW, smallH := maxInt(1, int(float32(width)/factor)), maxInt(1, int(float32(height)/factor))

	small := resampleField(field, width, height, smallW, smallH)
	return resampleField(small, smallW, smallH, width, height)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Apply runs the grain stage in place: it adds correlated Gaussian noise to
// a density buffer (spec.md §4.4).
func Apply(img *imagebuf.Buffer, stock filmstock.FilmStock, params Params) (*imagebuf.Buffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	g := stock.Grain
	scale := float32(img.Width) / referenceWidth
	if scale <= 0 {
		scale = 1
	}

	w, h := img.Width, img.Height
	n := w * h

	// Shared luminance-driven noise field (used directly for monochrome,
	// blended in for color) and clump weighting.
	dMaxAll := maxF(maxF(stock.CurveR.DMax, stock.CurveG.DMax), stock.CurveB.DMax)

	sharedFine := make([]float32, n)
	indepFine := [3][]float32{make([]float32, n), make([]float32, n), make([]float32, n)}
	clump := make([]float32, n)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			i := idx * 3
			lum := 0.2126*img.Data[i] + 0.7152*img.Data[i+1] + 0.0722*img.Data[i+2]

			sharedFine[idx] = boxMuller(int32(x), int32(y), 0, params.Seed) * float32(math.Sqrt(float64(variance(g, lum))))
			for c := 0; c < 3; c++ {
				indepFine[c][idx] = boxMuller(int32(x), int32(y), uint32(c+1), params.Seed) * float32(math.Sqrt(float64(variance(g, img.Data[i+c]))))
			}

			dRef := dMaxAll
			if dRef <= 0 {
				dRef = 1
			}
			ratio := lum / dRef
			clump[idx] = ratio * ratio * g.HighlightCoarseness
		}
	}

	// Coarse stratified sample at 3x scale, weighted by clump intensity.
	coarseW, coarseH := maxInt(1, w/3), maxInt(1, h/3)
	coarse := make([]float32, coarseW*coarseH)
	for cy := 0; cy < coarseH; cy++ {
		for cx := 0; cx < coarseW; cx++ {
			coarse[cy*coarseW+cx] = boxMuller(int32(cx), int32(cy), 100, params.Seed)
		}
	}
	upsampled := resampleField(coarse, coarseW, coarseH, w, h)

	blurRadius := g.GrainRadius * scale
	sharedFine = blurNoiseField(sharedFine, w, h, blurRadius)
	for c := 0; c < 3; c++ {
		indepFine[c] = blurNoiseField(indepFine[c], w, h, blurRadius)
	}

	out := img // grain is additive in density space; safe to mutate in place
	for idx := 0; idx < n; idx++ {
		i := idx * 3
		clumped := upsampled[idx] * clump[idx] * scale

		if g.Monochrome {
			noise := sharedFine[idx] + clumped
			out.Data[i] = maxF(out.Data[i]+noise, 0)
			out.Data[i+1] = maxF(out.Data[i+1]+noise, 0)
			out.Data[i+2] = maxF(out.Data[i+2]+noise, 0)
			continue
		}

		corr := g.ColorCorrelation
		for c := 0; c < 3; c++ {
			noise := corr*sharedFine[idx] + (1-corr)*indepFine[c][idx] + clumped
			out.Data[i+c] = maxF(out.Data[i+c]+noise, 0)
		}
	}

	return out, nil
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
