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

// Package halation implements spec.md §4.5: a luminance-thresholded,
// two-pass separable Gaussian blur of bright regions, composited back as
// tinted light. The kernel construction and separable convolution are
// adapted from the teacher's unsharp-mask kernel (nightlight's
// internal/usm.go GaussianDefiniteIntegral / Convolve1DX), generalized to
// also convolve along Y and to reflect-pad at the border.
package halation

import (
	"math"

	"github.com/filmr/filmr/internal/filmstock"
	"github.com/filmr/filmr/internal/imagebuf"
)

const sqrt2 = 1.4142135623730951

// maxRadius bounds the dynamic kernel radius per spec.md §4.5.
const maxRadius = 50

func gaussianDefiniteIntegral(mu, sigma, x float32) float32 {
	return 0.5 * (1 + float32(math.Erf(float64((x-mu)/(sqrt2*sigma)))))
}

// gaussianKernel1D builds a normalized 1D Gaussian kernel for the given
// sigma via symbolic integration, exactly as the teacher's
// GaussianKernel1D does, but capped at maxRadius per spec.md §4.5's
// "min(ceil(3*sigma), 50)" dynamic radius rule.
func gaussianKernel1D(sigma float32) []float32 {
	radius := int(math.Ceil(float64(3 * sigma)))
	if radius < 1 {
		radius = 1
	}
	if radius > maxRadius {
		radius = maxRadius
	}
	width := 2*radius + 1
	kernel := make([]float32, width)

	sum := float32(0)
	lower := gaussianDefiniteIntegral(0, sigma, float32(-radius)-0.5)
	for i := 0; i <= radius; i++ {
		upper := gaussianDefiniteIntegral(0, sigma, float32(-radius+i)+0.5)
		delta := upper - lower
		kernel[i] = delta
		sum += delta
		lower = upper
	}
	for i := 1; i <= radius; i++ {
		v := kernel[radius-i]
		kernel[radius+i] = v
		sum += v
	}
	factor := float32(1)
	if sum > 0 {
		factor = 1 / sum
	}
	for i := range kernel {
		kernel[i] *= factor
	}
	return kernel
}

func reflect(size, x int) int {
	if x < 0 {
		return -x - 1
	}
	if x >= size {
		return 2*size - x - 1
	}
	return x
}

// convolveX convolves a single-channel plane horizontally.
func convolveX(dst, src []float32, width, height int, kernel []float32) {
	k := len(kernel) / 2
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			sum := float32(0)
			for j, kv := range kernel {
				sx := reflect(width, x+j-k)
				sum += src[row+sx] * kv
			}
			dst[row+x] = sum
		}
	}
}

// convolveY convolves a single-channel plane vertically.
func convolveY(dst, src []float32, width, height int, kernel []float32) {
	k := len(kernel) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := float32(0)
			for j, kv := range kernel {
				sy := reflect(height, y+j-k)
				sum += src[sy*width+x] * kv
			}
			dst[y*width+x] = sum
		}
	}
}

// Apply runs the halation stage on a linear RGB buffer, returning the
// composited result in a newly allocated buffer (spec.md §4.5). The
// original buffer's bright regions feed the blur; the original itself is
// not modified, so it is intact for the final additive composite (spec.md §9).
func Apply(img *imagebuf.Buffer, h filmstock.HalationParams) (*imagebuf.Buffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	w, ht := img.Width, img.Height
	n := w * ht

	threshold := make([]float32, n*3)
	for idx := 0; idx < n; idx++ {
		i := idx * 3
		r, g, b := img.Data[i], img.Data[i+1], img.Data[i+2]
		lum := 0.2126*r + 0.7152*g + 0.0722*b
		if lum < h.Threshold {
			continue
		}
		threshold[i] = maxF(r-h.Threshold, 0)
		threshold[i+1] = maxF(g-h.Threshold, 0)
		threshold[i+2] = maxF(b-h.Threshold, 0)
	}

	kernel := gaussianKernel1D(h.Sigma)

	passH := make([]float32, n*3)
	for c := 0; c < 3; c++ {
		plane := make([]float32, n)
		out := make([]float32, n)
		for idx := 0; idx < n; idx++ {
			plane[idx] = threshold[idx*3+c]
		}
		convolveX(out, plane, w, ht, kernel)
		for idx := 0; idx < n; idx++ {
			passH[idx*3+c] = out[idx]
		}
	}

	passV := make([]float32, n*3)
	for c := 0; c < 3; c++ {
		plane := make([]float32, n)
		out := make([]float32, n)
		for idx := 0; idx < n; idx++ {
			plane[idx] = passH[idx*3+c]
		}
		convolveY(out, plane, w, ht, kernel)
		for idx := 0; idx < n; idx++ {
			passV[idx*3+c] = out[idx]
		}
	}

	out, err := imagebuf.New(w, ht)
	if err != nil {
		return nil, err
	}
	tint := h.TintRGB
	for idx := 0; idx < n; idx++ {
		i := idx * 3
		out.Data[i] = img.Data[i] + passV[i]*tint[0]*h.Strength
		out.Data[i+1] = img.Data[i+1] + passV[i+1]*tint[1]*h.Strength
		out.Data[i+2] = img.Data[i+2] + passV[i+2]*tint[2]*h.Strength
	}
	return out, nil
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
