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

// Package output implements spec.md §4.7: the final stage turning a
// per-layer density image into displayable sRGB, via transmittance, the
// negative/positive paper-projection branch, saturation, and the sRGB
// transfer curve.
package output

import (
	"math"

	"github.com/filmr/filmr/internal/imagebuf"
)

// Mode selects the negative/positive branch of step 3 (spec.md §4.7).
type Mode int

const (
	Negative Mode = iota
	Positive
)

// Params bundles the per-run inputs output.Apply needs beyond the image
// and the stock's d_min/t_min/t_max.
type Params struct {
	DMin       float32
	TMin, TMax float32
	PaperGamma float32 // <= 0 selects 2.0 for every stock type; there is no separate slide default
	Saturation float32
	Mode       Mode
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func transmittance(net float32) float32 {
	if net < 0 {
		net = 0
	}
	t := float32(math.Pow(10, -float64(net)))
	if net > 1.5 {
		t *= clamp(1+(net-1.5)*0.02, 0.97, 1.03)
	}
	return t
}

// saturate scales a linear RGB triple around its luminance by a saturation
// factor (spec.md §4.7 step 4). Stays in linear RGB since the spec defines
// this directly in terms of Rec.709 luminance, not a perceptual color
// space — go-colorful's Lab/ΔE2000 machinery is reserved for the quality
// verifier, where perceptual distance is actually what's being measured.
func saturate(r, g, b, saturation float32) (float32, float32, float32) {
	lum := 0.2126*r + 0.7152*g + 0.0722*b
	r = lum + (r-lum)*saturation
	g = lum + (g-lum)*saturation
	b = lum + (b-lum)*saturation
	return r, g, b
}

// ApplyLinear runs output steps 1-4 (spec.md §4.7): transmittance, the
// negative/positive branch, and saturation, stopping short of the final
// sRGB encode so halation and light-leak (spec.md §9, resolved to run in
// linear space after this half of Output) can composite before the caller
// encodes; pipeline.Process encodes with imagebuf.ToSRGBBytes.
func ApplyLinear(density *imagebuf.Buffer, p Params) (*imagebuf.Buffer, error) {
	if err := density.Validate(); err != nil {
		return nil, err
	}
	out, err := imagebuf.New(density.Width, density.Height)
	if err != nil {
		return nil, err
	}

	trange := p.TMax - p.TMin
	if trange <= 0 {
		trange = 1
	}
	gamma := p.PaperGamma
	if gamma <= 0 {
		gamma = 2.0
	}
	sat := p.Saturation

	n := density.Width * density.Height
	for idx := 0; idx < n; idx++ {
		i := idx * 3
		var lin [3]float32
		for c := 0; c < 3; c++ {
			net := density.Data[i+c] - p.DMin
			if net < 0 {
				net = 0
			}
			t := transmittance(net)

			var v float32
			switch p.Mode {
			case Positive:
				norm := clamp(p.TMax-t, 0, trange) / trange
				v = float32(math.Pow(float64(norm), float64(gamma)))
			default:
				v = clamp(t, 0, 1)
			}
			lin[c] = v
		}

		r, g, b := saturate(lin[0], lin[1], lin[2], sat)
		out.Data[i], out.Data[i+1], out.Data[i+2] = r, g, b
	}
	return out, nil
}

// Apply runs the full output stage, consuming a density buffer and
// producing an 8-bit sRGB-encoded buffer — ApplyLinear followed directly
// by the sRGB encode, for callers with no halation/light-leak stage
// between the two.
func Apply(density *imagebuf.Buffer, p Params) ([]byte, error) {
	lin, err := ApplyLinear(density, p)
	if err != nil {
		return nil, err
	}
	return imagebuf.ToSRGBBytes(lin)
}
