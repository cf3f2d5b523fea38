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

package grain

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// gray16Plane adapts a single-channel float32 noise field to image.Image /
// draw.Image so golang.org/x/image/draw's resamplers can be reused for the
// noise-field resizing spec.md §4.4 calls for, instead of hand-rolling a
// second bilinear scaler next to the one draw.BiLinear already provides.
// Values are affinely mapped to the full Gray16 range and back, which costs
// 16 bits of precision — adequate for a noise field that is itself an
// approximation.
type gray16Plane struct {
	w, h   int
	data   []uint16
	lo, hi float32 // value range represented by [0,0xffff]
}

func newGray16Plane(w, h int, lo, hi float32) *gray16Plane {
	return &gray16Plane{w: w, h: h, data: make([]uint16, w*h), lo: lo, hi: hi}
}

func (p *gray16Plane) ColorModel() color.Model { return color.Gray16Model }
func (p *gray16Plane) Bounds() image.Rectangle { return image.Rect(0, 0, p.w, p.h) }
func (p *gray16Plane) At(x, y int) color.Color {
	return color.Gray16{Y: p.data[y*p.w+x]}
}
func (p *gray16Plane) Set(x, y int, c color.Color) {
	g := color.Gray16Model.Convert(c).(color.Gray16)
	p.data[y*p.w+x] = g.Y
}

func (p *gray16Plane) encode(idx int, v float32) {
	rng := p.hi - p.lo
	if rng <= 0 {
		rng = 1
	}
	t := (v - p.lo) / rng
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	p.data[idx] = uint16(t * 65535)
}

func (p *gray16Plane) decode(idx int) float32 {
	rng := p.hi - p.lo
	return p.lo + (float32(p.data[idx])/65535)*rng
}

func fieldRange(field []float32) (lo, hi float32) {
	lo, hi = field[0], field[0]
	for _, v := range field {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi-lo < 1e-6 {
		hi = lo + 1e-6
	}
	return lo, hi
}

// resampleField resamples a w x h float32 field to dstW x dstH using
// bilinear interpolation via golang.org/x/image/draw.
func resampleField(field []float32, w, h, dstW, dstH int) []float32 {
	lo, hi := fieldRange(field)
	src := newGray16Plane(w, h, lo, hi)
	for i, v := range field {
		src.encode(i, v)
	}
	dst := newGray16Plane(dstW, dstH, lo, hi)
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	out := make([]float32, dstW*dstH)
	for i := range out {
		out[i] = dst.decode(i)
	}
	return out
}
