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

// Package imagebuf is the dense W*H*3 float32 image buffer every pipeline
// stage reads and writes (spec.md §3 "ImageBuffer"), plus the sRGB
// linearize/encode conversions that bookend the pipeline.
package imagebuf

import (
	"math"

	"github.com/filmr/filmr/internal/ferrors"
)

// Buffer is a row-major, channel-interleaved [R,G,B, R,G,B, ...] dense
// float32 tensor of shape Width x Height x 3. No alpha channel is modeled.
// Ownership is exclusive: a stage consumes one buffer and yields one — see
// pool.go for the double-buffer reuse this implies.
type Buffer struct {
	Width  int
	Height int
	Data   []float32 // len == Width*Height*3
}

// New allocates a zeroed buffer of the given dimensions.
func New(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, &ferrors.DimensionError{Width: width, Height: height, Got: 0}
	}
	return &Buffer{Width: width, Height: height, Data: make([]float32, width*height*3)}, nil
}

// Validate checks the buffer's length is consistent with its declared
// dimensions (spec.md §7 DimensionError).
func (b *Buffer) Validate() error {
	want := b.Width * b.Height * 3
	if b.Width <= 0 || b.Height <= 0 || len(b.Data) != want {
		return &ferrors.DimensionError{Width: b.Width, Height: b.Height, Got: len(b.Data)}
	}
	return nil
}

// Clone returns a deep copy, used where a stage must retain a pristine
// original buffer across a later composite (spec.md §9, halation).
func (b *Buffer) Clone() *Buffer {
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return &Buffer{Width: b.Width, Height: b.Height, Data: data}
}

// At returns the pixel at (x,y) as an (R,G,B) triple.
func (b *Buffer) At(x, y int) (r, g, bl float32) {
	i := (y*b.Width + x) * 3
	return b.Data[i], b.Data[i+1], b.Data[i+2]
}

// Set writes the pixel at (x,y).
func (b *Buffer) Set(x, y int, r, g, bl float32) {
	i := (y*b.Width + x) * 3
	b.Data[i], b.Data[i+1], b.Data[i+2] = r, g, bl
}

// srgbDecode converts one IEC 61966-2-1 gamma-encoded channel sample in
// [0,1] to linear light.
func srgbDecode(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return float32(math.Pow(float64((c+0.055)/1.055), 2.4))
}

// srgbEncode converts one linear-light channel sample in [0,1] to
// IEC 61966-2-1 gamma-encoded.
func srgbEncode(c float32) float32 {
	if c <= 0 {
		return 0
	}
	if c <= 0.0031308 {
		return 12.92 * c
	}
	v := 1.055*float32(math.Pow(float64(c), 1.0/2.4)) - 0.055
	if v > 1 {
		return 1
	}
	return v
}

// SRGBDecode is exported for the round-trip test in spec.md §8.
func SRGBDecode(c float32) float32 { return srgbDecode(c) }

// SRGBEncode is exported for the round-trip test in spec.md §8.
func SRGBEncode(c float32) float32 { return srgbEncode(c) }

// FromSRGBBytes linearizes an interleaved 8-bit sRGB buffer into a float32
// Buffer (spec.md §2 stage 1, "Linearize").
func FromSRGBBytes(pixels []byte, width, height int) (*Buffer, error) {
	want := width * height * 3
	if width <= 0 || height <= 0 || len(pixels) != want {
		return nil, &ferrors.DimensionError{Width: width, Height: height, Got: len(pixels)}
	}
	b := &Buffer{Width: width, Height: height, Data: make([]float32, want)}
	for i, p := range pixels {
		b.Data[i] = srgbDecode(float32(p) / 255)
	}
	return b, nil
}

// ToSRGBBytes encodes a linear float32 Buffer back to interleaved 8-bit
// sRGB (spec.md §2 final "Output" step, sRGB encode).
func ToSRGBBytes(b *Buffer) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, len(b.Data))
	for i, v := range b.Data {
		e := srgbEncode(v)
		out[i] = byte(e*255 + 0.5)
	}
	return out, nil
}
