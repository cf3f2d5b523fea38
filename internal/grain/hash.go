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

// pixelHash produces a deterministic 32-bit seed from a pixel coordinate,
// a sub-channel tag, and a run seed. Implements the "deterministic hash
// seeded by (x,y,seed)" requirement in spec.md §4.4; the same 32-bit
// integer arithmetic must run identically on the GPU shader side (spec.md
// §5 CPU/GPU equivalence note), so this avoids anything platform-specific
// (no floating point, no library RNG state beyond the single seed it
// produces).
func pixelHash(x, y int32, channel uint32, seed uint64) uint32 {
	h := uint32(seed) ^ uint32(seed>>32)
	h ^= uint32(x)*0x9E3779B1 + uint32(y)*0x85EBCA77 + channel*0xC2B2AE3D
	// wang hash mix
	h = (h ^ 61) ^ (h >> 16)
	h = h + (h << 3)
	h = h ^ (h >> 4)
	h = h * 0x27d4eb2d
	h = h ^ (h >> 15)
	return h
}
