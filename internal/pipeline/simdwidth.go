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

package pipeline

import "github.com/klauspost/cpuid/v2"

// rowLoopWidth picks how many pixels develop.Apply's per-pixel loop
// advances per outer iteration (develop.Params.PixelLoopWidth), the same
// AVX2-gated dispatch idea as the teacher's internal/noise_amd64.go /
// internal/stats_amd64.go (there gating a real assembly kernel; here gating
// plain Go loop-block sizing, since no AVX2 kernels ship in this build —
// see DESIGN.md).
func rowLoopWidth() int {
	if cpuid.CPU.Supports(cpuid.AVX2) {
		return 8
	}
	return 1
}
