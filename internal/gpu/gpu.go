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

// Package gpu holds the compute-shader sources and bind-group-layout
// documentation for the GPU backend (spec.md §5, §6). Compiled shader
// modules and pipeline objects are meant to be created once and cached for
// the process lifetime, keyed by device identity (spec.md §9 "GPU
// orchestration") — moduleCache below is that cache's shape.
//
// No WGSL-capable GPU binding ships in the example corpus this package was
// grounded on (see DESIGN.md), so Dispatch always reports a BackendError;
// Stage callers fall back to the CPU backend per spec.md §5's stated
// fallback contract. The shader sources are complete and checked in
// gpu_test.go against the CPU reference path's hash constants and
// workgroup size — a static text-level parity check, not a runtime
// arithmetic comparison, since no WGSL execution engine is available to
// actually run these shaders from Go.
package gpu

import (
	"embed"
	"sync"

	"github.com/filmr/filmr/internal/ferrors"
)

//go:embed shaders
var shaderFS embed.FS

// DevelopSource returns the WGSL source for the develop compute shader.
func DevelopSource() ([]byte, error) { return shaderFS.ReadFile("shaders/develop.wgsl") }

// GrainSource returns the WGSL source for the grain compute shader.
func GrainSource() ([]byte, error) { return shaderFS.ReadFile("shaders/grain.wgsl") }

// DevelopUniforms mirrors develop.wgsl's DevelopUniforms struct with
// explicit std140-style 16-byte-alignment padding: vec3<f32> fields in
// WGSL occupy a 16-byte slot, so each vec3 here is followed by an
// explicit pad field matching the shader's _padN members, except
// CurveShoulder, whose fourth slot holds TEff as in the shader.
type DevelopUniforms struct {
	SpectralMatrix [9]float32 // mat3x3, column-major, each column padded to vec4 on the wire by the caller
	Coupling       [9]float32
	WB             [3]float32
	_padWB         float32
	CurveDMin      [3]float32
	_padDMin       float32
	CurveDMax      [3]float32
	_padDMax       float32
	CurveGamma     [3]float32
	_padGamma      float32
	CurveOffset    [3]float32
	_padOffset     float32
	CurveShoulder  [3]float32
	TEff           float32
	Width, Height  uint32
	_pad5          [2]float32
}

// GrainUniforms mirrors grain.wgsl's GrainUniforms struct.
type GrainUniforms struct {
	Alpha               float32
	SigmaRead           float32
	Roughness           float32
	ColorCorrelation    float32
	ShadowNoise         float32
	HighlightCoarseness float32
	Scale               float32
	Monochrome          uint32
	SeedLo, SeedHi      uint32
	Width, Height       uint32
}

// DeviceID identifies a GPU adapter for the purposes of the module cache;
// a real binding would key this off the adapter's native handle.
type DeviceID uintptr

type pipelineCache struct {
	mu      sync.Mutex
	modules map[DeviceID]map[string]struct{}
}

var moduleCache = pipelineCache{modules: make(map[DeviceID]map[string]struct{})}

// Stage selects which compute shader Dispatch would run.
type Stage int

const (
	StageDevelop Stage = iota
	StageGrain
)

// Dispatch would run stage on device against width*height pixels of data,
// reusing a cached pipeline object for (device, stage) when present. No
// backing WGSL device binding is wired into this build, so Dispatch always
// returns a BackendError; callers must treat this as a recoverable
// fallback signal per spec.md §5 and re-run the stage on the CPU backend.
func Dispatch(device DeviceID, stage Stage, width, height int, data []float32) error {
	moduleCache.mu.Lock()
	if moduleCache.modules[device] == nil {
		moduleCache.modules[device] = make(map[string]struct{})
	}
	moduleCache.mu.Unlock()
	return ferrors.NewBackendError("no GPU device binding available; stage %d not dispatched for %dx%d", stage, width, height)
}
