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

// Package pipeline orchestrates the stage sequence of spec.md §2: Linearize
// → Develop → Grain → Output(density→linear half) → Halation → LightLeak →
// Output(sRGB encode half). The stage abstraction is a small closed set of
// variants dispatched by tag rather than by interface polymorphism, per
// spec.md §9 "Polymorphism" — mirroring the tagged OperatorUnary /
// OpSequence pattern from the teacher's internal/operator.go, generalized
// from FITS frames to linear RGB image buffers.
package pipeline

import (
	"github.com/filmr/filmr/internal/corelog"
	"github.com/filmr/filmr/internal/develop"
	"github.com/filmr/filmr/internal/ferrors"
	"github.com/filmr/filmr/internal/filmstock"
	"github.com/filmr/filmr/internal/grain"
	"github.com/filmr/filmr/internal/halation"
	"github.com/filmr/filmr/internal/imagebuf"
	"github.com/filmr/filmr/internal/lightleak"
	"github.com/filmr/filmr/internal/output"
	"github.com/filmr/filmr/internal/spectrum"
)

// Options is the configuration record for one processing run — "an
// ordered list of enabled stages with their parameters" (spec.md §3
// "Pipeline"). Unlike the teacher's OpSequence, stage order here is fixed
// by the orchestrator; Options only carries each stage's parameters and an
// Active flag per optional stage, following the teacher's
// constructor-computed Active bool convention (e.g. OpSave.Active).
type Options struct {
	Stock      filmstock.FilmStock
	Illuminant spectrum.Illuminant

	ExposureTimeSeconds float32
	Warmth              float32

	GrainSeed    uint64
	GrainActive  bool
	HalationActive bool

	LightLeaks []lightleak.Leak

	OutputMode       output.Mode
	OutputSaturation float32
	OutputPaperGamma float32

	// MaxThreads bounds the CPU worker pool used for row-banded tiling on
	// large images (spec.md §5); 0 selects runtime.GOMAXPROCS(0).
	MaxThreads int64
}

// Process runs the full stage sequence against an 8-bit sRGB input image
// and returns an 8-bit sRGB output image of the same dimensions. An invalid
// stock is rejected up front with Validate's *ferrors.ConfigurationError,
// unwrapped; any stage error is wrapped in a *ferrors.StageError naming the
// failing stage.
func Process(pixels []byte, width, height int, opts Options) ([]byte, error) {
	if err := opts.Stock.Validate(); err != nil {
		return nil, err
	}

	linear, err := imagebuf.FromSRGBBytes(pixels, width, height)
	if err != nil {
		return nil, &ferrors.StageError{Stage: "linearize", PixelEnd: width * height, Err: err}
	}
	corelog.Printf("linearized %dx%d sRGB input\n", width, height)

	developed, err := developBanded(linear, opts)
	if err != nil {
		return nil, &ferrors.StageError{Stage: "develop", PixelEnd: width * height, Err: err}
	}

	density := developed
	if opts.GrainActive {
		density, err = grain.Apply(density, opts.Stock, grain.Params{Seed: opts.GrainSeed})
		if err != nil {
			return nil, &ferrors.StageError{Stage: "grain", PixelEnd: width * height, Err: err}
		}
	}

	// Output's density→linear half runs before halation/lightleak, which
	// operate in linear space (spec.md §9 open question, resolved).
	linearImg, err := output.ApplyLinear(density, output.Params{
		DMin:       opts.Stock.CurveR.DMin,
		TMin:       opts.Stock.TMin,
		TMax:       opts.Stock.TMax,
		PaperGamma: opts.OutputPaperGamma,
		Saturation: opts.OutputSaturation,
		Mode:       opts.OutputMode,
	})
	if err != nil {
		return nil, &ferrors.StageError{Stage: "output-linearize", PixelEnd: width * height, Err: err}
	}

	if opts.HalationActive {
		linearImg, err = halation.Apply(linearImg, opts.Stock.Halation)
		if err != nil {
			return nil, &ferrors.StageError{Stage: "halation", PixelEnd: width * height, Err: err}
		}
	}

	if len(opts.LightLeaks) > 0 {
		lightleak.Apply(linearImg.Data, width, height, opts.LightLeaks)
	}

	out, err := imagebuf.ToSRGBBytes(linearImg)
	if err != nil {
		return nil, &ferrors.StageError{Stage: "output-encode", PixelEnd: width * height, Err: err}
	}
	return out, nil
}

// developBanded runs the develop stage across row bands sized to fit the
// process's memory budget, fanning out across a worker pool sized to
// opts.MaxThreads (spec.md §5). Develop has no cross-row dependency, so
// each band can be processed independently and written into its own slice
// of the output buffer — unlike grain and halation, which correlate
// neighboring pixels and so run on the whole image at once.
func developBanded(linear *imagebuf.Buffer, opts Options) (*imagebuf.Buffer, error) {
	width, height := linear.Width, linear.Height
	out, err := imagebuf.New(width, height)
	if err != nil {
		return nil, err
	}

	bands := pipelineRowBands(width, height)
	corelog.Printf("develop: %d row band(s), loop width %d, %d worker(s)\n", len(bands), rowLoopWidth(), workerCount(opts.MaxThreads))

	params := develop.Params{
		Illuminant:          opts.Illuminant,
		ExposureTimeSeconds: opts.ExposureTimeSeconds,
		Warmth:              opts.Warmth,
		PixelLoopWidth:      rowLoopWidth(),
	}

	return out, runBands(bands, opts.MaxThreads, func(startRow, endRow int) error {
		bandRows := endRow - startRow
		band := &imagebuf.Buffer{
			Width:  width,
			Height: bandRows,
			Data:   linear.Data[startRow*width*3 : endRow*width*3],
		}
		devBand, err := develop.Apply(band, opts.Stock, params)
		if err != nil {
			return err
		}
		copy(out.Data[startRow*width*3:endRow*width*3], devBand.Data)
		imagebuf.Put(devBand)
		return nil
	})
}

// pipelineRowBands is RowBands with a 0 (auto) memory budget.
func pipelineRowBands(width, height int) [][2]int {
	return RowBands(width, height, 0)
}
