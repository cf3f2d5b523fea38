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

import (
	"runtime"

	"github.com/pbnjay/memory"
)

// buffersPerRow counts the float32 row buffers in the pipeline's peak
// per-row working set: the source row, the density row, and one scratch
// row, each 3 channels wide.
const buffersPerRow = 3

// RowBands splits an image of the given height into row-aligned bands
// sized to fit within budgetMiB of physical memory, mirroring the
// teacher's PrepareBatches memory-budgeting approach (internal/batch.go)
// but budgeting image rows instead of whole frames. A budgetMiB of 0
// queries the machine's physical memory via pbnjay/memory, as the teacher
// does for -stMemory's default.
func RowBands(width, height int, budgetMiB int64) [][2]int {
	if budgetMiB <= 0 {
		budgetMiB = int64(memory.TotalMemory() / 1024 / 1024 / 4) // leave headroom for the rest of the process
	}
	bytesPerRowActual := int64(width) * buffersPerRow * 3 * 4
	if bytesPerRowActual <= 0 {
		bytesPerRowActual = 1
	}
	rowsPerBand := int((budgetMiB * 1024 * 1024) / bytesPerRowActual)
	if rowsPerBand < 1 {
		rowsPerBand = 1
	}
	if rowsPerBand > height {
		rowsPerBand = height
	}

	var bands [][2]int
	for start := 0; start < height; start += rowsPerBand {
		end := start + rowsPerBand
		if end > height {
			end = height
		}
		bands = append(bands, [2]int{start, end})
	}
	return bands
}

// workerCount resolves MaxThreads to a concrete goroutine budget, 0
// meaning "use all logical CPUs" as runtime.GOMAXPROCS(0) reports.
func workerCount(maxThreads int64) int64 {
	if maxThreads > 0 {
		return maxThreads
	}
	return int64(runtime.GOMAXPROCS(0))
}

// runBands runs fn once per row band, fanning out across a semaphore
// channel of size workerCount(maxThreads) — the same bounded-concurrency
// pattern as the teacher's OpParallel.ApplyToFITS (internal/operator.go),
// generalized from "one goroutine per frame" to "one goroutine per row
// band" and fixed to aggregate worker errors instead of only logging them.
func runBands(bands [][2]int, maxThreads int64, fn func(startRow, endRow int) error) error {
	sem := make(chan struct{}, workerCount(maxThreads))
	errs := make(chan error, len(bands))

	for _, band := range bands {
		sem <- struct{}{}
		go func(start, end int) {
			defer func() { <-sem }()
			errs <- fn(start, end)
		}(band[0], band[1])
	}
	for i := 0; i < cap(sem); i++ {
		sem <- struct{}{}
	}
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
