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

package verify

import (
	"testing"

	"github.com/filmr/filmr/internal/filmstock"
)

func TestRunCoversAllLayersForColorStock(t *testing.T) {
	report := Run(filmstock.Portra400())
	if report.Stock != "Portra 400" {
		t.Errorf("Stock = %q, want Portra 400", report.Stock)
	}
	for i, l := range report.Layers {
		if l.Name == "" {
			t.Errorf("layer %d has no name for a color stock, want all 7 layers applicable", i)
		}
		if l.Metrics == nil {
			t.Errorf("layer %d (%s) has no metrics", i, l.Name)
		}
	}
	if report.Score < 0 || report.Score > 1 {
		t.Errorf("Score = %v, want in [0,1]", report.Score)
	}
}

func TestRunSkipsColorOnlyLayersForBlackAndWhite(t *testing.T) {
	report := Run(filmstock.TriX400())
	skipped := []int{2, 4} // ChemicalCoupling, Colorimetric
	for _, i := range skipped {
		if report.Layers[i].Name != "" {
			t.Errorf("layer %d should be inapplicable for a B&W stock, got %q", i, report.Layers[i].Name)
		}
	}
	for _, i := range []int{0, 1, 3, 5, 6} {
		if report.Layers[i].Name == "" {
			t.Errorf("layer %d should still run for a B&W stock", i)
		}
	}
}

func TestRunScoreCountsOnlyApplicableLayers(t *testing.T) {
	report := Run(filmstock.TriX400())
	applicable, passed := 0, 0
	for _, l := range report.Layers {
		if l.Name == "" {
			continue
		}
		applicable++
		if l.Pass {
			passed++
		}
	}
	if applicable != 5 {
		t.Fatalf("applicable layers = %d, want 5 for a B&W stock", applicable)
	}
	want := float64(passed) / float64(applicable)
	if report.Score != want {
		t.Errorf("Score = %v, want %v", report.Score, want)
	}
}

func TestChemicalCouplingPassesForNeutralPresets(t *testing.T) {
	for _, stock := range filmstock.Presets() {
		if !stock.IsColor() {
			continue
		}
		var r Report
		layerChemicalCoupling(&r, stock)
		if !r.Layers[2].Pass {
			t.Errorf("%s: expected chemical coupling within tolerance, got %+v", stock.Name, r.Layers[2])
		}
	}
}

func TestRunDoesNotPanicForAnyPreset(t *testing.T) {
	for _, stock := range filmstock.Presets() {
		report := Run(stock)
		if report.Stock != stock.Name {
			t.Errorf("Stock = %q, want %q", report.Stock, stock.Name)
		}
	}
}
