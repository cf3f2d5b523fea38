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

package filmstock

import (
	"encoding/json"
	"io"

	"github.com/filmr/filmr/internal/ferrors"
)

func notFound(name string) error {
	return ferrors.NewConfigurationError("unknown film stock %q", name)
}

// jsonFilmStock mirrors FilmStock but with JSON-friendly spectral
// sensitivity fields, since Spectrum is tagged "-" on FilmStock itself
// (sensitivities are normally resolved from the built-in preset table;
// a preset file may still override them with raw 81-sample arrays).
type jsonFilmStock struct {
	FilmStock
	SensitivityR *[81]float32 `json:"sensitivityR,omitempty"`
	SensitivityG *[81]float32 `json:"sensitivityG,omitempty"`
	SensitivityB *[81]float32 `json:"sensitivityB,omitempty"`
}

// LoadPresetsJSON parses a JSON array of FilmStock serializations (spec.md
// §6 "Preset file format"). Unknown fields are ignored by encoding/json's
// default behavior; a stock missing required fields fails Validate and is
// reported as a ConfigurationError.
func LoadPresetsJSON(r io.Reader) ([]FilmStock, error) {
	var raw []jsonFilmStock
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, ferrors.NewConfigurationError("malformed preset JSON: %s", err)
	}
	out := make([]FilmStock, 0, len(raw))
	for _, j := range raw {
		f := j.FilmStock
		if j.SensitivityR != nil {
			f.SensitivityR.Samples = *j.SensitivityR
		}
		if j.SensitivityG != nil {
			f.SensitivityG.Samples = *j.SensitivityG
		}
		if j.SensitivityB != nil {
			f.SensitivityB.Samples = *j.SensitivityB
		}
		if err := f.Validate(); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// SavePresetsJSON serializes stocks as a JSON array in the format
// LoadPresetsJSON accepts.
func SavePresetsJSON(w io.Writer, stocks []FilmStock) error {
	out := make([]jsonFilmStock, len(stocks))
	for i, f := range stocks {
		rs, gs, bs := f.SensitivityR.Samples, f.SensitivityG.Samples, f.SensitivityB.Samples
		out[i] = jsonFilmStock{FilmStock: f, SensitivityR: &rs, SensitivityG: &gs, SensitivityB: &bs}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
