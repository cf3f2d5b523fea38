package pipeline

import (
	"testing"

	"github.com/filmr/filmr/internal/filmstock"
	"github.com/filmr/filmr/internal/lightleak"
	"github.com/filmr/filmr/internal/output"
	"github.com/filmr/filmr/internal/spectrum"
)

func solidInput(width, height int, r, g, b byte) []byte {
	data := make([]byte, width*height*3)
	for i := 0; i < width*height; i++ {
		data[i*3], data[i*3+1], data[i*3+2] = r, g, b
	}
	return data
}

func TestProcessNeutralGrayStaysNeutral(t *testing.T) {
	stock := filmstock.Portra400()
	opts := Options{
		Stock:               stock,
		Illuminant:          spectrum.D65(),
		ExposureTimeSeconds: 1.0 / 125,
		OutputMode:          output.Negative,
		OutputSaturation:    1,
		OutputPaperGamma:    2.0,
	}
	in := solidInput(8, 8, 128, 128, 128)
	out, err := Process(in, 8, 8, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("output length = %d, want %d", len(out), len(in))
	}
	r, g, b := out[0], out[1], out[2]
	diffRG, diffGB := int(r)-int(g), int(g)-int(b)
	if diffRG < -6 || diffRG > 6 || diffGB < -6 || diffGB > 6 {
		t.Errorf("neutral input drifted to (%d,%d,%d)", r, g, b)
	}
}

func TestProcessWithGrainHalationAndLightLeak(t *testing.T) {
	stock := filmstock.Velvia50()
	opts := Options{
		Stock:               stock,
		Illuminant:          spectrum.D65(),
		ExposureTimeSeconds: 1.0 / 60,
		GrainActive:         true,
		GrainSeed:           42,
		HalationActive:      true,
		LightLeaks: []lightleak.Leak{
			{X: 0.1, Y: 0.1, Radius: 0.3, Intensity: 0.2, ColorRGB: [3]float32{1, 0.6, 0.3}, Shape: lightleak.Circle},
		},
		OutputMode:       output.Positive,
		OutputSaturation: 1.1,
		OutputPaperGamma: 1.5,
		MaxThreads:       2,
	}
	in := solidInput(32, 20, 200, 180, 160)
	out, err := Process(in, 32, 20, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("output length = %d, want %d", len(out), len(in))
	}
}

func TestProcessRejectsInvalidStock(t *testing.T) {
	bad := filmstock.Portra400()
	bad.CurveR.Gamma = 0
	_, err := Process(solidInput(2, 2, 10, 10, 10), 2, 2, Options{Stock: bad})
	if err == nil {
		t.Fatal("expected a configuration error")
	}
}

func TestRowBandsCoverFullHeight(t *testing.T) {
	bands := RowBands(4000, 3000, 1) // 1 MiB budget forces multiple bands
	if len(bands) < 2 {
		t.Fatalf("expected multiple bands at a tiny memory budget, got %d", len(bands))
	}
	if bands[0][0] != 0 {
		t.Fatalf("first band should start at row 0, got %d", bands[0][0])
	}
	if bands[len(bands)-1][1] != 3000 {
		t.Fatalf("last band should end at height, got %d", bands[len(bands)-1][1])
	}
	for i := 1; i < len(bands); i++ {
		if bands[i][0] != bands[i-1][1] {
			t.Fatalf("bands not contiguous: %v then %v", bands[i-1], bands[i])
		}
	}
}
