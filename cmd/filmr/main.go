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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/filmr/filmr/internal/corelog"
	"github.com/filmr/filmr/internal/ferrors"
	"github.com/filmr/filmr/internal/filmstock"
	"github.com/filmr/filmr/internal/lightleak"
	"github.com/filmr/filmr/internal/output"
	"github.com/filmr/filmr/internal/pipeline"
	"github.com/filmr/filmr/internal/spectrum"
	"github.com/filmr/filmr/internal/verify"
)

const version = "0.1.0"

// Exit codes (spec.md §7 "Propagation" mapped onto a CLI surface).
const (
	exitOK             = 0
	exitUsage          = 1
	exitConfiguration  = 2
	exitIO             = 3
	exitProcessing     = 4
)

var (
	stock      = flag.String("stock", "Portra 400", "film stock preset `name`, see the presets command")
	kelvin     = flag.Float64("illuminant", 6504, "illuminant color temperature in `kelvin`, e.g. 6504 for D65-ish daylight")
	exposure   = flag.Float64("exposure", 1.0/125, "exposure time in `seconds`")
	warmth     = flag.Float64("warmth", 0, "white balance warmth bias, -1..1")

	grain      = flag.Bool("grain", true, "apply the stock's grain stage")
	grainSeed  = flag.Int64("grainSeed", 1, "grain hash seed")
	halation   = flag.Bool("halation", true, "apply the stock's halation stage")

	leakShape  = flag.String("leakShape", "", "light-leak shape: circle, linear, organic, plasma; blank = no leak")
	leakX      = flag.Float64("leakX", 0.1, "light-leak center x, normalized [0,1]")
	leakY      = flag.Float64("leakY", 0.1, "light-leak center y, normalized [0,1]")
	leakRadius = flag.Float64("leakRadius", 0.3, "light-leak radius, normalized to image width")
	leakIntensity = flag.Float64("leakIntensity", 0.2, "light-leak intensity")
	leakR      = flag.Float64("leakR", 1.0, "light-leak tint red")
	leakG      = flag.Float64("leakG", 0.6, "light-leak tint green")
	leakB      = flag.Float64("leakB", 0.3, "light-leak tint blue")

	mode       = flag.String("mode", "negative", "output projection mode: negative or positive")
	saturation = flag.Float64("saturation", 1.0, "output saturation multiplier")
	paperGamma = flag.Float64("paperGamma", 2.0, "output paper gamma")

	threads = flag.Int64("threads", 0, "max worker threads for row-banded tiling, 0=runtime.GOMAXPROCS(0)")

	out = flag.String("out", "out.png", "save output to `file` (.png or .jpg)")
	log = flag.String("log", "%auto", "save log output to `file`. %auto replaces suffix of output file with .log")
)

func usage(w io.Writer) {
	fmt.Fprintf(w, `Filmr Copyright (c) 2024 Filmr Authors
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (process|verify|presets|legal|version) (img.png)

Commands:
  process  Run the film emulation pipeline on an input image
  verify   Run the quality verification harness against a stock and print the report
  presets  List built-in film stock presets
  legal    Show license and attribution information
  version  Show version information

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = func() { usage(os.Stdout) }
	flag.Parse()

	if *log == "%auto" {
		if *out != "" {
			*log = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".log"
		} else {
			*log = ""
		}
	}
	if *log != "" {
		if err := corelog.AlsoToFile(*log); err != nil {
			fmt.Fprintf(os.Stderr, "unable to open log file %s: %v\n", *log, err)
			os.Exit(exitIO)
		}
		defer corelog.Sync()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(exitUsage)
	}

	switch args[0] {
	case "legal":
		fmt.Print(legal)
	case "version":
		fmt.Printf("filmr %s\n", version)
	case "presets":
		runPresets(os.Stdout)
	case "verify":
		runVerify(os.Stdout)
	case "process":
		runProcess(os.Stdout, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage(os.Stderr)
		os.Exit(exitUsage)
	}
}

func runPresets(w io.Writer) {
	for _, s := range filmstock.Presets() {
		fmt.Fprintf(w, "%-16s %-12s %s\n", s.Manufacturer, s.Name, s.Type.String())
	}
}

func resolveStock() (filmstock.FilmStock, error) {
	return filmstock.ByName(*stock)
}

func runVerify(w io.Writer) {
	s, err := resolveStock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitConfiguration)
	}
	report := verify.Run(s)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "encoding verify report: %v\n", err)
		os.Exit(exitIO)
	}
	if report.Score < 1.0 {
		os.Exit(exitProcessing)
	}
}

func runProcess(w io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "process requires an input image path")
		os.Exit(exitUsage)
	}

	s, err := resolveStock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitConfiguration)
	}

	outputMode := output.Negative
	switch strings.ToLower(*mode) {
	case "negative":
		outputMode = output.Negative
	case "positive":
		outputMode = output.Positive
	default:
		fmt.Fprintf(os.Stderr, "%v\n", ferrors.NewConfigurationError("unknown output mode %q", *mode))
		os.Exit(exitConfiguration)
	}

	var leaks []lightleak.Leak
	if *leakShape != "" {
		shape, err := parseLeakShape(*leakShape)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(exitConfiguration)
		}
		leaks = append(leaks, lightleak.Leak{
			X: float32(*leakX), Y: float32(*leakY), Radius: float32(*leakRadius),
			Intensity: float32(*leakIntensity),
			ColorRGB:  [3]float32{float32(*leakR), float32(*leakG), float32(*leakB)},
			Shape:     shape,
		})
	}

	pixels, width, height, err := readImage(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", args[0], err)
		os.Exit(exitIO)
	}
	corelog.Printf("loaded %s: %dx%d\n", args[0], width, height)

	opts := pipeline.Options{
		Stock:               s,
		Illuminant:           spectrum.NewBlackbodyIlluminant(float32(*kelvin)),
		ExposureTimeSeconds:  float32(*exposure),
		Warmth:               float32(*warmth),
		GrainActive:          *grain,
		GrainSeed:            uint64(*grainSeed),
		HalationActive:       *halation,
		LightLeaks:           leaks,
		OutputMode:           outputMode,
		OutputSaturation:     float32(*saturation),
		OutputPaperGamma:     float32(*paperGamma),
		MaxThreads:           *threads,
	}

	result, err := pipeline.Process(pixels, width, height, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "processing: %v\n", err)
		os.Exit(exitProcessing)
	}

	if err := writeImage(*out, result, width, height); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", *out, err)
		os.Exit(exitIO)
	}
	corelog.Printf("wrote %s\n", *out)
}

func parseLeakShape(s string) (lightleak.Shape, error) {
	switch strings.ToLower(s) {
	case "circle":
		return lightleak.Circle, nil
	case "linear":
		return lightleak.Linear, nil
	case "organic":
		return lightleak.Organic, nil
	case "plasma":
		return lightleak.Plasma, nil
	default:
		return 0, ferrors.NewConfigurationError("unknown light-leak shape %q", s)
	}
}

// readImage decodes a PNG or JPEG file into an 8-bit interleaved RGB byte
// slice, the wire format pipeline.Process expects. Standard library codecs
// are used here because no example repo in the retrieved corpus wires a
// third-party still-image codec — the teacher reads FITS frames via its own
// internal/fits package, which has no bearing on consumer photo formats.
func readImage(path string) (pixels []byte, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, 0, err
	}
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels = make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := (y*width + x) * 3
			pixels[idx] = byte(r >> 8)
			pixels[idx+1] = byte(g >> 8)
			pixels[idx+2] = byte(b >> 8)
		}
	}
	return pixels, width, height, nil
}

func writeImage(path string, pixels []byte, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := (y*width + x) * 3
			o := img.PixOffset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = pixels[idx], pixels[idx+1], pixels[idx+2], 255
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 95})
	default:
		return png.Encode(f, img)
	}
}
