// Command rawconv decodes a raw sensor payload into a PPM or PSD file.
//
// Usage:
//
//	rawconv -profile <profile.json> [options] <input.raw>
//
// rawconv has no container parser of its own: it expects a sidecar JSON
// file describing the CameraProfile an external Identifier would have
// produced from the original file's header. This mirrors how this
// module's own root package takes a CameraProfile as an argument rather
// than sniffing the file itself.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kantuck/rawmosaic"
	"github.com/kantuck/rawmosaic/sinks"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "rawconv: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("rawconv", flag.ContinueOnError)
	profilePath := fs.String("profile", "", "path to a CameraProfile JSON sidecar (required)")
	output := fs.String("o", "", `output path (default: input's base name with the format's extension, in the current directory; "-" for stdout)`)
	outFmt := fs.String("fmt", "", "output format: ppm24, ppm48, psd48 (default: ppm24, or from -o extension)")
	gamma := fs.Float64("gamma", 0.8, "output gamma exponent")
	bright := fs.Float64("bright", 1, "brightness multiplier")
	redScale := fs.Float64("red", 1, "extra red-channel scale")
	blueScale := fs.Float64("blue", 1, "extra blue-channel scale")
	documentMode := fs.Bool("document", false, "document mode: auto white balance, skip demosaic")
	quick := fs.Bool("quick", false, "stop demosaic after the bilinear pass")
	fourColor := fs.Bool("four-color", false, "split green into two independent channels")
	cameraWB := fs.Bool("camera-wb", false, "prefer the camera's own recorded white balance")
	badpixelsDir := fs.String("badpixels", "", "directory to search upward for a .badpixels sidecar")
	identifyOnly := fs.Bool("identify", false, "report what the profile identifies the file as, without decoding")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("missing input file\nUsage: rawconv -profile <profile.json> [options] <input.raw>")
	}
	if *profilePath == "" {
		return fmt.Errorf("-profile is required")
	}
	inputPath := fs.Arg(0)

	profile, err := loadProfile(*profilePath)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	if *identifyOnly {
		fmt.Printf("%s: %s %s, %dx%d (%s)\n",
			inputPath, profile.Make, profile.Model, profile.Width, profile.Height, profile.Kind)
		return nil
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	opt := rawmosaic.DefaultOptions()
	opt.Gamma = *gamma
	opt.Bright = *bright
	opt.RedScale = *redScale
	opt.BlueScale = *blueScale
	opt.DocumentMode = *documentMode
	opt.QuickInterpolate = *quick
	opt.FourColorRGB = *fourColor
	opt.UseCameraWB = *cameraWB
	opt.BadPixelsDir = *badpixelsDir

	decoded, err := rawmosaic.Decode(data, profile, opt)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}
	for _, w := range decoded.Warnings {
		fmt.Fprintf(os.Stderr, "rawconv: warning: %s\n", w)
	}

	format := resolveFormat(*outFmt, *output)
	sink, ext := sinkFor(format)

	outputPath := *output
	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outputPath = base + ext
	}

	var w io.Writer
	if outputPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := sink.Write(w, decoded.Image, decoded.Style); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

func loadProfile(path string) (rawmosaic.CameraProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rawmosaic.CameraProfile{}, err
	}
	var profile rawmosaic.CameraProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return rawmosaic.CameraProfile{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return profile, nil
}

func resolveFormat(fmtFlag, outputPath string) string {
	if fmtFlag != "" {
		return strings.ToLower(fmtFlag)
	}
	if outputPath != "" && outputPath != "-" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".psd":
			return "psd48"
		case ".ppm":
			// ambiguous between ppm24/ppm48; fall through to default
		}
	}
	return "ppm24"
}

func sinkFor(format string) (sinks.ImageSink, string) {
	switch format {
	case "ppm48":
		return sinks.PPM48{}, ".ppm"
	case "psd48":
		return sinks.PSD48{}, ".psd"
	default:
		return sinks.PPM24{}, ".ppm"
	}
}
