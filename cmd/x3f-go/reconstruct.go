package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/weaming/x3fraw/camera"
	"github.com/weaming/x3fraw/colorspace"
	"github.com/weaming/x3fraw/output"
	"github.com/weaming/x3fraw/x3f"
	"github.com/weaming/x3fraw/ycbcr"
)

func reconstructCmd(cfg Config) *cli.Command {
	var (
		inPath       string
		outPath      string
		width        int
		height       int
		model        string
		modelFrom    string
		version      int
		sub          string
		rawHue       int
		coeffs       string
		cameraTable  string
		workers      int
		previewWidth int
		colorSpace   string
		ev           float64
	)

	return &cli.Command{
		Name:  "reconstruct",
		Usage: "Convert a subsampled YCbCr sample dump to RGB",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "sample dump (little-endian uint16, .zst allowed)", Destination: &inPath, Required: true},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file: .tiff, .png, .ppm, .jpg, .raw, .zst", Destination: &outPath, Required: true},
			&cli.IntFlag{Name: "width", Usage: "image width in pixels", Destination: &width, Required: true},
			&cli.IntFlag{Name: "height", Usage: "image height in pixels", Destination: &height, Required: true},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "camera model to look up in the camera table", Destination: &model},
			&cli.StringFlag{Name: "x3f", Usage: "take the camera model from this file's CAMMODEL property (the model must be in --camera-table)", Destination: &modelFrom},
			&cli.IntFlag{Name: "version", Usage: "transform version 0, 1 or 2", Destination: &version},
			&cli.StringFlag{Name: "sub", Usage: "chroma subsampling: 422 or 420", Value: "422", Destination: &sub},
			&cli.IntFlag{Name: "hue", Usage: "raw hue value (bias = 16384 - hue)", Destination: &rawHue},
			&cli.StringFlag{Name: "coeffs", Usage: "channel coefficients r,g,b", Value: "1024,1024,1024", Destination: &coeffs},
			&cli.StringFlag{Name: "camera-table", Usage: "extra camera table (YAML)", Destination: &cameraTable},
			&cli.IntFlag{Name: "workers", Usage: "4:2:2 worker count (0 = NumCPU)", Destination: &workers},
			&cli.StringFlag{Name: "cs", Usage: "output color space: linear, sRGB, AdobeRGB, ProPhotoRGB", Value: "linear", Destination: &colorSpace},
			&cli.Float64Flag{Name: "ev", Usage: "exposure compensation in EV", Destination: &ev},
			&cli.IntFlag{Name: "preview-width", Usage: "downsample the result to at most this width (0 = off)", Destination: &previewWidth},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			applyReconstructConfig(c, cfg, &cameraTable, &workers)
			logger := x3f.NewLogger(os.Stdout)

			params, err := resolveParams(c, cameraTable, model, modelFrom)
			if err != nil {
				return err
			}
			if err := overrideParams(c, &params, version, sub, rawHue, coeffs); err != nil {
				return err
			}
			params.Workers = workers
			cs, err := colorspace.Parse(colorSpace)
			if err != nil {
				return err
			}

			logger.Step("读取采样", filepath.Base(inPath))
			img, err := output.LoadSamples(inPath, width, height)
			if err != nil {
				return err
			}
			logger.Done(fmt.Sprintf("%dx%d", width, height))

			logger.Step("重建", params.Subsampling)
			if err := ycbcr.Reconstruct(img, params); err != nil {
				return err
			}
			logger.Done(fmt.Sprintf("v%d hue=%d", params.Version, params.Hue()))

			if cs != colorspace.Linear || ev != 0 {
				logger.Step("色彩转换", cs)
				colorspace.Apply(img, colorspace.Options{Space: cs, ExposureValue: ev})
				logger.Done(fmt.Sprintf("ev=%+.1f", ev))
			}

			if previewWidth > 0 {
				img = output.Downsample(img, previewWidth)
				logger.Info("downsampled to %dx%d", img.Width, img.Height)
			}

			logger.Step("写入", filepath.Base(outPath))
			if err := output.Export(outPath, img); err != nil {
				return err
			}
			logger.Done("完成")
			logger.Total()
			return nil
		},
	}
}

// resolveParams looks the camera up when --model or --x3f is given.
// Without either, the parameters come from flags alone.
func resolveParams(c *cli.Command, cameraTable, model, modelFrom string) (ycbcr.Params, error) {
	if model == "" && modelFrom == "" {
		if !c.IsSet("version") {
			return ycbcr.Params{}, fmt.Errorf("either --model, --x3f or --version is required")
		}
		return ycbcr.Params{}, nil
	}

	table, err := camera.Load(cameraTable)
	if err != nil {
		return ycbcr.Params{}, err
	}
	if model != "" {
		return table.Resolve(model)
	}

	f, err := x3f.Open(modelFrom)
	if err != nil {
		return ycbcr.Params{}, err
	}
	defer f.Close()
	return table.FromContainer(f.Container)
}

// overrideParams applies explicitly set flags on top of resolved params.
func overrideParams(c *cli.Command, p *ycbcr.Params, version int, sub string, rawHue int, coeffs string) error {
	explicit := !c.IsSet("model") && !c.IsSet("x3f")

	if explicit || c.IsSet("version") {
		p.Version = ycbcr.Version(version)
	}
	if explicit || c.IsSet("sub") {
		s, err := parseSubsampling(sub)
		if err != nil {
			return err
		}
		p.Subsampling = s
	}
	if explicit || c.IsSet("hue") {
		p.RawHue = rawHue
	}
	if explicit || c.IsSet("coeffs") {
		k, err := parseCoefficients(coeffs)
		if err != nil {
			return err
		}
		p.Coeffs = k
	}
	return nil
}

func parseSubsampling(s string) (ycbcr.Subsampling, error) {
	switch strings.ReplaceAll(s, ":", "") {
	case "422":
		return ycbcr.Sub422, nil
	case "420":
		return ycbcr.Sub420, nil
	}
	return ycbcr.Subsampling{}, fmt.Errorf("invalid subsampling %q (want 422 or 420)", s)
}

func parseCoefficients(s string) (ycbcr.Coefficients, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return ycbcr.Coefficients{}, fmt.Errorf("invalid coefficients %q (want r,g,b)", s)
	}
	var k [3]int32
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return ycbcr.Coefficients{}, fmt.Errorf("invalid coefficient %q: %w", p, err)
		}
		k[i] = int32(v)
	}
	return ycbcr.Coefficients{R: k[0], G: k[1], B: k[2]}, nil
}
