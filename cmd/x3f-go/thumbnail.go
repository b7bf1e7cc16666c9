package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/weaming/x3fraw/output"
	"github.com/weaming/x3fraw/x3f"
)

func thumbnailCmd() *cli.Command {
	var (
		outPath string
		quality int
	)

	return &cli.Command{
		Name:      "thumbnail",
		Usage:     "Extract the embedded preview image as JPEG",
		ArgsUsage: "<input.x3f>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default <input>.jpg)", Destination: &outPath},
			&cli.IntFlag{Name: "quality", Usage: "JPEG quality for re-encoded RGB24 previews (1-100)", Value: 95, Destination: &quality},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := x3f.NewLogger(os.Stdout)

			logger.Step("打开文件", filepath.Base(c.Args().First()))
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()
			logger.Done(fmt.Sprintf("版本=%s", x3f.VersionString(f.Header.Version)))

			if outPath == "" {
				outPath = strings.TrimSuffix(c.Args().First(), filepath.Ext(c.Args().First())) + ".jpg"
			}

			th, err := output.FindThumbnail(f)
			if err != nil {
				return err
			}
			logger.Info("preview %dx%d (%08x)", th.Width, th.Height, th.TypeFormat())

			// JPEG 预览原样写出
			if th.JPEG != nil {
				return os.WriteFile(outPath, th.JPEG, 0o644)
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := output.WriteJPEG(out, th.Image, output.JPEGOptions{Quality: quality}); err != nil {
				out.Close()
				return err
			}
			return out.Close()
		},
	}
}
