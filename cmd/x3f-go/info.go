package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/weaming/x3fraw/x3f"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print the file header, directory and image sections",
		ArgsUsage: "<input.x3f>",
		Action: func(ctx context.Context, c *cli.Command) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			printInfo(os.Stdout, f.Container)
			return nil
		},
	}
}

func sectionName(id uint32) string {
	switch id {
	case x3f.SECp, x3f.PROP:
		return "PROP"
	case x3f.SECi, x3f.IMAG, x3f.IMAF, x3f.IMA2:
		return "IMAGE"
	case x3f.SECc, x3f.CAMF:
		return "CAMF"
	}
	return "?"
}

func printInfo(w io.Writer, c *x3f.Container) {
	h := c.Header
	fmt.Fprintf(w, "header:    %s\n", h)
	fmt.Fprintf(w, "model:     %s\n", c.Model())
	fmt.Fprintf(w, "unique id: %s\n", c.UniqueID())
	fmt.Fprintf(w, "size:      %dx%d\n", c.Columns(), c.Rows())
	if wb := c.WhiteBalance(); wb != "" {
		fmt.Fprintf(w, "wb:        %s\n", wb)
	}
	if cm := h.ColorModeLabel(); cm != "" {
		fmt.Fprintf(w, "color:     %s\n", cm)
	}

	fmt.Fprintf(w, "\ndirectory (%d entries):\n", len(c.Directory))
	for i, e := range c.Directory {
		fmt.Fprintf(w, "  [%2d] %s %-5s offset=%-10d length=%d\n",
			i, x3f.FourCC(e.Type), sectionName(e.Type), e.Offset, e.Length)
	}

	fmt.Fprintf(w, "\nimages (%d):\n", len(c.Images))
	for i, img := range c.Images {
		kind := "raw"
		if img.IsPreview() {
			kind = "preview"
		}
		fmt.Fprintf(w, "  [%d] %-7s type/format=%08x %dx%d stride=%d data=%d bytes\n",
			i, kind, img.TypeFormat(), img.Width, img.Height, img.RowStride, img.DataLength)
	}

	fmt.Fprintf(w, "\nproperties: %d\n", c.Properties.Len())
	if c.CAMF != nil {
		state := "decoded"
		if !c.CAMF.Decoded {
			state = "encoded"
		}
		fmt.Fprintf(w, "camf:       type %d, %s, %d entries\n", c.CAMF.Header.Type, state, len(c.CAMF.Entries))
	}
}
