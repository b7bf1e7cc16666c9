package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/weaming/x3fraw/x3f"
)

func metaCmd() *cli.Command {
	var (
		asJSON  bool
		outPath string
	)

	return &cli.Command{
		Name:      "meta",
		Usage:     "Dump header, CAMF and property metadata",
		ArgsUsage: "<input.x3f>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "write JSON instead of the text dump", Destination: &asJSON},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file (default stdout)",
				Destination: &outPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			f, err := openInput(c)
			if err != nil {
				return err
			}
			defer f.Close()

			var w io.Writer = os.Stdout
			if outPath != "" {
				out, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("无法创建元数据文件: %w", err)
				}
				defer out.Close()
				w = out
			}

			if asJSON {
				return writeMetaJSON(w, f.Container)
			}
			dumpMetadata(w, f.Container)
			return nil
		},
	}
}

type metaHeader struct {
	Version      string `json:"version"`
	UniqueID     string `json:"unique_id"`
	MarkBits     uint32 `json:"mark_bits"`
	Columns      uint32 `json:"columns"`
	Rows         uint32 `json:"rows"`
	Rotation     uint32 `json:"rotation"`
	WhiteBalance string `json:"white_balance,omitempty"`
	ColorMode    string `json:"color_mode,omitempty"`
}

type metaCAMF struct {
	Type    uint32                       `json:"type"`
	Decoded bool                         `json:"decoded"`
	Text    map[string]string            `json:"text,omitempty"`
	Props   map[string]map[string]string `json:"properties,omitempty"`
	Matrix  map[string]metaMatrix        `json:"matrices,omitempty"`
}

type metaMatrix struct {
	Dims []uint32  `json:"dims"`
	Data []float64 `json:"data"`
}

type metaDoc struct {
	Header     metaHeader        `json:"header"`
	Exif       x3f.ExifInfo      `json:"exif"`
	Properties map[string]string `json:"properties"`
	CAMF       *metaCAMF         `json:"camf,omitempty"`
}

func buildMeta(c *x3f.Container) metaDoc {
	h := c.Header
	doc := metaDoc{
		Header: metaHeader{
			Version:      x3f.VersionString(h.Version),
			UniqueID:     c.UniqueID(),
			MarkBits:     h.MarkBits,
			Columns:      c.Columns(),
			Rows:         c.Rows(),
			Rotation:     h.Rotation,
			WhiteBalance: h.WhiteBalanceLabel(),
			ColorMode:    h.ColorModeLabel(),
		},
		Exif:       c.ExtractExifInfo(),
		Properties: c.Properties.Map(),
	}

	if c.CAMF == nil {
		return doc
	}
	mc := &metaCAMF{
		Type:    c.CAMF.Header.Type,
		Decoded: c.CAMF.Decoded,
		Text:    map[string]string{},
		Props:   map[string]map[string]string{},
		Matrix:  map[string]metaMatrix{},
	}
	for _, e := range c.CAMF.Entries {
		switch e.ID {
		case x3f.CMbT:
			mc.Text[e.Name] = e.Text
		case x3f.CMbP:
			props := make(map[string]string, len(e.PropertyNames))
			for i, name := range e.PropertyNames {
				props[name] = e.PropertyValues[i]
			}
			mc.Props[e.Name] = props
		case x3f.CMbM:
			dims := make([]uint32, len(e.MatrixDims))
			for i, d := range e.MatrixDims {
				dims[i] = d.Size
			}
			mc.Matrix[e.Name] = metaMatrix{Dims: dims, Data: e.Matrix}
		}
	}
	doc.CAMF = mc
	return doc
}

func writeMetaJSON(w io.Writer, c *x3f.Container) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildMeta(c))
}

func dumpMetadata(w io.Writer, c *x3f.Container) {
	fmt.Fprintf(w, "BEGIN: file header meta data\n\n")
	dumpFileHeader(w, c.Header)
	fmt.Fprintf(w, "END: file header meta data\n\n")

	if c.CAMF != nil {
		fmt.Fprintf(w, "BEGIN: CAMF meta data\n\n")
		dumpCAMFMetadata(w, c.CAMF)
		fmt.Fprintf(w, "END: CAMF meta data\n\n")
	}

	if c.Properties.Len() > 0 {
		fmt.Fprintf(w, "BEGIN: PROP meta data\n\n")
		dumpProperties(w, c.Properties)
		fmt.Fprintf(w, "END: PROP meta data\n\n")
	} else {
		fmt.Fprintf(w, "INFO: No PROP meta data found\n\n")
	}
}

func dumpFileHeader(w io.Writer, h *x3f.FileHeader) {
	fmt.Fprintf(w, "header.\n")
	fmt.Fprintf(w, "  identifier        = %08x (FOVb)\n", h.ID)
	fmt.Fprintf(w, "  version           = %08x\n", h.Version)

	// version < 4.0 才输出其他字段（Quattro 不输出）
	if !h.HasDimensions() {
		return
	}
	fmt.Fprintf(w, "  unique_identifier = %x\n", h.UniqueIdentifier)
	fmt.Fprintf(w, "  mark_bits         = %08x\n", h.MarkBits)
	fmt.Fprintf(w, "  columns           = %08x (%d)\n", h.Columns, h.Columns)
	fmt.Fprintf(w, "  rows              = %08x (%d)\n", h.Rows, h.Rows)
	fmt.Fprintf(w, "  rotation          = %08x (%d)\n", h.Rotation, h.Rotation)
	fmt.Fprintf(w, "  white_balance     = %s\n", h.WhiteBalanceLabel())
	fmt.Fprintf(w, "  color_mode        = %s\n", h.ColorModeLabel())

	fmt.Fprintf(w, "  extended_types\n")
	for i := 0; i < h.NumExtData; i++ {
		fmt.Fprintf(w, "    %2d: %3d = %9f\n", i, h.ExtendedDataTypes[i], h.ExtendedData[i])
	}
}

func dumpCAMFMetadata(w io.Writer, camf *x3f.CAMFData) {
	if !camf.Decoded {
		fmt.Fprintf(w, "INFO: CAMF type %d is entropy coded (%d bytes), entries not decoded\n\n",
			camf.Header.Type, len(camf.Encoded))
		return
	}

	for _, entry := range camf.Entries {
		switch entry.ID {
		case x3f.CMbM: // Matrix
			dumpCAMFMatrix(w, entry)
		case x3f.CMbT: // Text
			dumpCAMFText(w, entry)
		case x3f.CMbP: // Property list
			dumpCAMFPropertyList(w, entry)
		}
	}
}

func matrixTypeName(t uint32) string {
	switch t {
	case x3f.MatrixInt16:
		return "integer"
	case x3f.MatrixFloat32:
		return "float"
	case x3f.MatrixUint32, x3f.MatrixUint32b, x3f.MatrixUint8, x3f.MatrixUint16:
		return "unsigned integer"
	}
	return "unknown"
}

func dumpCAMFMatrix(w io.Writer, entry *x3f.CAMFEntry) {
	fmt.Fprintf(w, "BEGIN: CAMF matrix meta data (%s)\n", entry.Name)

	fmt.Fprintf(w, "%s ", matrixTypeName(entry.MatrixType))
	for _, d := range entry.MatrixDims {
		fmt.Fprintf(w, "[%d]", d.Size)
	}
	fmt.Fprintf(w, "\n")

	// x 对应最后一个维度
	dims := entry.MatrixDims
	switch n := len(dims); {
	case n == 1:
		fmt.Fprintf(w, "x: %s\n", dims[0].Name)
	case n == 2:
		fmt.Fprintf(w, "x: %s\n", dims[1].Name)
		fmt.Fprintf(w, "y: %s\n", dims[0].Name)
	case n >= 3:
		fmt.Fprintf(w, "x: %s\n", dims[n-1].Name)
		fmt.Fprintf(w, "y: %s\n", dims[n-2].Name)
		fmt.Fprintf(w, "z: %s (i.e. group)\n", dims[0].Name)
	}

	if len(entry.Matrix) > 0 && len(dims) > 0 {
		printMatrix(w, entry.Matrix, dims, entry.MatrixType == x3f.MatrixFloat32)
	}

	fmt.Fprintf(w, "END: CAMF matrix meta data\n\n")
}

func printMatrix(w io.Writer, data []float64, dims []x3f.CAMFDim, float bool) {
	const maxPrintedElements = 100

	// 3D 矩阵每个 block 之后额外换行
	linesize := max(int(dims[len(dims)-1].Size), 1)
	blocksize := -1
	if len(dims) >= 3 {
		blocksize = linesize * int(dims[len(dims)-2].Size)
	}

	for i, val := range data {
		if i >= maxPrintedElements {
			fmt.Fprintf(w, "\n... (%d skipped) ...\n", len(data)-i)
			break
		}
		if float {
			fmt.Fprintf(w, "%12.6g ", val)
		} else {
			fmt.Fprintf(w, "%12d ", int64(val))
		}
		if (i+1)%linesize == 0 {
			fmt.Fprintf(w, "\n")
		}
		if blocksize > 0 && (i+1)%blocksize == 0 {
			fmt.Fprintf(w, "\n")
		}
	}
}

func dumpCAMFText(w io.Writer, entry *x3f.CAMFEntry) {
	fmt.Fprintf(w, "BEGIN: CAMF text meta data (%s)\n", entry.Name)
	fmt.Fprintf(w, "\"%s\"\n", entry.Text)
	fmt.Fprintf(w, "END: CAMF text meta data\n\n")
}

func dumpCAMFPropertyList(w io.Writer, entry *x3f.CAMFEntry) {
	fmt.Fprintf(w, "BEGIN: CAMF property meta data (%s)\n", entry.Name)
	for i, name := range entry.PropertyNames {
		fmt.Fprintf(w, "              \"%s\" = \"%s\"\n", name, entry.PropertyValues[i])
	}
	fmt.Fprintf(w, "END: CAMF property meta data\n\n")
}

func dumpProperties(w io.Writer, props *x3f.PropertyCollection) {
	for i, name := range props.Keys() {
		value, _ := props.Get(name)
		fmt.Fprintf(w, "          [%d] \"%s\" = \"%s\"\n", i, name, value)
	}
}
