package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/weaming/x3fraw/ycbcr"
)

// Format 输出格式
type Format string

const (
	FormatTIFF    Format = "tiff"
	FormatPNG     Format = "png"
	FormatPPM     Format = "ppm"
	FormatJPEG    Format = "jpeg"
	FormatSamples Format = "samples"
)

// FormatFromPath 根据扩展名确定输出格式
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".png":
		return FormatPNG, nil
	case ".ppm":
		return FormatPPM, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".raw", ".bin", ".zst":
		return FormatSamples, nil
	}
	return "", fmt.Errorf("unsupported output extension %q", filepath.Ext(path))
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img *ycbcr.Image, f Format) error {
	switch f {
	case FormatTIFF:
		return WriteTIFF(w, img)
	case FormatPNG:
		return WritePNG(w, img)
	case FormatPPM:
		return WritePPM(w, img)
	case FormatJPEG:
		return WriteJPEG(w, img.RGBA64(), JPEGOptions{})
	case FormatSamples:
		return WriteSamples(w, img)
	}
	return fmt.Errorf("unknown output format %q", f)
}

// Export 按扩展名导出图像
func Export(path string, img *ycbcr.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatSamples {
		return SaveSamples(path, img)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return f.Close()
}
