package output

import (
	"bufio"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/tiff"

	"github.com/weaming/x3fraw/ycbcr"
)

// WriteTIFF 写入 16-bit RGB TIFF（deflate 压缩）
func WriteTIFF(w io.Writer, img *ycbcr.Image) error {
	return encodeBuffered(w, img.RGBA64(), func(w io.Writer, m image.Image) error {
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	})
}

// WritePNG 写入 16-bit PNG
func WritePNG(w io.Writer, img *ycbcr.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return encodeBuffered(w, img.RGBA64(), enc.Encode)
}

func encodeBuffered(w io.Writer, m image.Image, encode func(io.Writer, image.Image) error) error {
	bw := bufio.NewWriter(w)
	if err := encode(bw, m); err != nil {
		return err
	}
	return bw.Flush()
}
