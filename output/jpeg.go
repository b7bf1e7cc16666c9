package output

import (
	"image"
	"image/jpeg"
	"io"
)

// JPEGOptions JPEG 输出选项
type JPEGOptions struct {
	Quality int // 1-100, 默认 95
}

// WriteJPEG 写入 8-bit JPEG，16-bit 输入由 image/jpeg 截断到高 8 位
func WriteJPEG(w io.Writer, img image.Image, opts JPEGOptions) error {
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	return encodeBuffered(w, img, func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, &jpeg.Options{Quality: quality})
	})
}
