package output

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/weaming/x3fraw/x3f"
	"github.com/weaming/x3fraw/ycbcr"
)

// Thumbnail 嵌入的预览图
type Thumbnail struct {
	x3f.ImageDescriptor
	// JPEG 为原始 JPEG 数据（仅 ImageThumbJPEG）
	JPEG  []byte
	Image image.Image
}

// FindThumbnail returns the largest preview image stored in the file.
// JPEG previews are returned undecoded in JPEG as well as decoded.
func FindThumbnail(f *x3f.File) (*Thumbnail, error) {
	var best *x3f.ImageDescriptor
	for i := range f.Images {
		img := &f.Images[i]
		if !img.IsPreview() {
			continue
		}
		switch img.TypeFormat() {
		case x3f.ImageThumbJPEG, x3f.ImageThumbPlain:
		default:
			continue
		}
		if best == nil || uint64(img.Width)*uint64(img.Height) > uint64(best.Width)*uint64(best.Height) {
			best = img
		}
	}
	if best == nil {
		return nil, x3f.Unsupportedf("no JPEG or RGB24 preview in file")
	}

	data, err := f.ImageData(*best)
	if err != nil {
		return nil, err
	}

	t := &Thumbnail{ImageDescriptor: *best}
	if best.TypeFormat() == x3f.ImageThumbJPEG {
		t.JPEG = data
		if t.Image, err = jpeg.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to decode preview: %w", err)
		}
		return t, nil
	}

	t.Image, err = decodeRGB24(data, *best)
	return t, err
}

// decodeRGB24 解码未压缩的 RGB24 预览图
func decodeRGB24(data []byte, d x3f.ImageDescriptor) (image.Image, error) {
	if d.Height == 0 {
		return nil, fmt.Errorf("empty preview %dx%d", d.Width, d.Height)
	}
	// 尺寸来自文件，用 uint64 计算避免溢出
	rowBytes := uint64(d.Width) * 3
	stride := uint64(d.RowStride)
	if stride == 0 {
		stride = rowBytes
	}
	need := stride*uint64(d.Height-1) + rowBytes
	if stride < rowBytes || need > uint64(len(data)) {
		return nil, &x3f.BoundsError{Offset: uint64(d.DataOffset), Length: need, Size: uint64(len(data))}
	}
	if d.Width == 0 {
		return nil, fmt.Errorf("empty preview %dx%d", d.Width, d.Height)
	}

	width, height := int(d.Width), int(d.Height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := data[uint64(y)*stride:]
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: row[x*3], G: row[x*3+1], B: row[x*3+2], A: 255})
		}
	}
	return img, nil
}

// Downsample 平均下采样到不超过 maxWidth 的宽度
func Downsample(img *ycbcr.Image, maxWidth int) *ycbcr.Image {
	reduction := calculateReduction(img.Width, maxWidth)
	if reduction == 1 {
		return img
	}

	out := ycbcr.NewImage(img.Width/reduction, img.Height/reduction)
	for row := 0; row < out.Height; row++ {
		dst := out.Row(row)
		for col := 0; col < out.Width; col++ {
			px := downsamplePixelBlock(img, row, col, reduction)
			copy(dst[col*3:], px[:])
		}
	}
	return out
}

// calculateReduction 计算缩放因子
func calculateReduction(width, maxWidth int) int {
	if maxWidth <= 0 {
		return 1
	}
	reduction := (width + maxWidth - 1) / maxWidth
	if reduction < 1 {
		return 1
	}
	return reduction
}

// downsamplePixelBlock 平均下采样像素块
func downsamplePixelBlock(img *ycbcr.Image, row, col, reduction int) [3]uint16 {
	var acc [3]uint64
	for r := 0; r < reduction; r++ {
		src := img.Row(row*reduction + r)
		for c := 0; c < reduction; c++ {
			idx := (col*reduction + c) * 3
			for color := 0; color < 3; color++ {
				acc[color] += uint64(src[idx+color])
			}
		}
	}

	n := uint64(reduction * reduction)
	return [3]uint16{uint16(acc[0] / n), uint16(acc[1] / n), uint16(acc[2] / n)}
}
