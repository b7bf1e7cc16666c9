package ycbcr

import (
	"fmt"
	"image"
	"image/color"
)

// Plane is a 16-bit interleaved sample buffer with 3 samples per pixel.
// Row is only valid for y in [0, height).
type Plane interface {
	Bounds() (width, height int)
	Row(y int) []uint16
}

// Image is the default Plane: packed rows of Width*3 uint16 samples.
type Image struct {
	Width  int
	Height int
	Stride int // samples per row, >= Width*3
	Pix    []uint16
}

// NewImage allocates a zeroed image at final resolution.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Stride: width * 3,
		Pix:    make([]uint16, width*height*3),
	}
}

// validate checks that every row lies inside Pix without overlapping the
// next one.
func (m *Image) validate() error {
	rowLen := m.Width * 3
	if m.Stride < rowLen {
		return fmt.Errorf("ycbcr: stride %d is shorter than a row of %d samples", m.Stride, rowLen)
	}
	if need := m.Stride*(m.Height-1) + rowLen; len(m.Pix) < need {
		return fmt.Errorf("ycbcr: %dx%d image with stride %d needs %d samples, have %d",
			m.Width, m.Height, m.Stride, need, len(m.Pix))
	}
	return nil
}

// Bounds returns the image size in pixels.
func (m *Image) Bounds() (int, int) { return m.Width, m.Height }

// Row returns the samples of row y. It panics if y is out of range.
func (m *Image) Row(y int) []uint16 {
	if y < 0 || y >= m.Height {
		panic(fmt.Sprintf("ycbcr: row %d out of range [0, %d)", y, m.Height))
	}
	start := y * m.Stride
	return m.Pix[start : start+m.Width*3 : start+m.Width*3]
}

// RGBA64 exposes the reconstructed samples as an image.Image.
func (m *Image) RGBA64() *image.RGBA64 {
	img := image.NewRGBA64(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		row := m.Row(y)
		for x := 0; x < m.Width; x++ {
			img.SetRGBA64(x, y, color.RGBA64{
				R: row[x*3],
				G: row[x*3+1],
				B: row[x*3+2],
				A: 0xffff,
			})
		}
	}
	return img
}
