package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/weaming/x3fraw/ycbcr"
)

// ReadSamples 读取 little-endian uint16 采样（每像素 3 个）
func ReadSamples(r io.Reader, width, height int) (*ycbcr.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	img := ycbcr.NewImage(width, height)
	if err := binary.Read(bufio.NewReader(r), binary.LittleEndian, img.Pix); err != nil {
		return nil, fmt.Errorf("failed to read %dx%d samples: %w", width, height, err)
	}
	return img, nil
}

// WriteSamples 写出 little-endian uint16 采样
func WriteSamples(w io.Writer, img *ycbcr.Image) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < img.Height; y++ {
		if err := binary.Write(bw, binary.LittleEndian, img.Row(y)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func isZstd(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// LoadSamples reads a sample dump from path. Files ending in .zst are
// zstd-compressed.
func LoadSamples(path string, width, height int) (*ycbcr.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if isZstd(path) {
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}
	return ReadSamples(r, width, height)
}

// SaveSamples writes img as a sample dump, compressed when path ends in
// .zst.
func SaveSamples(path string, img *ycbcr.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if !isZstd(path) {
		if err := WriteSamples(f, img); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderConcurrency(1))
	if err != nil {
		f.Close()
		return err
	}
	if err := WriteSamples(enc, img); err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
