package output

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/weaming/x3fraw/x3f"
	"github.com/weaming/x3fraw/ycbcr"
)

func gradient(w, h int) *ycbcr.Image {
	img := ycbcr.NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = uint16(i * 257)
	}
	return img
}

func samePix(t *testing.T, got, want *ycbcr.Image) {
	t.Helper()
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("size mismatch: got %dx%d want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	for i := range want.Pix {
		if got.Pix[i] != want.Pix[i] {
			t.Fatalf("sample %d mismatch: got %d want %d", i, got.Pix[i], want.Pix[i])
		}
	}
}

func TestSamplesRoundTrip(t *testing.T) {
	t.Parallel()
	want := gradient(5, 3)

	for _, name := range []string{"dump.raw", "dump.raw.zst"} {
		path := filepath.Join(t.TempDir(), name)
		if err := SaveSamples(path, want); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := LoadSamples(path, 5, 3)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		samePix(t, got, want)
	}
}

func TestSamplesCompressed(t *testing.T) {
	t.Parallel()
	img := ycbcr.NewImage(64, 64)
	path := filepath.Join(t.TempDir(), "zero.zst")
	if err := SaveSamples(path, img); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() >= int64(len(img.Pix)*2) {
		t.Errorf("zstd output not smaller: %d bytes", st.Size())
	}
}

func TestReadSamplesTruncated(t *testing.T) {
	t.Parallel()
	_, err := ReadSamples(bytes.NewReader(make([]byte, 10)), 2, 2)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if _, err := ReadSamples(bytes.NewReader(nil), 0, 2); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestWritePPM(t *testing.T) {
	t.Parallel()
	img := ycbcr.NewImage(1, 1)
	copy(img.Pix, []uint16{0x0102, 0x0304, 0xfffe})

	var buf bytes.Buffer
	if err := WritePPM(&buf, img); err != nil {
		t.Fatal(err)
	}
	header := "P6\n1 1\n65535\n"
	want := append([]byte(header), 0x01, 0x02, 0x03, 0x04, 0xff, 0xfe)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %q want %q", buf.Bytes(), want)
	}
}

func checkDecoded(t *testing.T, m image.Image, want *ycbcr.Image) {
	t.Helper()
	if b := m.Bounds(); b.Dx() != want.Width || b.Dy() != want.Height {
		t.Fatalf("bounds mismatch: got %v", b)
	}
	for y := 0; y < want.Height; y++ {
		row := want.Row(y)
		for x := 0; x < want.Width; x++ {
			r, g, b, _ := m.At(x, y).RGBA()
			if uint16(r) != row[x*3] || uint16(g) != row[x*3+1] || uint16(b) != row[x*3+2] {
				t.Fatalf("pixel (%d,%d): got %d %d %d want %v", x, y, r, g, b, row[x*3:x*3+3])
			}
		}
	}
}

func TestWriteTIFF(t *testing.T) {
	t.Parallel()
	want := gradient(4, 3)
	var buf bytes.Buffer
	if err := WriteTIFF(&buf, want); err != nil {
		t.Fatal(err)
	}
	m, err := tiff.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	checkDecoded(t, m, want)
}

func TestWritePNG(t *testing.T) {
	t.Parallel()
	want := gradient(4, 3)
	var buf bytes.Buffer
	if err := WritePNG(&buf, want); err != nil {
		t.Fatal(err)
	}
	m, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	checkDecoded(t, m, want)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want Format
	}{
		{"a.tif", FormatTIFF},
		{"a.TIFF", FormatTIFF},
		{"a.png", FormatPNG},
		{"a.ppm", FormatPPM},
		{"a.jpg", FormatJPEG},
		{"a.raw.zst", FormatSamples},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q, %v want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatFromPath("a.gif"); err == nil {
		t.Error("expected error for .gif")
	}
}

func TestExport(t *testing.T) {
	t.Parallel()
	img := gradient(2, 2)
	dir := t.TempDir()
	for _, name := range []string{"out.tiff", "out.png", "out.ppm", "out.jpg", "out.zst"} {
		path := filepath.Join(dir, name)
		if err := Export(path, img); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Fatalf("%s: missing output (%v)", name, err)
		}
	}
}

func TestDownsample(t *testing.T) {
	t.Parallel()
	img := ycbcr.NewImage(4, 2)
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			v := uint16(100 * (x + 1) * (y + 1))
			copy(img.Row(y)[x*3:], []uint16{v, v, v})
		}
	}

	out := Downsample(img, 2)
	if out.Width != 2 || out.Height != 1 {
		t.Fatalf("size mismatch: got %dx%d want 2x1", out.Width, out.Height)
	}
	// (100 + 200 + 200 + 400) / 4, (300 + 400 + 600 + 800) / 4
	if got := out.Row(0); got[0] != 225 || got[3] != 525 {
		t.Errorf("got %v", got)
	}

	if Downsample(img, 0) != img || Downsample(img, 8) != img {
		t.Error("no reduction should return the input")
	}
}

func TestDecodeRGB24(t *testing.T) {
	t.Parallel()
	d := x3f.ImageDescriptor{Width: 2, Height: 2, RowStride: 8}
	data := []byte{
		1, 2, 3, 4, 5, 6, 0, 0,
		7, 8, 9, 10, 11, 12,
	}
	m, err := decodeRGB24(data, d)
	if err != nil {
		t.Fatal(err)
	}
	if c := m.(*image.RGBA).RGBAAt(0, 1); c != (color.RGBA{7, 8, 9, 255}) {
		t.Errorf("got %v", c)
	}

	if _, err := decodeRGB24(data[:10], d); !errors.Is(err, x3f.ErrBounds) {
		t.Errorf("expected ErrBounds, got %v", err)
	}
}

func TestDecodeRGB24HostileGeometry(t *testing.T) {
	t.Parallel()
	data := make([]byte, 64)
	tests := []struct {
		name string
		d    x3f.ImageDescriptor
	}{
		{"stride times height overflows", x3f.ImageDescriptor{Width: 0, Height: 0xffffffff, RowStride: 0xffffffff}},
		{"huge height", x3f.ImageDescriptor{Width: 1, Height: 0xffffffff}},
		{"huge width", x3f.ImageDescriptor{Width: 0xffffffff, Height: 1}},
		{"stride shorter than row", x3f.ImageDescriptor{Width: 4, Height: 2, RowStride: 6}},
		{"zero height", x3f.ImageDescriptor{Width: 4, Height: 0}},
		{"zero width", x3f.ImageDescriptor{Width: 0, Height: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeRGB24(data, tt.d); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	_, err := decodeRGB24(data, x3f.ImageDescriptor{Width: 0, Height: 0xffffffff, RowStride: 0xffffffff})
	var be *x3f.BoundsError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BoundsError, got %v", err)
	}
}

func TestFindThumbnail(t *testing.T) {
	t.Parallel()
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}

	f := &x3f.File{
		Container: &x3f.Container{Images: []x3f.ImageDescriptor{
			{Type: x3f.ImageTypeRAW, Format: 0x1e, Width: 100, Height: 100},
			{Type: x3f.ImageTypePreview, Format: 0x12, Width: 8, Height: 4, DataLength: uint32(buf.Len())},
		}},
		Data: buf.Bytes(),
	}
	th, err := FindThumbnail(f)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(th.JPEG, buf.Bytes()) {
		t.Error("JPEG payload not returned verbatim")
	}
	if b := th.Image.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("bounds %v", b)
	}

	f.Images = f.Images[:1]
	if _, err := FindThumbnail(f); !errors.Is(err, x3f.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
