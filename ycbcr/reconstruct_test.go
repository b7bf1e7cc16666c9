package ycbcr

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/weaming/x3fraw/x3f"
)

// fill422 returns a random 4:2:2 plane with chroma near neutral.
func fill422(w, h int, seed uint64) *Image {
	r := rand.New(rand.NewPCG(seed, 1))
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		row := img.Row(y)
		for x := 0; x < w; x++ {
			row[x*3] = uint16(r.IntN(4096))
			if x%2 == 0 {
				row[x*3+1] = uint16(neutralChroma - 2000 + r.IntN(4000))
				row[x*3+2] = uint16(neutralChroma - 2000 + r.IntN(4000))
			}
		}
	}
	return img
}

// reference422 computes the expected output pixel by pixel from a copy of
// the input.
func reference422(t *testing.T, in *Image, p Params) *Image {
	t.Helper()
	out := NewImage(in.Width, in.Height)
	hue, hueLast := p.Hue(), p.LastHue()
	macros := in.Width / 2
	for y := 0; y < in.Height; y++ {
		src, dst := in.Row(y), out.Row(y)
		set := func(px, cb, cr int) {
			rgb, err := Convert(p.Version, p.Coeffs, int(src[px*3]), cb, cr)
			if err != nil {
				t.Fatal(err)
			}
			copy(dst[px*3:], rgb[:])
		}
		for m := 0; m < macros; m++ {
			h := hue
			if m == macros-1 {
				h = hueLast
			}
			cb := int(src[m*6+1]) - h
			cr := int(src[m*6+2]) - h
			set(2*m, cb, cr)
			if m == macros-1 {
				set(2*m+1, cb, cr)
				continue
			}
			set(2*m+1, (cb+int(src[m*6+7])-hue)>>1, (cr+int(src[m*6+8])-hue)>>1)
		}
	}
	return out
}

func clone(m *Image) *Image {
	c := *m
	c.Pix = append([]uint16(nil), m.Pix...)
	return &c
}

func TestReconstruct422MatchesReference(t *testing.T) {
	for _, v := range []Version{V0, V1, V2} {
		params := Params{Version: v, Subsampling: Sub422, RawHue: 3, Coeffs: unity}
		in := fill422(16, 9, uint64(v))
		want := reference422(t, in, params)

		for _, workers := range []int{1, 2, 4, 9, 32} {
			got := clone(in)
			params.Workers = workers
			if err := Reconstruct(got, params); err != nil {
				t.Fatalf("v%d workers=%d: %v", v, workers, err)
			}
			for i := range want.Pix {
				if got.Pix[i] != want.Pix[i] {
					t.Fatalf("v%d workers=%d: sample %d = %d, want %d", v, workers, i, got.Pix[i], want.Pix[i])
				}
			}
		}
	}
}

func TestReconstruct422SingleMacropixel(t *testing.T) {
	img := NewImage(2, 1)
	row := img.Row(0)
	row[0], row[1], row[2] = 1000, neutralChroma, neutralChroma
	row[3] = 2000

	if err := Reconstruct(img, Params{Version: V0, Subsampling: Sub422, RawHue: 1, Coeffs: unity}); err != nil {
		t.Fatal(err)
	}
	// version 0 leaves the last pair unbiased, so the chroma is exactly 0
	a, _ := Convert(V0, unity, 1000, 0, 0)
	b, _ := Convert(V0, unity, 2000, 0, 0)
	if [3]uint16(row[0:3]) != a || [3]uint16(row[3:6]) != b {
		t.Errorf("got %v, want %v %v", row, a, b)
	}
}

func TestParamsHue(t *testing.T) {
	p := Params{Version: V1, RawHue: 1}
	if p.Hue() != 16383 || p.LastHue() != 16383 {
		t.Errorf("v1: hue %d last %d", p.Hue(), p.LastHue())
	}
	p.Version = V0
	if p.Hue() != 16383 || p.LastHue() != 16384 {
		t.Errorf("v0: hue %d last %d", p.Hue(), p.LastHue())
	}
}

// fill420 builds a 4:2:0 plane where every Y is 1000 and the chroma of
// macropixel row n is cb = 400*n, cr = 0 after the hue bias.
func fill420(w, h int) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		row := img.Row(y)
		for x := 0; x < w; x++ {
			row[x*3] = 1000
			if x%2 == 0 && y%2 == 0 {
				row[x*3+1] = uint16(neutralChroma + 400*(y/2))
				row[x*3+2] = neutralChroma
			}
		}
	}
	return img
}

func pixel(m *Image, x, y int) [3]uint16 {
	return [3]uint16(m.Row(y)[x*3 : x*3+3])
}

func TestReconstruct420(t *testing.T) {
	img := fill420(6, 6)
	params := Params{Version: V1, Subsampling: Sub420, RawHue: 0, Coeffs: unity}
	if err := Reconstruct(img, params); err != nil {
		t.Fatal(err)
	}

	expect := func(cb int) [3]uint16 {
		rgb, err := Convert(V1, unity, 1000, cb, 0)
		if err != nil {
			t.Fatal(err)
		}
		return rgb
	}

	tests := []struct {
		x, y int
		cb   int
	}{
		{0, 0, 0},
		{0, 1, 200}, // averaged with the pair below
		{0, 3, 600}, // (400 + 800) / 2
		{1, 3, 550}, // (400 + 400 + 600 + 800) / 4
		{5, 3, 600}, // last column reuses the vertical average
		{0, 4, 800}, // last pair: unaveraged
		{0, 5, 800},
		{5, 5, 800},
	}
	for _, tt := range tests {
		if got, want := pixel(img, tt.x, tt.y), expect(tt.cb); got != want {
			t.Errorf("pixel (%d,%d) = %v, want %v (cb %d)", tt.x, tt.y, got, want, tt.cb)
		}
	}

	if pixel(img, 0, 3) == pixel(img, 0, 5) {
		t.Error("last row pair should not be averaged like the interior")
	}
}

func TestReconstruct420SingleRowPair(t *testing.T) {
	img := fill420(2, 2)
	if err := Reconstruct(img, Params{Version: V2, Subsampling: Sub420, Coeffs: unity}); err != nil {
		t.Fatal(err)
	}
	want := pixel(img, 0, 0)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := pixel(img, x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

type shortPlane struct{ *Image }

func (p shortPlane) Row(y int) []uint16 { return p.Image.Row(y)[:3] }

func TestReconstructRejects(t *testing.T) {
	tests := []struct {
		name        string
		plane       Plane
		params      Params
		unsupported bool
	}{
		{"v0 4:2:0", NewImage(4, 4), Params{Version: V0, Subsampling: Sub420}, true},
		{"unknown version", NewImage(4, 4), Params{Version: 9, Subsampling: Sub422}, true},
		{"4:4:4", NewImage(4, 4), Params{Version: V1, Subsampling: Subsampling{1, 1}}, true},
		{"odd width", NewImage(5, 2), Params{Version: V1, Subsampling: Sub422}, false},
		{"odd height 4:2:0", NewImage(4, 3), Params{Version: V1, Subsampling: Sub420}, false},
		{"empty", NewImage(0, 0), Params{Version: V1, Subsampling: Sub422}, false},
		{"short rows", shortPlane{NewImage(4, 2)}, Params{Version: V1, Subsampling: Sub422}, false},
		{"zero stride", &Image{Width: 4, Height: 2, Stride: 0, Pix: make([]uint16, 24)}, Params{Version: V1, Subsampling: Sub422}, false},
		{"overlapping rows", &Image{Width: 4, Height: 2, Stride: 6, Pix: make([]uint16, 24)}, Params{Version: V1, Subsampling: Sub422}, false},
		{"short pix", &Image{Width: 4, Height: 2, Stride: 12, Pix: make([]uint16, 20)}, Params{Version: V1, Subsampling: Sub422}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reconstruct(tt.plane, tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, x3f.ErrUnsupported); got != tt.unsupported {
				t.Errorf("errors.Is(ErrUnsupported) = %v, want %v (%v)", got, tt.unsupported, err)
			}
		})
	}
}

func TestRowOutOfRangePanics(t *testing.T) {
	img := NewImage(2, 2)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	img.Row(2)
}

func TestRGBA64(t *testing.T) {
	img := NewImage(2, 1)
	copy(img.Pix, []uint16{1, 2, 3, 4, 5, 6})
	rgba := img.RGBA64()
	c := rgba.RGBA64At(1, 0)
	if c.R != 4 || c.G != 5 || c.B != 6 || c.A != 0xffff {
		t.Errorf("got %+v", c)
	}
}
