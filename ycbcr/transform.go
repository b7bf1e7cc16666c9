package ycbcr

import (
	"github.com/weaming/x3fraw/x3f"
)

// Version selects the firmware-specific YCbCr→RGB transform.
type Version int

const (
	// V0 is the transform found in early sRaw firmware (EOS 40D).
	V0 Version = iota
	// V1 uses the full fixed-point matrix.
	V1
	// V2 is V0 without the -512 pre-bias (EOS 5D Mk III).
	V2
)

// Coefficients are the per-channel scale factors {k_r, k_g, k_b}.
type Coefficients struct {
	R, G, B int32
}

// kernelFunc converts one hue-adjusted (Y, Cb, Cr) triple and stores the
// result into dst[0:3].
type kernelFunc func(y, cb, cr int, dst []uint16)

// kernel returns the transform for v, chosen once per reconstruction.
func (v Version) kernel(k Coefficients) (kernelFunc, error) {
	kr, kg, kb := int(k.R), int(k.G), int(k.B)

	switch v {
	case V0:
		return func(y, cb, cr int, dst []uint16) {
			store(dst,
				kr*(y+cr-512),
				kg*(y+((-778*cb-2048*cr)>>12)-512),
				kb*(y+cb-512))
		}, nil
	case V1:
		return func(y, cb, cr int, dst []uint16) {
			store(dst,
				kr*(y+((50*cb+22929*cr)>>12)),
				kg*(y+((-5640*cb-11751*cr)>>12)),
				kb*(y+((29040*cb-101*cr)>>12)))
		}, nil
	case V2:
		return func(y, cb, cr int, dst []uint16) {
			store(dst,
				kr*(y+cr),
				kg*(y+((-778*cb-2048*cr)>>12)),
				kb*(y+cb))
		}, nil
	}
	return nil, x3f.Unsupportedf("transform version %d", int(v))
}

// store drops the 8 fraction bits and clamps to 16 bits.
func store(dst []uint16, r, g, b int) {
	dst[0] = clamp16(r >> 8)
	dst[1] = clamp16(g >> 8)
	dst[2] = clamp16(b >> 8)
}

func clamp16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}

// Convert applies transform v to a single hue-adjusted sample triple.
func Convert(v Version, k Coefficients, y, cb, cr int) ([3]uint16, error) {
	t, err := v.kernel(k)
	if err != nil {
		return [3]uint16{}, err
	}
	var out [3]uint16
	t(y, cb, cr, out[:])
	return out, nil
}
