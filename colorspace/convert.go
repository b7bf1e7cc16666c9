package colorspace

import (
	"math"

	"github.com/weaming/x3fraw/ycbcr"
)

// SRGBGamma sRGB gamma 曲线（精确版本）
func SRGBGamma(linear float64) float64 {
	if linear <= 0.0031308 {
		return 12.92 * linear
	}
	return 1.055*math.Pow(linear, 1.0/2.4) - 0.055
}

// ApplyGamma 应用 gamma 校正
func ApplyGamma(value, gamma float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Pow(value, 1.0/gamma)
}

// Encode 应用传递函数，输入输出都在 [0, 1]
func Encode(cs ColorSpace, linear float64) float64 {
	switch cs {
	case Linear:
		return linear
	case SRGB:
		return SRGBGamma(linear)
	}
	return ApplyGamma(linear, Gamma(cs))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Options 输出转换参数
type Options struct {
	Space ColorSpace
	// ExposureValue 曝光补偿（EV 值）
	ExposureValue float64
}

// Apply 将重建后的线性 sRGB 图像原地转换到目标色彩空间
//
// 传递函数通过 65536 项查找表计算。
func Apply(img *ycbcr.Image, opts Options) {
	if opts.Space == Linear && opts.ExposureValue == 0 {
		return
	}

	conv := FromSRGB(opts.Space)
	identity := conv == Identity3x3()
	exposure := math.Exp2(opts.ExposureValue)

	lut := make([]uint16, 65536)
	for i := range lut {
		lut[i] = uint16(math.Round(Encode(opts.Space, float64(i)/65535) * 65535))
	}

	for y := 0; y < img.Height; y++ {
		row := img.Row(y)
		for x := 0; x < len(row); x += 3 {
			rgb := Vector3{float64(row[x]), float64(row[x+1]), float64(row[x+2])}
			if !identity {
				rgb = conv.Apply(rgb)
			}
			for c := 0; c < 3; c++ {
				v := clamp01(rgb[c] * exposure / 65535)
				row[x+c] = lut[int(math.Round(v*65535))]
			}
		}
	}
}
