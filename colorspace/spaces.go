package colorspace

import (
	"fmt"
	"strings"
)

// 标准色彩空间定义

// sRGB 到 XYZ (D65) 的转换矩阵
var SRGBToXYZ = Matrix3x3{
	0.4124564, 0.3575761, 0.1804375,
	0.2126729, 0.7151522, 0.0721750,
	0.0193339, 0.1191920, 0.9503041,
}

// XYZ (D65) 到 sRGB 的转换矩阵
var XYZToSRGB = Matrix3x3{
	3.2404542, -1.5371385, -0.4985314,
	-0.9692660, 1.8760108, 0.0415560,
	0.0556434, -0.2040259, 1.0572252,
}

// XYZ (D65) 到 Adobe RGB 的转换矩阵
var XYZToAdobeRGB = Matrix3x3{
	2.0413690, -0.5649464, -0.3446944,
	-0.9692660, 1.8760108, 0.0415560,
	0.0134474, -0.1183897, 1.0154096,
}

// XYZ (D50) 到 ProPhoto RGB 的转换矩阵
var XYZToProPhotoRGB = Matrix3x3{
	1.3459433, -0.2556075, -0.0511118,
	-0.5445989, 1.5081673, 0.0205351,
	0.0000000, 0.0000000, 1.2118128,
}

// Bradford 色适应矩阵 (D65 → D50)
var BradfordD65ToD50 = Matrix3x3{
	1.0478112, 0.0228866, -0.0501270,
	0.0295424, 0.9904844, -0.0170491,
	-0.0092345, 0.0150436, 0.7521316,
}

// ColorSpace 输出色彩空间
type ColorSpace int

const (
	// Linear 不做转换，保留重建后的线性数据
	Linear ColorSpace = iota
	SRGB
	AdobeRGB
	ProPhotoRGB
)

var names = map[ColorSpace]string{
	Linear:      "linear",
	SRGB:        "srgb",
	AdobeRGB:    "adobergb",
	ProPhotoRGB: "prophoto",
}

func (cs ColorSpace) String() string {
	if n, ok := names[cs]; ok {
		return n
	}
	return fmt.Sprintf("ColorSpace(%d)", int(cs))
}

// Parse 解析色彩空间名称（不区分大小写）
func Parse(name string) (ColorSpace, error) {
	n := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(name))
	switch n {
	case "", "none", "linear":
		return Linear, nil
	case "srgb":
		return SRGB, nil
	case "adobergb", "adobe":
		return AdobeRGB, nil
	case "prophoto", "prophotorgb":
		return ProPhotoRGB, nil
	}
	return Linear, fmt.Errorf("unknown color space %q", name)
}

// FromSRGB 返回线性 sRGB → 目标空间的矩阵
func FromSRGB(cs ColorSpace) Matrix3x3 {
	switch cs {
	case AdobeRGB:
		return XYZToAdobeRGB.Multiply(SRGBToXYZ)
	case ProPhotoRGB:
		// ProPhoto RGB 使用 D50，需要先做色适应
		return XYZToProPhotoRGB.Multiply(BradfordD65ToD50).Multiply(SRGBToXYZ)
	default:
		return Identity3x3()
	}
}

// Gamma 返回色彩空间的 gamma 值，sRGB 使用分段曲线
func Gamma(cs ColorSpace) float64 {
	switch cs {
	case AdobeRGB:
		return 563.0 / 256.0
	case ProPhotoRGB:
		return 1.8
	default:
		return 1.0
	}
}
