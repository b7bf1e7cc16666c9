package x3f

import (
	"github.com/google/uuid"
)

// ExifInfo 拍摄参数
type ExifInfo struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Serial       string  `json:"serial,omitempty"`
	FNumber      float64 `json:"f_number,omitempty"`
	ExposureTime float64 `json:"exposure_time,omitempty"` // 秒
	ISO          uint16  `json:"iso,omitempty"`
	WhiteBalance string  `json:"white_balance,omitempty"`
}

// Model returns the camera model from the CAMMODEL property, falling back
// to a generic name.
func (c *Container) Model() string {
	if model, ok := c.GetProperty("CAMMODEL"); ok && model != "" {
		return model
	}
	return "Sigma X3F"
}

// Columns returns the unrotated output width, falling back to the raw
// image size for headers (4.0+) that do not carry it.
func (c *Container) Columns() uint32 {
	if c.Header.HasDimensions() {
		return c.Header.Columns
	}
	if img, ok := c.RawImage(); ok {
		return img.Width
	}
	return 0
}

// Rows returns the unrotated output height; see Columns.
func (c *Container) Rows() uint32 {
	if c.Header.HasDimensions() {
		return c.Header.Rows
	}
	if img, ok := c.RawImage(); ok {
		return img.Height
	}
	return 0
}

// UniqueID formats the header's 16-byte unique identifier. The bytes are
// camera serial, timestamp and timer, not an RFC 4122 UUID; the UUID text
// form is used for display only.
func (c *Container) UniqueID() string {
	return uuid.UUID(c.Header.UniqueIdentifier).String()
}

// WhiteBalance returns the white balance label from the header, or the
// WB property for newer files.
func (c *Container) WhiteBalance() string {
	if wb := c.Header.WhiteBalanceLabel(); wb != "" {
		return wb
	}
	if wb, ok := c.GetProperty("WB"); ok {
		return wb
	}
	return ""
}

// camfScalar returns a single-element CAMF matrix value.
func (c *Container) camfScalar(name string) (float64, bool) {
	m, _, ok := c.CAMF.Matrix(name)
	if !ok || len(m) != 1 {
		return 0, false
	}
	return m[0], true
}

// ExtractExifInfo 从 X3F 文件中提取拍摄参数
func (c *Container) ExtractExifInfo() ExifInfo {
	exif := ExifInfo{
		Make:         "SIGMA",
		Model:        c.Model(),
		WhiteBalance: c.WhiteBalance(),
	}
	if serial, ok := c.GetProperty("CAMSERIAL"); ok {
		exif.Serial = serial
	}

	if aperture, ok := c.camfScalar("CaptureAperture"); ok {
		exif.FNumber = aperture
	}
	if shutter, ok := c.camfScalar("CaptureShutter"); ok && shutter > 0 {
		exif.ExposureTime = 1.0 / shutter // 快门速度是倒数形式
	}
	if iso, ok := c.camfScalar("CaptureISO"); ok {
		exif.ISO = uint16(iso)
	}
	return exif
}
