package x3f

import (
	"errors"
	"fmt"
)

// 错误分类：结构性错误（格式、越界、资源上限）对整个解码是致命的
var (
	ErrFormat        = errors.New("x3f: invalid format")
	ErrBounds        = errors.New("x3f: out of bounds")
	ErrUnsupported   = errors.New("x3f: unsupported format")
	ErrResourceLimit = errors.New("x3f: resource limit exceeded")
)

// FormatError reports a bad magic, signature or version.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "x3f: " + e.Msg }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErrorf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// BoundsError reports an offset/length pair outside the buffer extent.
type BoundsError struct {
	Offset uint64
	Length uint64
	Size   uint64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("x3f: range [%d, +%d) outside buffer of %d bytes", e.Offset, e.Length, e.Size)
}

func (e *BoundsError) Is(target error) bool { return target == ErrBounds }

// UnsupportedFormatError reports a structurally valid but undefined
// combination, e.g. a transform version with no 4:2:0 variant.
type UnsupportedFormatError struct {
	Msg string
}

func (e *UnsupportedFormatError) Error() string { return "x3f: unsupported: " + e.Msg }

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupported }

// Unsupportedf builds an UnsupportedFormatError.
func Unsupportedf(format string, args ...any) error {
	return &UnsupportedFormatError{Msg: fmt.Sprintf(format, args...)}
}

// ResourceLimitError reports a defensive cap being hit.
type ResourceLimitError struct {
	What  string
	Limit uint64
	Got   uint64
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("x3f: %s %d exceeds limit %d", e.What, e.Got, e.Limit)
}

func (e *ResourceLimitError) Is(target error) bool { return target == ErrResourceLimit }
