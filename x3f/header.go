package x3f

import (
	"bytes"
	"fmt"
)

// readSectionHeader reads the {id, version} pair at the cursor.
func readSectionHeader(bs *ByteStream) (SectionHeader, error) {
	h := SectionHeader{Offset: bs.Position()}
	var err error
	if h.ID, err = bs.U32(); err != nil {
		return h, err
	}
	if h.Version, err = bs.U32(); err != nil {
		return h, err
	}
	return h, nil
}

// readFileHeader parses the header at the start of the stream.
func readFileHeader(bs *ByteStream) (*FileHeader, error) {
	if err := bs.SetPosition(0); err != nil {
		return nil, err
	}

	sh, err := readSectionHeader(bs)
	if err != nil {
		return nil, err
	}
	if sh.ID != FOVb {
		return nil, formatErrorf("not an X3F file: magic 0x%08x != 0x%08x", sh.ID, FOVb)
	}

	h := &FileHeader{SectionHeader: sh}
	id, err := bs.GetData(bs.Position(), UniqueIdentifierSize)
	if err != nil {
		return nil, err
	}
	copy(h.UniqueIdentifier[:], id)
	if err := bs.Skip(UniqueIdentifierSize); err != nil {
		return nil, err
	}

	// version >= 4.0 (Quattro) 的其余头部字段含义未知
	if h.Version >= Version40 {
		return h, nil
	}

	for _, dst := range []*uint32{&h.MarkBits, &h.Columns, &h.Rows, &h.Rotation} {
		if *dst, err = bs.U32(); err != nil {
			return nil, err
		}
	}

	if h.Version < Version21 {
		return h, nil
	}

	if err := readFixed(bs, h.WhiteBalance[:]); err != nil {
		return nil, err
	}
	if h.Version >= Version23 {
		if err := readFixed(bs, h.ColorMode[:]); err != nil {
			return nil, err
		}
	}

	h.NumExtData = NumExtData21
	if h.Version >= Version30 {
		h.NumExtData = NumExtData30
	}
	// 先 types 后 data，两个循环使用同一个上界
	for i := 0; i < h.NumExtData; i++ {
		if h.ExtendedDataTypes[i], err = bs.Byte(); err != nil {
			return nil, err
		}
	}
	for i := 0; i < h.NumExtData; i++ {
		if h.ExtendedData[i], err = bs.Float32(); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func readFixed(bs *ByteStream, dst []byte) error {
	src, err := bs.GetData(bs.Position(), uint32(len(dst)))
	if err != nil {
		return err
	}
	copy(dst, src)
	return bs.Skip(uint32(len(dst)))
}

// cString trims a fixed-size ASCIIZ field at the first NUL and drops
// trailing spaces.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, " "))
}

// WhiteBalanceLabel returns the header white balance label (2.1+).
func (h *FileHeader) WhiteBalanceLabel() string { return cString(h.WhiteBalance[:]) }

// ColorModeLabel returns the header color mode label (2.3+).
func (h *FileHeader) ColorModeLabel() string { return cString(h.ColorMode[:]) }

// HasDimensions reports whether Columns/Rows were present in the header.
func (h *FileHeader) HasDimensions() bool { return h.Version < Version40 }

func (h *FileHeader) String() string {
	return fmt.Sprintf("FOVb v%s %dx%d rot=%d", VersionString(h.Version), h.Columns, h.Rows, h.Rotation)
}
