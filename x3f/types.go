package x3f

// SectionHeader is the {id, version} pair every X3F section starts with.
// Offset is where it was read; it is not part of the on-disk record.
type SectionHeader struct {
	ID      uint32
	Version uint32
	Offset  uint32
}

// FileHeader represents the X3F file header
type FileHeader struct {
	SectionHeader
	UniqueIdentifier  [UniqueIdentifierSize]byte
	MarkBits          uint32
	Columns           uint32
	Rows              uint32
	Rotation          uint32
	WhiteBalance      [WhiteBalanceSize]byte
	ColorMode         [ColorModeSize]byte
	NumExtData        int
	ExtendedDataTypes [NumExtData]uint8
	ExtendedData      [NumExtData]float32
}

// DirectoryEntry represents a single directory entry
type DirectoryEntry struct {
	Offset    uint32
	Length    uint32
	Type      uint32
	SectionID uint32 // first 4 bytes of the entry's data
}

// ImageDescriptor describes one SECi image section. The pixel payload
// itself is left to format-specific decompressors.
type ImageDescriptor struct {
	SectionHeader
	Type      uint32
	Format    uint32
	Width     uint32
	Height    uint32
	RowStride uint32 // 0 means variable-length rows

	DataOffset uint32
	DataLength uint32
}

// TypeFormat returns the combined type<<16|format identifier used by the
// Image* constants.
func (d ImageDescriptor) TypeFormat() uint32 {
	return d.Type<<16 | d.Format
}

// IsPreview reports whether the image is a processed-for-preview thumbnail.
func (d ImageDescriptor) IsPreview() bool {
	return d.Type == ImageTypePreview
}

// Container is the result of one directory walk.
type Container struct {
	Header     *FileHeader
	Directory  []DirectoryEntry
	Images     []ImageDescriptor
	Properties *PropertyCollection
	CAMF       *CAMFData
}
