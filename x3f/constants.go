package x3f

import "strconv"

// X3F file format constants
const (
	// File identifiers
	FOVb uint32 = 0x62564f46 // Main file identifier "FOVb"
	SECd uint32 = 0x64434553 // Directory identifier "SECd"

	// Property section identifiers
	PROP uint32 = 0x504f5250 // "PROP"
	SECp uint32 = 0x70434553 // "SECp"

	// Image section identifiers
	IMAG uint32 = 0x47414d49 // "IMAG"
	IMAF uint32 = 0x46414d49 // "IMAF", accepted as IMAG
	IMA2 uint32 = 0x32414d49 // "IMA2"
	SECi uint32 = 0x69434553 // "SECi"

	// CAMF section identifiers
	CAMF uint32 = 0x464d4143 // "CAMF"
	SECc uint32 = 0x63434553 // "SECc"

	// SDQ section identifiers
	SPPA uint32 = 0x41505053 // "SPPA"
	SECs uint32 = 0x73434553 // "SECs"
)

// CAMF entry identifiers
const (
	CMbP uint32 = 0x50624d43 // Property list
	CMbT uint32 = 0x54624d43 // Text
	CMbM uint32 = 0x4d624d43 // Matrix
	CMb  uint32 = 0x00624d43 // common prefix, low three bytes
)

// X3F format versions
const (
	Version20 uint32 = (2 << 16) | 0
	Version21 uint32 = (2 << 16) | 1
	Version22 uint32 = (2 << 16) | 2
	Version23 uint32 = (2 << 16) | 3
	Version30 uint32 = (3 << 16) | 0
	Version40 uint32 = (4 << 16) | 0
	Version41 uint32 = (4 << 16) | 1
)

// Image type identifiers (type<<16 | format)
const (
	ImageThumbPlain   uint32 = 0x00020003
	ImageThumbHuffman uint32 = 0x0002000b
	ImageThumbJPEG    uint32 = 0x00020012
	ImageThumbSDQ     uint32 = 0x00020019

	ImageRAWHuffmanX530  uint32 = 0x00030005
	ImageRAWHuffman10bit uint32 = 0x00030006
	ImageRAWTRUE         uint32 = 0x0003001e
	ImageRAWMerrill      uint32 = 0x0001001e
	ImageRAWQuattro      uint32 = 0x00010023
	ImageRAWSDQ          uint32 = 0x00010025
	ImageRAWSDQH         uint32 = 0x00010027
)

// Image section "type" values
const (
	ImageTypeRAW     uint32 = 1
	ImageTypePreview uint32 = 2
	ImageTypeRAWAlt  uint32 = 3
)

// Sizes and limits
const (
	MinFileSize            = 104 + 128 // header + trailer minimum
	SectionHeaderSize      = 8
	DirectoryEntrySize     = 12
	PropertyEntrySize      = 8
	PropertyListHeaderSize = 24
	ImageHeaderSize        = 28
	CAMFHeaderSize         = 28
	UniqueIdentifierSize   = 16
	WhiteBalanceSize       = 32
	ColorModeSize          = 32
	NumExtData21           = 32
	NumExtData30           = 64
	NumExtData             = NumExtData30

	// MaxProperties caps a single property list.
	MaxProperties = 1000
	// MaxCAMFEntries caps the CAMF entry walk.
	MaxCAMFEntries = 4096

	// CharFormatUTF16 is the only supported property character format.
	CharFormatUTF16 uint32 = 0
)

// fourCC renders a little-endian identifier such as SECd as text.
func fourCC(id uint32) string {
	b := []byte{byte(id), byte(id >> 8), byte(id >> 16), byte(id >> 24)}
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			b[i] = '.'
		}
	}
	return string(b)
}

// FourCC renders a section identifier for display.
func FourCC(id uint32) string { return fourCC(id) }

// VersionString formats major<<16|minor as "major.minor".
func VersionString(v uint32) string {
	return strconv.Itoa(int(v>>16)) + "." + strconv.Itoa(int(v&0xffff))
}
