package x3f

import (
	"maps"
	"slices"
)

// PropertyCollection holds the name/value pairs of every property list
// in the container. Later lists overwrite earlier keys.
type PropertyCollection struct {
	props map[string]string
}

// NewPropertyCollection returns an empty collection.
func NewPropertyCollection() *PropertyCollection {
	return &PropertyCollection{props: make(map[string]string)}
}

// PropertyListHeader is the fixed part of a SECp section.
type PropertyListHeader struct {
	SectionHeader
	NumProperties   uint32
	CharacterFormat uint32
	Reserved        uint32
	TotalLength     uint32 // name/value data length in characters
}

// AddProperties parses the property list whose section starts at offset.
// The stream cursor is left untouched.
//
// Header problems are fatal. An individual entry whose name or value
// offset points outside the buffer is skipped.
func (pc *PropertyCollection) AddProperties(bs *ByteStream, offset uint32) error {
	return bs.Peek(offset, func(s *ByteStream) error {
		h, err := readPropertyListHeader(s)
		if err != nil {
			return err
		}

		dataStart := uint64(s.Position()) + uint64(h.NumProperties)*PropertyEntrySize
		skipped := 0
		for i := uint32(0); i < h.NumProperties; i++ {
			nameOff, err := s.U32()
			if err != nil {
				return err
			}
			valueOff, err := s.U32()
			if err != nil {
				return err
			}

			// 偏移量是 UTF-16 字符偏移量，需要乘以 2 得到字节偏移量
			namePos := uint64(nameOff)*2 + dataStart
			valuePos := uint64(valueOff)*2 + dataStart
			if !validPos(s, namePos) || !validPos(s, valuePos) {
				skipped++
				continue
			}

			name := utf16ToUTF8(readUTF16Z(s, uint32(namePos)))
			value := utf16ToUTF8(readUTF16Z(s, uint32(valuePos)))
			pc.props[name] = value
		}

		if skipped > 0 {
			debug("x3f: skipped corrupt property entries", "skipped", skipped, "total", h.NumProperties)
		}
		return nil
	})
}

func validPos(bs *ByteStream, pos uint64) bool {
	return pos <= uint64(^uint32(0)) && bs.IsValid(uint32(pos), 2)
}

func readPropertyListHeader(bs *ByteStream) (PropertyListHeader, error) {
	var h PropertyListHeader
	sh, err := readSectionHeader(bs)
	if err != nil {
		return h, err
	}
	h.SectionHeader = sh
	if sh.ID != SECp && sh.ID != PROP {
		return h, formatErrorf("invalid property list identifier 0x%08x", sh.ID)
	}
	if sh.Version < Version20 {
		return h, formatErrorf("property list version %s older than 2.0 is not supported", VersionString(sh.Version))
	}

	for _, dst := range []*uint32{&h.NumProperties, &h.CharacterFormat, &h.Reserved, &h.TotalLength} {
		if *dst, err = bs.U32(); err != nil {
			return h, err
		}
	}

	if h.CharacterFormat != CharFormatUTF16 {
		return h, formatErrorf("unsupported property character format %d", h.CharacterFormat)
	}
	if h.NumProperties > MaxProperties {
		return h, &ResourceLimitError{What: "property count", Limit: MaxProperties, Got: uint64(h.NumProperties)}
	}
	return h, nil
}

// Get returns the value of a property by name
func (pc *PropertyCollection) Get(name string) (string, bool) {
	if pc == nil {
		return "", false
	}
	v, ok := pc.props[name]
	return v, ok
}

// Set stores a property, replacing any previous value.
func (pc *PropertyCollection) Set(name, value string) {
	pc.props[name] = value
}

// Len returns the number of distinct property names.
func (pc *PropertyCollection) Len() int {
	if pc == nil {
		return 0
	}
	return len(pc.props)
}

// Keys returns the property names in sorted order.
func (pc *PropertyCollection) Keys() []string {
	if pc == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(pc.props))
}

// Map returns a copy of the name/value mapping.
func (pc *PropertyCollection) Map() map[string]string {
	if pc == nil {
		return map[string]string{}
	}
	return maps.Clone(pc.props)
}

// GetProperty returns the value of a property by name
func (c *Container) GetProperty(name string) (string, bool) {
	return c.Properties.Get(name)
}
