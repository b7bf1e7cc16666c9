package x3f

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// fileBuilder assembles synthetic X3F containers for tests.
type fileBuilder struct {
	buf     []byte
	entries [][3]uint32
	dirID   uint32
	dirVer  uint32
}

func putU32(b []byte, v ...uint32) []byte {
	for _, x := range v {
		b = binary.LittleEndian.AppendUint32(b, x)
	}
	return b
}

// newFileBuilder writes a file header for version with the given size.
func newFileBuilder(version, columns, rows uint32) *fileBuilder {
	b := &fileBuilder{dirID: SECd, dirVer: Version20}
	b.buf = putU32(nil, FOVb, version)
	for i := 0; i < UniqueIdentifierSize; i++ {
		b.buf = append(b.buf, byte(i+1))
	}
	if version >= Version40 {
		return b
	}
	b.buf = putU32(b.buf, 0xff, columns, rows, 90)
	if version < Version21 {
		return b
	}
	b.buf = append(b.buf, fixed("Auto", WhiteBalanceSize)...)
	if version >= Version23 {
		b.buf = append(b.buf, fixed("Neutral", ColorModeSize)...)
	}
	n := NumExtData21
	if version >= Version30 {
		n = NumExtData30
	}
	for i := 0; i < n; i++ {
		b.buf = append(b.buf, byte(i))
	}
	for i := 0; i < n; i++ {
		b.buf = putU32(b.buf, math.Float32bits(float32(i)/2))
	}
	return b
}

func fixed(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func (b *fileBuilder) align() {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
}

// addSection appends data at the next aligned offset and records a
// directory entry for it.
func (b *fileBuilder) addSection(typ uint32, data []byte) uint32 {
	b.align()
	off := uint32(len(b.buf))
	b.buf = append(b.buf, data...)
	b.entries = append(b.entries, [3]uint32{off, uint32(len(data)), typ})
	return off
}

// addEntry records a raw directory entry without data.
func (b *fileBuilder) addEntry(off, length, typ uint32) {
	b.entries = append(b.entries, [3]uint32{off, length, typ})
}

// bytes appends the directory and the trailing directory pointer.
func (b *fileBuilder) bytes() []byte {
	b.align()
	dirOff := uint32(len(b.buf))
	out := putU32(b.buf, b.dirID, b.dirVer, uint32(len(b.entries)))
	for _, e := range b.entries {
		out = putU32(out, e[0], e[1], e[2])
	}
	return putU32(out, dirOff)
}

func utf16z(s string) []byte {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return append(b, 0, 0)
}

// propList builds a SECp section from name/value pairs.
func propList(pairs ...string) []byte {
	var data []byte
	var offsets []uint32
	for _, s := range pairs {
		offsets = append(offsets, uint32(len(data)/2))
		data = append(data, utf16z(s)...)
	}
	num := uint32(len(pairs) / 2)
	b := putU32(nil, SECp, Version20, num, CharFormatUTF16, 0, uint32(len(data)/2))
	for i := 0; i < len(offsets); i += 2 {
		b = putU32(b, offsets[i], offsets[i+1])
	}
	return append(b, data...)
}

// rawPropList builds a SECp section with explicit character offsets.
func rawPropList(num uint32, offsets [][2]uint32, data []byte) []byte {
	b := putU32(nil, SECp, Version20, num, CharFormatUTF16, 0, uint32(len(data)/2))
	for _, o := range offsets {
		b = putU32(b, o[0], o[1])
	}
	return append(b, data...)
}

// imageSection builds a SECi section followed by payload.
func imageSection(typ, format, width, height, stride uint32, payload []byte) []byte {
	b := putU32(nil, SECi, Version20, typ, format, width, height, stride)
	return append(b, payload...)
}

// camfEntry builds one CMb* entry. value receives the offset of the value
// from the entry start; offsets it encodes are relative to the entry too.
func camfEntry(id uint32, name string, value func(valueOff uint32) []byte) []byte {
	nameOff := uint32(20)
	valueOff := nameOff + uint32(len(name)) + 1
	for valueOff%4 != 0 {
		valueOff++
	}
	v := value(valueOff)
	size := valueOff + uint32(len(v))

	b := putU32(nil, id, Version20, size, nameOff, valueOff)
	b = append(b, name...)
	for uint32(len(b)) < valueOff {
		b = append(b, 0)
	}
	return append(b, v...)
}

func camfText(name, text string) []byte {
	return camfEntry(CMbT, name, func(uint32) []byte {
		return append(putU32(nil, uint32(len(text)+1)), append([]byte(text), 0)...)
	})
}

func camfProps(name string, pairs ...string) []byte {
	return camfEntry(CMbP, name, func(valueOff uint32) []byte {
		num := uint32(len(pairs) / 2)
		base := valueOff + 8 + num*8
		var strs []byte
		var offs []uint32
		for _, s := range pairs {
			offs = append(offs, uint32(len(strs)))
			strs = append(append(strs, s...), 0)
		}
		v := putU32(nil, num, base)
		v = putU32(v, offs...)
		return append(v, strs...)
	})
}

func camfMatrixFloat(name, dimName string, values []float32) []byte {
	return camfEntry(CMbM, name, func(valueOff uint32) []byte {
		dimNameOff := valueOff + 12 + 12
		dataOff := dimNameOff + uint32(len(dimName)) + 1
		for dataOff%4 != 0 {
			dataOff++
		}
		v := putU32(nil, MatrixFloat32, 1, dataOff)
		v = putU32(v, uint32(len(values)), dimNameOff, 0)
		v = append(v, dimName...)
		for valueOff+uint32(len(v)) < dataOff {
			v = append(v, 0)
		}
		for _, f := range values {
			v = putU32(v, math.Float32bits(f))
		}
		return v
	})
}

// camfSection builds a type 2 SECc section from plain entries.
func camfSection(key uint32, entries ...[]byte) []byte {
	var plain []byte
	for _, e := range entries {
		plain = append(plain, e...)
	}
	b := putU32(nil, SECc, Version20, CAMFType2, 0, 0, 0, key)
	return append(b, decodeCAMFType2(plain, key)...)
}
