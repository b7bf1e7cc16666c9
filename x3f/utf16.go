package x3f

import (
	"unicode/utf16"
	"unicode/utf8"
)

// readUTF16Z reads NUL-terminated UTF-16LE code units starting at pos.
// A string running into the end of the buffer is truncated there.
func readUTF16Z(bs *ByteStream, pos uint32) []uint16 {
	var units []uint16
	for bs.IsValid(pos, 2) {
		u := le.Uint16(bs.data[pos:])
		if u == 0 {
			break
		}
		units = append(units, u)
		pos += 2
	}
	return units
}

// utf16ToUTF8 transcodes units. A surrogate pair becomes one scalar; an
// unpaired surrogate (including a high surrogate as the last unit) makes
// the whole string unconvertible and "" is returned.
func utf16ToUTF8(units []uint16) string {
	// first pass sizes the destination exactly
	size := 0
	for i := 0; i < len(units); i++ {
		r := rune(units[i])
		if !utf16.IsSurrogate(r) {
			size += utf8.RuneLen(r)
			continue
		}
		if r >= 0xdc00 || i+1 >= len(units) {
			return ""
		}
		if utf16.DecodeRune(r, rune(units[i+1])) == utf8.RuneError {
			return ""
		}
		size += 4
		i++
	}

	buf := make([]byte, 0, size)
	for i := 0; i < len(units); i++ {
		r := rune(units[i])
		if utf16.IsSurrogate(r) {
			r = utf16.DecodeRune(r, rune(units[i+1]))
			i++
		}
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf)
}
