package x3f

import (
	"encoding/binary"
	"math"
)

var le = binary.LittleEndian

// ByteStream is a bounds-checked little-endian cursor over an immutable
// buffer. Reads never dereference outside the buffer: a failed read
// returns a *BoundsError and leaves the cursor where it was.
type ByteStream struct {
	data []byte
	pos  uint32
}

// NewByteStream wraps data. Buffers larger than 4 GiB are truncated to the
// addressable range of the format's 32-bit offsets.
func NewByteStream(data []byte) *ByteStream {
	if uint64(len(data)) > math.MaxUint32 {
		data = data[:math.MaxUint32]
	}
	return &ByteStream{data: data}
}

// Size returns the total buffer length.
func (bs *ByteStream) Size() uint32 { return uint32(len(bs.data)) }

// Position returns the cursor.
func (bs *ByteStream) Position() uint32 { return bs.pos }

// RemainingSize returns the number of bytes after the cursor.
func (bs *ByteStream) RemainingSize() uint32 { return bs.Size() - bs.pos }

// IsValid reports whether [offset, offset+length) lies inside the buffer.
func (bs *ByteStream) IsValid(offset, length uint32) bool {
	return uint64(offset)+uint64(length) <= uint64(len(bs.data))
}

func (bs *ByteStream) boundsError(offset, length uint32) error {
	return &BoundsError{Offset: uint64(offset), Length: uint64(length), Size: uint64(len(bs.data))}
}

// GetData returns a borrowed view of [offset, offset+length).
func (bs *ByteStream) GetData(offset, length uint32) ([]byte, error) {
	if !bs.IsValid(offset, length) {
		return nil, bs.boundsError(offset, length)
	}
	return bs.data[offset : offset+length : offset+length], nil
}

// SetPosition moves the cursor. pos == Size() is allowed (end of stream).
func (bs *ByteStream) SetPosition(pos uint32) error {
	if !bs.IsValid(pos, 0) {
		return bs.boundsError(pos, 0)
	}
	bs.pos = pos
	return nil
}

// Skip advances the cursor by n bytes.
func (bs *ByteStream) Skip(n uint32) error {
	if !bs.IsValid(bs.pos, n) {
		return bs.boundsError(bs.pos, n)
	}
	bs.pos += n
	return nil
}

func (bs *ByteStream) next(n uint32) ([]byte, error) {
	b, err := bs.GetData(bs.pos, n)
	if err != nil {
		return nil, err
	}
	bs.pos += n
	return b, nil
}

// Byte reads one byte.
func (bs *ByteStream) Byte() (byte, error) {
	b, err := bs.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (bs *ByteStream) U16() (uint16, error) {
	b, err := bs.next(2)
	if err != nil {
		return 0, err
	}
	return le.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (bs *ByteStream) U32() (uint32, error) {
	b, err := bs.next(4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

// Float32 reads a little-endian IEEE-754 single.
func (bs *ByteStream) Float32() (float32, error) {
	u, err := bs.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// Peek runs fn with the cursor at pos and restores the cursor afterwards,
// whether fn returns normally, fails or panics.
func (bs *ByteStream) Peek(pos uint32, fn func(*ByteStream) error) error {
	saved := bs.pos
	defer func() { bs.pos = saved }()

	if err := bs.SetPosition(pos); err != nil {
		return err
	}
	return fn(bs)
}
