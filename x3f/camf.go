package x3f

import (
	"bytes"
	"fmt"
	"math"
)

// CAMF 数据类型
const (
	CAMFType2 uint32 = 2 // XOR obfuscated
	CAMFType4 uint32 = 4 // Huffman, TRUE engine
	CAMFType5 uint32 = 5 // Huffman, simple accumulation
)

// Matrix element types as stored in CMbM entries
const (
	MatrixInt16   uint32 = 0
	MatrixUint32  uint32 = 1
	MatrixUint32b uint32 = 2
	MatrixFloat32 uint32 = 3
	MatrixUint8   uint32 = 5
	MatrixUint16  uint32 = 6
)

// CAMFHeader CAMF 段头部
type CAMFHeader struct {
	SectionHeader
	Type uint32
	// Type 2: reserved, infoType, infoTypeVersion, cryptKey
	// Type 4/5: decodedDataSize, decodeBias, blockSize, blockCount
	Params [4]uint32
}

// CryptKey returns the type 2 XOR key.
func (h CAMFHeader) CryptKey() uint32 { return h.Params[3] }

// CAMFDim 矩阵维度
type CAMFDim struct {
	Size uint32
	Name string
}

// CAMFEntry CAMF 条目
type CAMFEntry struct {
	ID      uint32
	Version uint32
	Name    string

	// CMbT
	Text string

	// CMbP
	PropertyNames  []string
	PropertyValues []string

	// CMbM
	MatrixType uint32
	MatrixDims []CAMFDim
	Matrix     []float64
}

// CAMFData is the camera metadata block. Entries is empty when the block
// is entropy coded (types 4 and 5); Encoded keeps the payload for an
// external decoder in that case.
type CAMFData struct {
	Header  CAMFHeader
	Decoded bool
	Encoded []byte
	Entries []*CAMFEntry
}

// readCAMF parses the CAMF section referenced by entry. A bad section
// header is fatal; a corrupt entry only ends the entry walk.
func readCAMF(bs *ByteStream, entry DirectoryEntry) (*CAMFData, error) {
	if entry.Length < CAMFHeaderSize {
		return nil, formatErrorf("CAMF section too short: %d bytes", entry.Length)
	}

	camf := &CAMFData{}
	err := bs.Peek(entry.Offset, func(s *ByteStream) error {
		sh, err := readSectionHeader(s)
		if err != nil {
			return err
		}
		if sh.ID != SECc {
			return formatErrorf("invalid CAMF section identifier 0x%08x", sh.ID)
		}
		camf.Header.SectionHeader = sh
		if camf.Header.Type, err = s.U32(); err != nil {
			return err
		}
		for i := range camf.Header.Params {
			if camf.Header.Params[i], err = s.U32(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload, err := bs.GetData(entry.Offset+CAMFHeaderSize, entry.Length-CAMFHeaderSize)
	if err != nil {
		return nil, err
	}

	switch camf.Header.Type {
	case CAMFType2:
		decoded := decodeCAMFType2(payload, camf.Header.CryptKey())
		camf.Entries = parseCAMFEntries(decoded)
		camf.Decoded = true
	case CAMFType4, CAMFType5:
		camf.Encoded = payload
	default:
		debug("x3f: unknown CAMF type, payload kept", "type", camf.Header.Type)
		camf.Encoded = payload
	}

	debug("x3f camf", "type", camf.Header.Type, "entries", len(camf.Entries))
	return camf, nil
}

// decodeCAMFType2 解码 Type 2 CAMF 数据（XOR 解密）
func decodeCAMFType2(encoded []byte, cryptKey uint32) []byte {
	decoded := make([]byte, len(encoded))
	key := cryptKey
	for i, old := range encoded {
		key = (key*1597 + 51749) % 244944
		tmp := uint32((int64(key) * 301593171) >> 24)
		decoded[i] = old ^ uint8((((key<<8)-tmp)>>1+tmp)>>17)
	}
	return decoded
}

// parseCAMFEntries walks CMb* entries until the data ends or an entry
// fails validation.
func parseCAMFEntries(data []byte) []*CAMFEntry {
	var entries []*CAMFEntry
	off := 0
	for off+20 <= len(data) && len(entries) < MaxCAMFEntries {
		entry, size, err := parseCAMFEntry(data[off:])
		if err != nil {
			debug("x3f: CAMF entry walk stopped", "offset", off, "err", err)
			break
		}
		entries = append(entries, entry)
		off += int(size)
	}
	return entries
}

func parseCAMFEntry(data []byte) (*CAMFEntry, uint32, error) {
	bs := NewByteStream(data)
	hdr, err := bs.GetData(0, 20)
	if err != nil {
		return nil, 0, err
	}
	id := le.Uint32(hdr[0:])
	version := le.Uint32(hdr[4:])
	entrySize := le.Uint32(hdr[8:])
	nameOff := le.Uint32(hdr[12:])
	valueOff := le.Uint32(hdr[16:])

	if id&0x00ffffff != CMb {
		return nil, 0, formatErrorf("bad CAMF entry identifier 0x%08x", id)
	}
	if entrySize < 20 || !bs.IsValid(0, entrySize) {
		return nil, 0, formatErrorf("bad CAMF entry size %d", entrySize)
	}

	// 条目内的所有偏移都相对于条目起始
	bs = NewByteStream(data[:entrySize])
	nameEnd := valueOff
	if valueOff == 0 {
		nameEnd = entrySize
	}
	if nameOff < 20 || nameEnd < nameOff || nameEnd > entrySize {
		return nil, 0, formatErrorf("bad CAMF name range [%d, %d)", nameOff, nameEnd)
	}

	entry := &CAMFEntry{
		ID:      id,
		Version: version,
		Name:    cString(data[nameOff:nameEnd]),
	}

	if valueOff != 0 {
		switch id {
		case CMbT:
			err = entry.parseText(bs, valueOff)
		case CMbP:
			err = entry.parseProperties(bs, valueOff)
		case CMbM:
			err = entry.parseMatrix(bs, valueOff)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("CAMF entry %q: %w", entry.Name, err)
		}
	}
	return entry, entrySize, nil
}

// Text entry 的 value：前 4 字节是文本长度，然后是文本内容
func (e *CAMFEntry) parseText(bs *ByteStream, valueOff uint32) error {
	if err := bs.SetPosition(valueOff); err != nil {
		return err
	}
	size, err := bs.U32()
	if err != nil {
		return err
	}
	if size > bs.RemainingSize() {
		size = bs.RemainingSize()
	}
	text, err := bs.GetData(bs.Position(), size)
	if err != nil {
		return err
	}
	e.Text = cString(text)
	return nil
}

func (e *CAMFEntry) parseProperties(bs *ByteStream, valueOff uint32) error {
	if err := bs.SetPosition(valueOff); err != nil {
		return err
	}
	num, err := bs.U32()
	if err != nil {
		return err
	}
	base, err := bs.U32()
	if err != nil {
		return err
	}
	if uint64(num)*8 > uint64(bs.RemainingSize()) {
		return &ResourceLimitError{What: "CAMF property count", Limit: uint64(bs.RemainingSize() / 8), Got: uint64(num)}
	}

	e.PropertyNames = make([]string, 0, num)
	e.PropertyValues = make([]string, 0, num)
	for i := uint32(0); i < num; i++ {
		nameOff, err := bs.U32()
		if err != nil {
			return err
		}
		valOff, err := bs.U32()
		if err != nil {
			return err
		}
		e.PropertyNames = append(e.PropertyNames, asciiZ(bs, uint64(base)+uint64(nameOff)))
		e.PropertyValues = append(e.PropertyValues, asciiZ(bs, uint64(base)+uint64(valOff)))
	}
	return nil
}

// asciiZ reads a NUL-terminated string; out-of-range offsets yield "".
func asciiZ(bs *ByteStream, pos uint64) string {
	if pos >= uint64(bs.Size()) {
		return ""
	}
	rest := bs.data[pos:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[:i]
	}
	return string(rest)
}

func matrixElementSize(t uint32) uint32 {
	switch t {
	case MatrixInt16, MatrixUint16:
		return 2
	case MatrixUint32, MatrixUint32b, MatrixFloat32:
		return 4
	case MatrixUint8:
		return 1
	}
	return 0
}

func (e *CAMFEntry) parseMatrix(bs *ByteStream, valueOff uint32) error {
	if err := bs.SetPosition(valueOff); err != nil {
		return err
	}
	var numDims, dataOff uint32
	var err error
	if e.MatrixType, err = bs.U32(); err != nil {
		return err
	}
	if numDims, err = bs.U32(); err != nil {
		return err
	}
	if dataOff, err = bs.U32(); err != nil {
		return err
	}
	if uint64(numDims)*12 > uint64(bs.RemainingSize()) {
		return &ResourceLimitError{What: "CAMF matrix dimensions", Limit: uint64(bs.RemainingSize() / 12), Got: uint64(numDims)}
	}

	elements := uint64(1)
	e.MatrixDims = make([]CAMFDim, numDims)
	for i := range e.MatrixDims {
		size, err := bs.U32()
		if err != nil {
			return err
		}
		nameOff, err := bs.U32()
		if err != nil {
			return err
		}
		if _, err := bs.U32(); err != nil { // dimension index
			return err
		}
		e.MatrixDims[i] = CAMFDim{Size: size, Name: asciiZ(bs, uint64(nameOff))}
		elements *= uint64(size)
		if elements > uint64(bs.Size()) {
			return &ResourceLimitError{What: "CAMF matrix elements", Limit: uint64(bs.Size()), Got: elements}
		}
	}

	elemSize := matrixElementSize(e.MatrixType)
	if elemSize == 0 {
		debug("x3f: unknown CAMF matrix type", "name", e.Name, "type", e.MatrixType)
		return nil
	}
	total := elements * uint64(elemSize)
	if total > uint64(bs.Size()) {
		return &BoundsError{Offset: uint64(dataOff), Length: total, Size: uint64(bs.Size())}
	}
	raw, err := bs.GetData(dataOff, uint32(total))
	if err != nil {
		return err
	}

	e.Matrix = make([]float64, elements)
	for i := range e.Matrix {
		b := raw[uint32(i)*elemSize:]
		switch e.MatrixType {
		case MatrixInt16:
			e.Matrix[i] = float64(int16(le.Uint16(b)))
		case MatrixUint16:
			e.Matrix[i] = float64(le.Uint16(b))
		case MatrixUint32, MatrixUint32b:
			e.Matrix[i] = float64(le.Uint32(b))
		case MatrixFloat32:
			e.Matrix[i] = float64(math.Float32frombits(le.Uint32(b)))
		case MatrixUint8:
			e.Matrix[i] = float64(b[0])
		}
	}
	return nil
}

// Text 获取文本条目
func (c *CAMFData) Text(name string) (string, bool) {
	if e := c.find(name, CMbT); e != nil {
		return e.Text, true
	}
	return "", false
}

// Property 获取属性列表中的值
func (c *CAMFData) Property(list, key string) (string, bool) {
	e := c.find(list, CMbP)
	if e == nil {
		return "", false
	}
	for i, name := range e.PropertyNames {
		if name == key {
			return e.PropertyValues[i], true
		}
	}
	return "", false
}

// Matrix 获取矩阵数据及其维度
func (c *CAMFData) Matrix(name string) ([]float64, []uint32, bool) {
	e := c.find(name, CMbM)
	if e == nil {
		return nil, nil, false
	}
	dims := make([]uint32, len(e.MatrixDims))
	for i, d := range e.MatrixDims {
		dims[i] = d.Size
	}
	return e.Matrix, dims, true
}

func (c *CAMFData) find(name string, id uint32) *CAMFEntry {
	if c == nil {
		return nil
	}
	for _, e := range c.Entries {
		if e.ID == id && e.Name == name {
			return e
		}
	}
	return nil
}
