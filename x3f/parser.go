package x3f

import (
	"errors"
	"fmt"
)

// Parser walks one X3F container held in memory. A Parser performs a
// single sequential walk and must not be shared between goroutines.
type Parser struct {
	bs     *ByteStream
	header *FileHeader
	walked bool
}

// NewParser validates the minimum size and the FOVb magic and parses the
// file header.
func NewParser(data []byte) (*Parser, error) {
	if len(data) < MinFileSize {
		return nil, formatErrorf("file too small: %d bytes, need at least %d", len(data), MinFileSize)
	}

	bs := NewByteStream(data)
	header, err := readFileHeader(bs)
	if err != nil {
		if errors.Is(err, ErrBounds) {
			return nil, fmt.Errorf("%w: header truncated: %w", ErrFormat, err)
		}
		return nil, err
	}

	debug("x3f header", "version", VersionString(header.Version),
		"columns", header.Columns, "rows", header.Rows)

	return &Parser{bs: bs, header: header}, nil
}

// Header returns the parsed file header.
func (p *Parser) Header() *FileHeader { return p.header }

// Parse locates the directory and walks every entry. Any structural error
// aborts the whole parse; no partially populated container is returned.
func (p *Parser) Parse() (*Container, error) {
	if p.walked {
		return nil, errors.New("x3f: parser already used")
	}
	p.walked = true

	dir, count, err := p.locateDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	debug("x3f directory", "offset", dir.Offset, "version", VersionString(dir.Version), "entries", count)

	c := &Container{
		Header:     p.header,
		Properties: NewPropertyCollection(),
	}
	if err := p.walk(c, count); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode parses a complete container from data.
func Decode(data []byte) (*Container, error) {
	p, err := NewParser(data)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}
