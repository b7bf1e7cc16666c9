package x3f

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// File is a parsed X3F file together with the bytes backing it.
type File struct {
	*Container
	Data    []byte
	mmapped bool
}

// opens an X3F file for reading
//
// The file is mapped read-only where mmap is available and read into
// memory otherwise. The returned file must be closed.
func Open(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	size := stat.Size()
	if size < MinFileSize {
		return nil, formatErrorf("file too small: %d bytes", size)
	}
	if size > math.MaxUint32 {
		return nil, &ResourceLimitError{What: "file size", Limit: math.MaxUint32, Got: uint64(size)}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		x, parseErr := openData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return x, nil
	}
	debug("x3f: mmap unavailable, reading file", "err", err)

	return OpenReaderAt(f, size)
}

// OpenReaderAt reads size bytes from r and parses them.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > math.MaxUint32 {
		return nil, &ResourceLimitError{What: "file size", Limit: math.MaxUint32, Got: uint64(max(size, 0))}
	}
	data := make([]byte, size)
	n, err := r.ReadAt(data, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == size) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return openData(data, false)
}

func openData(data []byte, mmapped bool) (*File, error) {
	c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &File{Container: c, Data: data, mmapped: mmapped}, nil
}

// closes the X3F file
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}

// ImageData returns the payload of an image section of this file.
func (f *File) ImageData(img ImageDescriptor) ([]byte, error) {
	return img.ImageData(f.Data)
}
