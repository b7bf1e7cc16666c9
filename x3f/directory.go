package x3f

import (
	"fmt"
)

// locateDirectory follows the pointer stored in the last 4 bytes of the
// file and validates the directory section header. On success the cursor
// sits on the first entry record.
func (p *Parser) locateDirectory() (SectionHeader, uint32, error) {
	bs := p.bs

	if err := bs.SetPosition(bs.Size() - 4); err != nil {
		return SectionHeader{}, 0, err
	}
	dirOffset, err := bs.U32()
	if err != nil {
		return SectionHeader{}, 0, err
	}
	if err := bs.SetPosition(dirOffset); err != nil {
		return SectionHeader{}, 0, err
	}

	dir, err := readSectionHeader(bs)
	if err != nil {
		return dir, 0, err
	}
	if dir.ID != SECd && dir.ID != SECc {
		return dir, 0, formatErrorf("unknown directory identifier 0x%08x (%s)", dir.ID, fourCC(dir.ID))
	}
	if dir.Version < Version20 {
		return dir, 0, formatErrorf("directory version %s older than 2.0 is not supported", VersionString(dir.Version))
	}

	count, err := bs.U32()
	if err != nil {
		return dir, 0, err
	}
	if count < 1 {
		return dir, 0, formatErrorf("empty directory")
	}
	if uint64(count)*DirectoryEntrySize > uint64(bs.RemainingSize()) {
		return dir, 0, &BoundsError{
			Offset: uint64(bs.Position()),
			Length: uint64(count) * DirectoryEntrySize,
			Size:   uint64(bs.Size()),
		}
	}
	return dir, count, nil
}

// readEntry reads one 12-byte directory record and resolves the owning
// section id at its data offset. The cursor ends right after the record.
func (p *Parser) readEntry() (DirectoryEntry, error) {
	bs := p.bs
	var e DirectoryEntry
	var err error
	if e.Offset, err = bs.U32(); err != nil {
		return e, err
	}
	if e.Length, err = bs.U32(); err != nil {
		return e, err
	}
	if e.Type, err = bs.U32(); err != nil {
		return e, err
	}

	if !bs.IsValid(e.Offset, 4) {
		return e, bs.boundsError(e.Offset, 4)
	}
	// 偏移必须 4 字节对齐
	if e.Offset%4 != 0 {
		return e, formatErrorf("entry offset %d is not 4-byte aligned", e.Offset)
	}
	if !bs.IsValid(e.Offset, e.Length) {
		return e, bs.boundsError(e.Offset, e.Length)
	}

	err = bs.Peek(e.Offset, func(s *ByteStream) error {
		var err error
		e.SectionID, err = s.U32()
		return err
	})
	return e, err
}

// walk reads count records and dispatches each by type. The first failing
// record aborts the walk.
func (p *Parser) walk(c *Container, count uint32) error {
	c.Directory = make([]DirectoryEntry, 0, count)

	for i := uint32(0); i < count; i++ {
		entry, err := p.readEntry()
		if err != nil {
			return fmt.Errorf("directory entry %d: %w", i, err)
		}
		c.Directory = append(c.Directory, entry)

		if err := p.dispatch(c, entry); err != nil {
			return fmt.Errorf("directory entry %d (%s): %w", i, fourCC(entry.Type), err)
		}
	}
	return nil
}

func (p *Parser) dispatch(c *Container, entry DirectoryEntry) error {
	switch entry.Type {
	case SECi, IMAG, IMAF, IMA2:
		img, err := readImageDescriptor(p.bs, entry)
		if err != nil {
			return err
		}
		debug("x3f image", "type", img.Type, "format", img.Format,
			"width", img.Width, "height", img.Height, "stride", img.RowStride)
		c.Images = append(c.Images, img)

	case SECp, PROP:
		if err := c.Properties.AddProperties(p.bs, entry.Offset); err != nil {
			return err
		}

	case SECc, CAMF:
		camf, err := readCAMF(p.bs, entry)
		if err != nil {
			return err
		}
		c.CAMF = camf

	default:
		debug("x3f: skipping unknown directory entry", "type", fourCC(entry.Type), "offset", entry.Offset)
	}
	return nil
}
