package x3f

// readImageDescriptor parses the 28-byte SECi header of an image entry.
func readImageDescriptor(bs *ByteStream, entry DirectoryEntry) (ImageDescriptor, error) {
	var d ImageDescriptor
	if entry.Length < ImageHeaderSize {
		return d, formatErrorf("image section too short: %d bytes", entry.Length)
	}

	err := bs.Peek(entry.Offset, func(s *ByteStream) error {
		sh, err := readSectionHeader(s)
		if err != nil {
			return err
		}
		if sh.ID != SECi {
			return formatErrorf("invalid image section identifier 0x%08x", sh.ID)
		}
		d.SectionHeader = sh
		for _, dst := range []*uint32{&d.Type, &d.Format, &d.Width, &d.Height, &d.RowStride} {
			if *dst, err = s.U32(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return d, err
	}

	d.DataOffset = entry.Offset + ImageHeaderSize
	d.DataLength = entry.Length - ImageHeaderSize
	return d, nil
}

// RawImage returns the largest non-preview image, or false if the
// container only carries previews.
func (c *Container) RawImage() (ImageDescriptor, bool) {
	var best ImageDescriptor
	found := false
	for _, img := range c.Images {
		if img.IsPreview() {
			continue
		}
		if !found || uint64(img.Width)*uint64(img.Height) > uint64(best.Width)*uint64(best.Height) {
			best = img
			found = true
		}
	}
	return best, found
}

// ImageData returns the payload bytes of an image section, borrowed from
// data (the buffer the container was parsed from).
func (d ImageDescriptor) ImageData(data []byte) ([]byte, error) {
	return NewByteStream(data).GetData(d.DataOffset, d.DataLength)
}
