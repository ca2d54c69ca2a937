package abr

// sampledWalker walks the 4-byte aligned brush records inside the "samp"
// section of version 6 and 10 files.
type sampledWalker struct {
	variant    uint16
	sectionEnd int64
	next       int64
}

// openSampled scans tagged resource blocks until the sample section is
// found. Blocks are a signature tag, a key tag and a u32 length.
func openSampled(c *Cursor, l Layout) (*sampledWalker, error) {
	for {
		sig, err := c.ReadTag()
		if err != nil {
			return nil, err
		}
		if sig == tag8bim {
			return nil, ErrFound8bim
		}

		key, err := c.ReadTag()
		if err != nil {
			return nil, err
		}
		if key == tagSamp {
			break
		}

		n, err := c.ReadUint32()
		if err != nil {
			return nil, err
		}
		if err := c.Skip(int64(n)); err != nil {
			return nil, err
		}
	}

	n, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	cur := c.Offset()
	return &sampledWalker{
		variant:    l.Variant,
		sectionEnd: cur + int64(n),
		next:       cur,
	}, nil
}

func (w *sampledWalker) exhausted() bool { return w.next >= w.sectionEnd }

func (w *sampledWalker) latch() { w.next = w.sectionEnd }

func (w *sampledWalker) commit(next int64) { w.next = next }

func (w *sampledWalker) locate(c *Cursor) (int64, int64, error) {
	start := w.next
	if err := c.Seek(start); err != nil {
		return start, 0, err
	}
	n, err := c.ReadUint32()
	if err != nil {
		return start, 0, err
	}
	return start, alignUp(start + 4 + int64(n)), nil
}

func (w *sampledWalker) skipSize() int64 {
	if w.variant == 1 {
		return sampledSkipVariant1
	}
	return sampledSkipVariant2
}

func (w *sampledWalker) decodeBody(c *Cursor) (*Image, error) {
	if err := c.Skip(w.skipSize()); err != nil {
		return nil, err
	}

	var box [4]uint32
	var err error
	for i := range box {
		if box[i], err = c.ReadUint32(); err != nil {
			return nil, err
		}
	}
	r := Rect{Top: box[0], Left: box[1], Bottom: box[2], Right: box[3]}

	depth, err := c.ReadUint16()
	if err != nil {
		return nil, err
	}
	if depth != SupportedDepth {
		return nil, &UnsupportedBitDepthError{Depth: depth}
	}
	compressed, err := c.ReadUint8()
	if err != nil {
		return nil, err
	}
	return readSamples(c, r, depth, compressed != 0)
}
