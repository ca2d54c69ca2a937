package abr

// DecodeRLE reads height big-endian row lengths followed by PackBits data
// and returns the unpacked samples.
//
// Row lengths are summed into one boundary and the rows are decoded as a
// single run; no per-row output limit is enforced. sizeHint only sizes the
// initial output buffer.
func DecodeRLE(c *Cursor, height uint32, sizeHint int) ([]byte, error) {
	var total uint64
	for i := uint32(0); i < height; i++ {
		n, err := c.ReadUint16()
		if err != nil {
			return nil, err
		}
		total += uint64(n)
	}

	if sizeHint < 0 {
		sizeHint = 0
	}
	if sizeHint > maxSizeHint {
		sizeHint = maxSizeHint
	}
	dst := make([]byte, 0, sizeHint)

	var lit [128]byte
	var consumed uint64
	for consumed < total {
		n, err := c.ReadInt8()
		if err != nil {
			return nil, err
		}
		consumed++
		switch {
		case n == -128:
			// No-op.
		case n < 0:
			b, err := c.ReadUint8()
			if err != nil {
				return nil, err
			}
			consumed++
			for j := 0; j < 1-int(n); j++ {
				dst = append(dst, b)
			}
		default:
			count := int(n) + 1
			if err := c.fill(lit[:count], "read rle literal"); err != nil {
				return nil, err
			}
			consumed += uint64(count)
			dst = append(dst, lit[:count]...)
		}
	}
	return dst, nil
}
