package abr

import (
	"golang.org/x/text/encoding/unicode"
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// legacyWalker walks the flat record list of version 1 and 2 files:
// each record is a u16 length followed by that many body bytes.
type legacyWalker struct {
	version   uint16
	remaining uint16
	next      int64
	skipNames bool
}

func newLegacyWalker(c *Cursor, l Layout, skipNames bool) *legacyWalker {
	return &legacyWalker{
		version:   l.Major,
		remaining: l.Count,
		next:      c.Offset(),
		skipNames: skipNames,
	}
}

func (w *legacyWalker) exhausted() bool { return w.remaining == 0 }

func (w *legacyWalker) latch() { w.remaining = 0 }

func (w *legacyWalker) commit(next int64) { w.next = next }

// locate consumes one slot of the declared count, then reads the record
// length at the current record offset.
func (w *legacyWalker) locate(c *Cursor) (int64, int64, error) {
	w.remaining--
	start := w.next
	if err := c.Seek(start); err != nil {
		return start, 0, err
	}
	n, err := c.ReadUint16()
	if err != nil {
		return start, 0, err
	}
	return start, start + 2 + int64(n), nil
}

func (w *legacyWalker) decodeBody(c *Cursor) (*Image, error) {
	ty, err := c.ReadUint16()
	if err != nil {
		return nil, err
	}
	if ty != BrushTypeSampled {
		return nil, &UnsupportedBrushTypeError{Type: ty}
	}

	// misc (u32) and spacing (u16)
	if err := c.Skip(6); err != nil {
		return nil, err
	}

	var name string
	if w.version == VersionLegacy2 {
		if name, err = w.readName(c); err != nil {
			return nil, err
		}
	}

	// antialiasing flag
	if _, err := c.ReadUint8(); err != nil {
		return nil, err
	}

	var box [4]uint16
	for i := range box {
		if box[i], err = c.ReadUint16(); err != nil {
			return nil, err
		}
	}
	r := Rect{Top: uint32(box[0]), Left: uint32(box[1]), Bottom: uint32(box[2]), Right: uint32(box[3])}

	// The same box again as four u32 values.
	if err := c.Skip(16); err != nil {
		return nil, err
	}

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

	img, err := readSamples(c, r, depth, compressed != 0)
	if err != nil {
		return nil, err
	}
	img.Name = name
	return img, nil
}

// readName consumes a u32 count of UTF-16 code units and the units
// themselves. Long names are skipped rather than decoded.
func (w *legacyWalker) readName(c *Cursor) (string, error) {
	units, err := c.ReadUint32()
	if err != nil {
		return "", err
	}
	size := 2 * int64(units)
	if w.skipNames || units > maxNameUnits {
		return "", c.Skip(size)
	}
	raw, err := c.ReadFull(size)
	if err != nil {
		return "", err
	}
	decoded, err := utf16be.NewDecoder().Bytes(raw)
	if err != nil {
		// The bytes are consumed either way; an undecodable name is dropped.
		return "", nil
	}
	return trimNUL(string(decoded)), nil
}

func trimNUL(s string) string {
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}
