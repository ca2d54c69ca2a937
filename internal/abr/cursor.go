package abr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var be = binary.BigEndian

// Cursor is a big-endian reader over a seekable byte source. It tracks the
// current offset itself so callers can ask for it without a seek.
type Cursor struct {
	rs  io.ReadSeeker
	pos int64
	buf [4]byte
}

// NewCursor wraps rs. The starting offset is taken from rs.
func NewCursor(rs io.ReadSeeker) (*Cursor, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, &IOError{Op: "tell", Err: err}
	}
	return &Cursor{rs: rs, pos: pos}, nil
}

// Offset returns the current absolute offset.
func (c *Cursor) Offset() int64 { return c.pos }

// Seek moves to an absolute offset.
func (c *Cursor) Seek(offset int64) error {
	pos, err := c.rs.Seek(offset, io.SeekStart)
	if err != nil {
		return &IOError{Op: "seek", Offset: offset, Err: err}
	}
	c.pos = pos
	return nil
}

// Skip moves by a signed delta relative to the current offset.
func (c *Cursor) Skip(delta int64) error {
	pos, err := c.rs.Seek(delta, io.SeekCurrent)
	if err != nil {
		return &IOError{Op: "skip", Offset: c.pos, Err: err}
	}
	c.pos = pos
	return nil
}

func (c *Cursor) fill(p []byte, op string) error {
	start := c.pos
	n, err := io.ReadFull(c.rs, p)
	c.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &IOError{Op: op, Offset: start, Err: err}
	}
	return nil
}

// ReadUint8 reads one byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.fill(c.buf[:1], "read u8"); err != nil {
		return 0, err
	}
	return c.buf[0], nil
}

// ReadInt8 reads one byte as a signed value.
func (c *Cursor) ReadInt8() (int8, error) {
	v, err := c.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a big-endian 16-bit value.
func (c *Cursor) ReadUint16() (uint16, error) {
	if err := c.fill(c.buf[:2], "read u16"); err != nil {
		return 0, err
	}
	return be.Uint16(c.buf[:2]), nil
}

// ReadUint32 reads a big-endian 32-bit value.
func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.fill(c.buf[:4], "read u32"); err != nil {
		return 0, err
	}
	return be.Uint32(c.buf[:4]), nil
}

// ReadTag reads four raw bytes.
func (c *Cursor) ReadTag() ([4]byte, error) {
	var tag [4]byte
	err := c.fill(tag[:], "read tag")
	return tag, err
}

// ReadFull reads exactly n bytes. The buffer grows with the data actually
// read, so a bogus length on a short stream fails without allocating n
// bytes up front.
func (c *Cursor) ReadFull(n int64) ([]byte, error) {
	if n < 0 {
		return nil, &IOError{Op: "read", Offset: c.pos, Err: errors.New("negative length")}
	}
	start := c.pos
	var out bytes.Buffer
	if n <= maxSizeHint {
		out.Grow(int(n))
	}
	copied, err := io.CopyN(&out, c.rs, n)
	c.pos += copied
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &IOError{Op: "read", Offset: start, Err: err}
	}
	return out.Bytes(), nil
}
