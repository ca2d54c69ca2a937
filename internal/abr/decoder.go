package abr

import (
	"io"
	"iter"
)

// DecoderOptions configures ABR decoding behavior.
type DecoderOptions struct {
	// SkipNames seeks over version 2 brush names instead of decoding them.
	SkipNames bool
}

// walker is the per-layout half of the iteration protocol. Decoder.Next
// drives it: locate, latch on failure, commit, then decode the body.
type walker interface {
	exhausted() bool
	// locate positions the cursor at the start of the next body and
	// returns the record offset and the offset of the record after it.
	locate(c *Cursor) (start, next int64, err error)
	commit(next int64)
	// latch makes exhausted report true from now on.
	latch()
	decodeBody(c *Cursor) (*Image, error)
}

// Decoder lazily enumerates the brushes of one ABR stream. It is not
// restartable and not safe for concurrent use.
type Decoder struct {
	c      *Cursor
	layout Layout
	w      walker
	index  int
}

// NewDecoder reads the header from rs and prepares the matching record
// walker. Sampled streams are scanned up to the start of their sample
// section; legacy streams are not read past the header.
func NewDecoder(rs io.ReadSeeker, opts DecoderOptions) (*Decoder, error) {
	c, err := NewCursor(rs)
	if err != nil {
		return nil, err
	}
	h, err := readHeader(c)
	if err != nil {
		return nil, err
	}
	layout, err := ParseLayout(h)
	if err != nil {
		return nil, err
	}

	d := &Decoder{c: c, layout: layout}
	switch layout.Family {
	case FamilyLegacy:
		d.w = newLegacyWalker(c, layout, opts.SkipNames)
	case FamilySampled:
		w, err := openSampled(c, layout)
		if err != nil {
			return nil, err
		}
		d.w = w
	}
	return d, nil
}

// Layout returns the parsed header.
func (d *Decoder) Layout() Layout { return d.layout }

// Index returns the number of items produced so far.
func (d *Decoder) Index() int { return d.index }

// Exhausted reports whether Next would return io.EOF.
func (d *Decoder) Exhausted() bool { return d.w.exhausted() }

// Next decodes the next brush. It returns io.EOF when no brushes remain.
//
// Any other error is a *BrushError. If the record itself could not be
// located the sequence ends after that error; a failure inside a located
// record's body does not stop iteration.
func (d *Decoder) Next() (*Image, error) {
	if d.w.exhausted() {
		return nil, io.EOF
	}
	idx := d.index
	d.index++

	start, next, err := d.w.locate(d.c)
	if err != nil {
		d.w.latch()
		return nil, &BrushError{Index: idx, Offset: start, Err: err}
	}
	d.w.commit(next)

	img, err := d.w.decodeBody(d.c)
	if err != nil {
		return nil, &BrushError{Index: idx, Offset: start, Err: err}
	}
	img.Index = idx
	img.Offset = start
	return img, nil
}

// All returns an iterator over the remaining items. Each step yields
// either an image or a per-brush error.
func (d *Decoder) All() iter.Seq2[*Image, error] {
	return func(yield func(*Image, error) bool) {
		for {
			img, err := d.Next()
			if err == io.EOF {
				return
			}
			if !yield(img, err) {
				return
			}
		}
	}
}
