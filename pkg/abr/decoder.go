package abr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"iter"

	"github.com/jdeng/goabr/internal/abr"
)

// Options configures ABR decoding behavior.
type Options struct {
	// SkipNames seeks over version 2 brush names instead of decoding them.
	SkipNames bool
}

// Errors returned by Open and Decoder.Next. Use errors.Is and errors.As to
// branch on them; per-brush errors arrive wrapped in a *BrushError.
var (
	ErrFound8bim     = abr.ErrFound8bim
	ErrImageTooLarge = abr.ErrImageTooLarge
)

type (
	UnsupportedVersionError   = abr.UnsupportedVersionError
	UnsupportedBrushTypeError = abr.UnsupportedBrushTypeError
	UnsupportedBitDepthError  = abr.UnsupportedBitDepthError
	MalformedBoundsError      = abr.MalformedBoundsError
	SampleSizeError           = abr.SampleSizeError
	IOError                   = abr.IOError
	BrushError                = abr.BrushError
	Rect                      = abr.Rect
)

// Decoder enumerates the brushes of one ABR stream.
type Decoder struct {
	decoder *abr.Decoder
}

// Open reads the ABR header from r and prepares brush enumeration. The
// decoder owns r until enumeration stops.
func Open(r io.ReadSeeker, opts Options) (*Decoder, error) {
	internalDecoder, err := abr.NewDecoder(r, abr.DecoderOptions{SkipNames: opts.SkipNames})
	if err != nil {
		return nil, err
	}
	return &Decoder{decoder: internalDecoder}, nil
}

// OpenBytes is Open over an in-memory ABR file.
func OpenBytes(data []byte, opts Options) (*Decoder, error) {
	if len(data) == 0 {
		return nil, errors.New("abr: empty source data")
	}
	return Open(bytes.NewReader(data), opts)
}

// Next returns the next brush, or io.EOF when none remain. Other errors
// concern a single brush; keep calling Next to continue with the rest.
func (d *Decoder) Next() (*Brush, error) {
	img, err := d.decoder.Next()
	if err != nil {
		return nil, err
	}
	return &Brush{img: img}, nil
}

// All iterates over the remaining brushes.
func (d *Decoder) All() iter.Seq2[*Brush, error] {
	return func(yield func(*Brush, error) bool) {
		for img, err := range d.decoder.All() {
			var b *Brush
			if img != nil {
				b = &Brush{img: img}
			}
			if !yield(b, err) {
				return
			}
		}
	}
}

// Format returns the parsed file header.
func (d *Decoder) Format() Format {
	l := d.decoder.Layout()
	return Format{
		Major:     l.Major,
		Secondary: l.Secondary,
		Family:    Family(l.Family),
		Count:     l.Count,
		Variant:   l.Variant,
	}
}

// Count returns the number of items produced so far.
func (d *Decoder) Count() int { return d.decoder.Index() }

// Format describes the header of an ABR file.
type Format struct {
	Major     uint16
	Secondary uint16
	Family    Family
	// Count is the declared number of brushes (legacy files only).
	Count uint16
	// Variant is the sub-variant selector (sampled files only).
	Variant uint16
}

func (f Format) String() string {
	switch f.Family {
	case FamilyLegacy:
		return fmt.Sprintf("ABR v%d, %d brushes", f.Major, f.Count)
	case FamilySampled:
		return fmt.Sprintf("ABR v%d.%d", f.Major, f.Variant)
	default:
		return fmt.Sprintf("ABR %d.%d", f.Major, f.Secondary)
	}
}

// Family identifies the record layout of an ABR file.
type Family int

const (
	// FamilyLegacy covers versions 1 and 2: flat length-prefixed records.
	FamilyLegacy Family = Family(abr.FamilyLegacy)
	// FamilySampled covers versions 6 and 10: aligned records in a "samp" section.
	FamilySampled Family = Family(abr.FamilySampled)
)

func (f Family) String() string {
	return abr.Family(f).String()
}

// Brush is a decoded brush image.
type Brush struct {
	img *abr.Image
}

// Width returns the brush width in pixels.
func (b *Brush) Width() int {
	if b == nil || b.img == nil {
		return 0
	}
	return int(b.img.Width)
}

// Height returns the brush height in pixels.
func (b *Brush) Height() int {
	if b == nil || b.img == nil {
		return 0
	}
	return int(b.img.Height)
}

// Depth returns the sample bit depth.
func (b *Brush) Depth() int {
	if b == nil || b.img == nil {
		return 0
	}
	return int(b.img.Depth)
}

// Data returns the raw row-major samples.
func (b *Brush) Data() []byte {
	if b == nil || b.img == nil {
		return nil
	}
	return b.img.Data
}

// Name returns the brush name, if the file stores one.
func (b *Brush) Name() string {
	if b == nil || b.img == nil {
		return ""
	}
	return b.img.Name
}

// Index returns the position of the brush in the file.
func (b *Brush) Index() int {
	if b == nil || b.img == nil {
		return -1
	}
	return b.img.Index
}

// Offset returns the byte offset of the brush record.
func (b *Brush) Offset() int64 {
	if b == nil || b.img == nil {
		return -1
	}
	return b.img.Offset
}

// Gray returns the brush as a greyscale image sharing the sample buffer.
func (b *Brush) Gray() *image.Gray {
	if b == nil || b.img == nil {
		return nil
	}
	return b.img.Gray()
}
