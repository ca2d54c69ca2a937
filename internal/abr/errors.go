package abr

import (
	"errors"
	"fmt"
)

var (
	// ErrFound8bim is returned by Open when the resource scan meets an
	// "8bim" block before the sample section.
	ErrFound8bim = errors.New("abr: found 8bim")

	// ErrImageTooLarge reports a brush whose sample buffer would exceed
	// MaxSampleBytes.
	ErrImageTooLarge = errors.New("abr: image too large")
)

// UnsupportedVersionError reports a header that matches no known layout.
type UnsupportedVersionError struct {
	Major     uint16
	Secondary uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("abr: unknown/unsupported version: %d.%d", e.Major, e.Secondary)
}

// UnsupportedBrushTypeError reports a legacy record that is not a sampled brush.
type UnsupportedBrushTypeError struct {
	Type uint16
}

func (e *UnsupportedBrushTypeError) Error() string {
	return fmt.Sprintf("abr: unsupported brush type: %d", e.Type)
}

// UnsupportedBitDepthError reports a sample depth other than 8.
type UnsupportedBitDepthError struct {
	Depth uint16
}

func (e *UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("abr: unsupported bit-depth, %d-bit", e.Depth)
}

// MalformedBoundsError reports a bounding box with a negative extent.
type MalformedBoundsError struct {
	Rect Rect
}

func (e *MalformedBoundsError) Error() string {
	r := e.Rect
	return fmt.Sprintf("abr: malformed bounds: top=%d left=%d bottom=%d right=%d",
		r.Top, r.Left, r.Bottom, r.Right)
}

// SampleSizeError reports decompressed samples that do not fill the
// bounding box exactly.
type SampleSizeError struct {
	Want int
	Got  int
}

func (e *SampleSizeError) Error() string {
	return fmt.Sprintf("abr: sample size mismatch: got %d bytes, want %d", e.Got, e.Want)
}

// IOError wraps a read or seek failure with the offset it happened at.
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("abr: read error: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// BrushError carries the failure of a single brush together with its
// position in the stream.
type BrushError struct {
	Index  int
	Offset int64
	Err    error
}

func (e *BrushError) Error() string {
	return fmt.Sprintf("brush #%d at offset %d: %v", e.Index, e.Offset, e.Err)
}

func (e *BrushError) Unwrap() error { return e.Err }

// IsIOError reports whether err is, or wraps, an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
