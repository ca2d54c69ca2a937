// Package source opens ABR inputs for decoding. Plain files are used as
// they are; gzip and zstd wrapped files are unpacked into memory so the
// decoder still gets a seekable stream.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxUnwrappedSize bounds the decompressed size of a wrapped input.
const MaxUnwrappedSize = 1 << 30

// ErrTooLarge is returned when a wrapped input decompresses past
// MaxUnwrappedSize.
var ErrTooLarge = errors.New("source: decompressed input too large")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Kind is the container an input was found in.
type Kind int

const (
	KindPlain Kind = iota
	KindGzip
	KindZstd
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindGzip:
		return "gzip"
	case KindZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sniff classifies the first bytes of an input.
func Sniff(head []byte) Kind {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return KindZstd
	case bytes.HasPrefix(head, gzipMagic):
		return KindGzip
	default:
		return KindPlain
	}
}

// File is an opened input.
type File struct {
	io.ReadSeeker
	Kind   Kind
	closer io.Closer
}

// Close releases the underlying file, if one is still open.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Open opens path and unwraps it when it is gzip or zstd compressed.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	head := make([]byte, len(zstdMagic))
	n, err := f.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("source: sniff %s: %w", path, err)
	}

	kind := Sniff(head[:n])
	if kind == KindPlain {
		return &File{ReadSeeker: f, Kind: kind, closer: f}, nil
	}
	defer f.Close()

	data, err := Unwrap(f, kind)
	if err != nil {
		return nil, fmt.Errorf("source: unwrap %s: %w", path, err)
	}
	return &File{ReadSeeker: bytes.NewReader(data), Kind: kind}, nil
}

// Unwrap decompresses r according to kind.
func Unwrap(r io.Reader, kind Kind) ([]byte, error) {
	switch kind {
	case KindPlain:
		return readLimited(r)
	case KindGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readLimited(zr)
	case KindZstd:
		dec, err := zstd.NewReader(r,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(MaxUnwrappedSize),
		)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return readLimited(dec)
	default:
		return nil, fmt.Errorf("source: unknown kind %v", kind)
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUnwrappedSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUnwrappedSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// TrimExt strips the compression suffix and then the ABR extension from
// name, so "brushes.abr.zst" becomes "brushes".
func TrimExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".gz", ".zst", ".zstd"} {
		if strings.HasSuffix(lower, ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 && !strings.ContainsAny(name[i:], `/\`) {
		name = name[:i]
	}
	return name
}
