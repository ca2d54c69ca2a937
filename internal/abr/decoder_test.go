package abr

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/jdeng/goabr/internal/abrtest"
)

func gradient(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i * 7)
	}
	return out
}

func openBytes(t *testing.T, data []byte) (*Decoder, *bytes.Reader) {
	t.Helper()
	r := bytes.NewReader(data)
	d, err := NewDecoder(r, DecoderOptions{})
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	return d, r
}

type item struct {
	img *Image
	err error
}

func drain(t *testing.T, d *Decoder) []item {
	t.Helper()
	var items []item
	for i := 0; i < 1000; i++ {
		img, err := d.Next()
		if err == io.EOF {
			return items
		}
		items = append(items, item{img, err})
	}
	t.Fatal("decoder did not terminate")
	return nil
}

func position(t *testing.T, r *bytes.Reader) int64 {
	t.Helper()
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

func TestNewDecoderLegacyReadsOnlyHeader(t *testing.T) {
	d, r := openBytes(t, abrtest.LegacyWithCount(1, 3))

	layout := d.Layout()
	if layout.Family != FamilyLegacy || layout.Count != 3 {
		t.Fatalf("unexpected layout %+v", layout)
	}
	if pos := position(t, r); pos != headerSize {
		t.Fatalf("expected reader at offset %d after open, got %d", headerSize, pos)
	}
}

func TestNewDecoderSampledScansForSampleSection(t *testing.T) {
	for _, major := range []uint16{VersionSampled6, VersionSampled10} {
		blocks := []abrtest.Block{{Sig: abrtest.Tag("8BIM"), Key: abrtest.Tag("desc"), Data: []byte{1, 2, 3, 4, 5}}}
		data := abrtest.Sampled(major, 1, blocks)
		d, r := openBytes(t, data)

		layout := d.Layout()
		if layout.Family != FamilySampled || layout.Variant != 1 || layout.Major != major {
			t.Fatalf("major %d: unexpected layout %+v", major, layout)
		}
		// header + desc block (12+5) + "8BIMsamp" + section length
		if pos := position(t, r); pos != int64(len(data)) {
			t.Fatalf("major %d: expected scan to end at %d, got %d", major, len(data), pos)
		}
		if !d.Exhausted() {
			t.Fatalf("major %d: empty sample section should be exhausted", major)
		}
	}
}

func TestNewDecoderUnsupportedVersion(t *testing.T) {
	data := []byte{0x00, 0x63, 0x00, 0x07, 0xde, 0xad, 0xbe, 0xef}
	r := bytes.NewReader(data)
	_, err := NewDecoder(r, DecoderOptions{})

	var verErr *UnsupportedVersionError
	if !errors.As(err, &verErr) {
		t.Fatalf("expected *UnsupportedVersionError, got %v", err)
	}
	if verErr.Major != 99 || verErr.Secondary != 7 {
		t.Errorf("unexpected version in error: %d.%d", verErr.Major, verErr.Secondary)
	}
	if pos := position(t, r); pos != headerSize {
		t.Errorf("expected no bytes consumed after header, reader at %d", pos)
	}
}

func TestNewDecoderSampledBadVariant(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte{0, 6, 0, 3}), DecoderOptions{})
	var verErr *UnsupportedVersionError
	if !errors.As(err, &verErr) {
		t.Fatalf("expected *UnsupportedVersionError, got %v", err)
	}
}

func TestNewDecoderShortHeader(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader([]byte{0, 1, 0}), DecoderOptions{})
	if !IsIOError(err) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestNewDecoderFound8bim(t *testing.T) {
	blocks := []abrtest.Block{{Sig: abrtest.Tag("8bim"), Key: abrtest.Tag("patt")}}
	_, err := NewDecoder(bytes.NewReader(abrtest.Sampled(6, 2, blocks)), DecoderOptions{})
	if !errors.Is(err, ErrFound8bim) {
		t.Fatalf("expected ErrFound8bim, got %v", err)
	}
}

func TestNewDecoderMissingSampleSection(t *testing.T) {
	data := []byte{0, 6, 0, 1, '8', 'B', 'I', 'M', 'd', 'e', 's', 'c', 0, 0, 0, 0}
	_, err := NewDecoder(bytes.NewReader(data), DecoderOptions{})
	if !IsIOError(err) {
		t.Fatalf("expected IOError when the scan runs off the end, got %v", err)
	}
}

func TestLegacyDecodeRawAndCompressed(t *testing.T) {
	raw := abrtest.LegacyBrush{Top: 1, Left: 2, Bottom: 4, Right: 7, Samples: gradient(15)}
	rle := abrtest.LegacyBrush{Bottom: 3, Right: 4, Compressed: true, Samples: []byte{5, 5, 5, 5, 1, 2, 3, 4, 9, 9, 9, 0}}
	data := abrtest.Legacy(1, raw.Body(1), rle.Body(1))
	d, _ := openBytes(t, data)

	items := drain(t, d)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for i, it := range items {
		if it.err != nil {
			t.Fatalf("item %d: unexpected error %v", i, it.err)
		}
	}

	first := items[0].img
	if first.Width != 5 || first.Height != 3 || first.Depth != 8 {
		t.Errorf("first brush geometry %dx%d@%d", first.Width, first.Height, first.Depth)
	}
	if !bytes.Equal(first.Data, gradient(15)) {
		t.Errorf("first brush samples mismatch")
	}
	if first.Index != 0 || first.Offset != headerSize {
		t.Errorf("first brush index/offset = %d/%d", first.Index, first.Offset)
	}

	second := items[1].img
	if second.Width != 4 || second.Height != 3 {
		t.Errorf("second brush geometry %dx%d", second.Width, second.Height)
	}
	if !bytes.Equal(second.Data, []byte{5, 5, 5, 5, 1, 2, 3, 4, 9, 9, 9, 0}) {
		t.Errorf("second brush samples mismatch: %v", second.Data)
	}
	if second.Index != 1 {
		t.Errorf("second brush index = %d", second.Index)
	}
}

func TestLegacyVersion2Name(t *testing.T) {
	b := abrtest.LegacyBrush{Name: "Soft Round\x00", Bottom: 1, Right: 2, Samples: []byte{1, 2}}
	d, _ := openBytes(t, abrtest.Legacy(2, b.Body(2)))

	img, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if img.Name != "Soft Round" {
		t.Errorf("Name = %q, want %q", img.Name, "Soft Round")
	}
	if !bytes.Equal(img.Data, []byte{1, 2}) {
		t.Errorf("samples after name mismatch: %v", img.Data)
	}
}

func TestLegacyVersion2SkipNames(t *testing.T) {
	b := abrtest.LegacyBrush{Name: "Hard", Bottom: 1, Right: 1, Samples: []byte{0x80}}
	d, err := NewDecoder(bytes.NewReader(abrtest.Legacy(2, b.Body(2))), DecoderOptions{SkipNames: true})
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	img, err := d.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if img.Name != "" || img.Data[0] != 0x80 {
		t.Errorf("unexpected brush %+v", img)
	}
}

func TestLegacyYieldsDeclaredCount(t *testing.T) {
	good := abrtest.LegacyBrush{Bottom: 2, Right: 2, Samples: []byte{1, 2, 3, 4}}
	badType := abrtest.LegacyBrush{Type: 1}
	badDepth := abrtest.LegacyBrush{Depth: 16, Bottom: 1, Right: 1, Samples: []byte{0, 0}}
	data := abrtest.Legacy(1, good.Body(1), badType.Body(1), badDepth.Body(1), good.Body(1))
	d, _ := openBytes(t, data)

	items := drain(t, d)
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	if items[0].err != nil || items[3].err != nil {
		t.Fatalf("good brushes failed: %v / %v", items[0].err, items[3].err)
	}

	var typeErr *UnsupportedBrushTypeError
	if !errors.As(items[1].err, &typeErr) || typeErr.Type != 1 {
		t.Errorf("item 1: expected UnsupportedBrushTypeError{1}, got %v", items[1].err)
	}
	var depthErr *UnsupportedBitDepthError
	if !errors.As(items[2].err, &depthErr) || depthErr.Depth != 16 {
		t.Errorf("item 2: expected UnsupportedBitDepthError{16}, got %v", items[2].err)
	}
	var brushErr *BrushError
	if !errors.As(items[2].err, &brushErr) || brushErr.Index != 2 {
		t.Errorf("item 2: expected BrushError with index 2, got %v", items[2].err)
	}
	if items[3].img.Index != 3 {
		t.Errorf("last brush index = %d, want 3", items[3].img.Index)
	}
}

func TestLegacyLocateFailureLatches(t *testing.T) {
	// Two brushes declared, but the stream ends right after the header.
	d, _ := openBytes(t, abrtest.LegacyWithCount(1, 2))

	_, err := d.Next()
	if !IsIOError(err) {
		t.Fatalf("first Next: expected IOError, got %v", err)
	}
	if !d.Exhausted() {
		t.Fatal("decoder should be exhausted after a locate failure")
	}
	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("second Next: expected io.EOF, got %v", err)
	}
	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("third Next: expected io.EOF, got %v", err)
	}
}

func TestLegacyLengthPastEnd(t *testing.T) {
	// The record length points past the end: the body fails, then the
	// next record cannot be located.
	data := []byte{0, 1, 0, 2, 0xff, 0xff, 0x00, 0x02}
	d, _ := openBytes(t, data)

	items := drain(t, d)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for i, it := range items {
		if !IsIOError(it.err) {
			t.Errorf("item %d: expected IOError, got %v", i, it.err)
		}
	}
}

func TestLegacyMalformedBounds(t *testing.T) {
	bad := abrtest.LegacyBrush{Top: 5, Bottom: 2, Right: 1, Payload: []byte{}}
	good := abrtest.LegacyBrush{Bottom: 1, Right: 1, Samples: []byte{7}}
	d, _ := openBytes(t, abrtest.Legacy(1, bad.Body(1), good.Body(1)))

	items := drain(t, d)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	var boundsErr *MalformedBoundsError
	if !errors.As(items[0].err, &boundsErr) {
		t.Fatalf("expected MalformedBoundsError, got %v", items[0].err)
	}
	if boundsErr.Rect.Top != 5 || boundsErr.Rect.Bottom != 2 {
		t.Errorf("unexpected rect in error: %+v", boundsErr.Rect)
	}
	if items[1].err != nil || items[1].img.Data[0] != 7 {
		t.Errorf("brush after malformed one: %+v, %v", items[1].img, items[1].err)
	}
}

func TestLegacyCompressedSizeMismatch(t *testing.T) {
	// 2x2 box, row lengths 2 and 0, one repeat run producing only 2 bytes.
	b := abrtest.LegacyBrush{Bottom: 2, Right: 2, Compressed: true, Payload: []byte{0, 2, 0, 0, 0xff, 7}}
	d, _ := openBytes(t, abrtest.Legacy(1, b.Body(1)))

	_, err := d.Next()
	var sizeErr *SampleSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected SampleSizeError, got %v", err)
	}
	if sizeErr.Want != 4 || sizeErr.Got != 2 {
		t.Errorf("unexpected sizes: %+v", sizeErr)
	}
}

func TestLegacyTruncatedRawSamples(t *testing.T) {
	b := abrtest.LegacyBrush{Bottom: 4, Right: 4, Samples: []byte{1, 2, 3}}
	d, _ := openBytes(t, abrtest.Legacy(1, b.Body(1)))

	_, err := d.Next()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after the only brush, got %v", err)
	}
}

func TestSampledDecode(t *testing.T) {
	for _, variant := range []uint16{1, 2} {
		// Odd sizes force padding between records.
		a := abrtest.SampledBrush{Bottom: 1, Right: 3, Samples: []byte{1, 2, 3}}
		b := abrtest.SampledBrush{Top: 10, Left: 10, Bottom: 13, Right: 15, Compressed: true, Samples: gradient(15)}
		data := abrtest.Sampled(VersionSampled6, variant, nil, a.Body(variant), b.Body(variant))
		d, _ := openBytes(t, data)

		items := drain(t, d)
		if len(items) != 2 {
			t.Fatalf("variant %d: expected 2 items, got %d", variant, len(items))
		}
		for i, it := range items {
			if it.err != nil {
				t.Fatalf("variant %d item %d: %v", variant, i, it.err)
			}
			if it.img.Offset%4 != 0 {
				t.Errorf("variant %d item %d: record offset %d not aligned", variant, i, it.img.Offset)
			}
		}
		if !bytes.Equal(items[0].img.Data, []byte{1, 2, 3}) {
			t.Errorf("variant %d: first brush samples %v", variant, items[0].img.Data)
		}
		if items[1].img.Width != 5 || items[1].img.Height != 3 || !bytes.Equal(items[1].img.Data, gradient(15)) {
			t.Errorf("variant %d: second brush mismatch", variant)
		}
	}
}

func TestSampledBodyErrorsDoNotStopIteration(t *testing.T) {
	bad := abrtest.SampledBrush{Depth: 1, Bottom: 1, Right: 1, Samples: []byte{0}}
	under := abrtest.SampledBrush{Left: 9, Right: 1, Bottom: 1, Payload: []byte{}}
	huge := abrtest.SampledBrush{Bottom: 1 << 16, Right: 1 << 16, Payload: []byte{}}
	good := abrtest.SampledBrush{Bottom: 2, Right: 1, Samples: []byte{4, 5}}
	data := abrtest.Sampled(VersionSampled10, 2, nil, bad.Body(2), under.Body(2), huge.Body(2), good.Body(2))
	d, _ := openBytes(t, data)

	items := drain(t, d)
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	var depthErr *UnsupportedBitDepthError
	if !errors.As(items[0].err, &depthErr) {
		t.Errorf("item 0: expected UnsupportedBitDepthError, got %v", items[0].err)
	}
	var boundsErr *MalformedBoundsError
	if !errors.As(items[1].err, &boundsErr) {
		t.Errorf("item 1: expected MalformedBoundsError, got %v", items[1].err)
	}
	if !errors.Is(items[2].err, ErrImageTooLarge) {
		t.Errorf("item 2: expected ErrImageTooLarge, got %v", items[2].err)
	}
	if items[3].err != nil || !bytes.Equal(items[3].img.Data, []byte{4, 5}) {
		t.Errorf("item 3: %+v, %v", items[3].img, items[3].err)
	}
}

func TestSampledStopsAtSectionEnd(t *testing.T) {
	a := abrtest.SampledBrush{Bottom: 1, Right: 1, Samples: []byte{9}}
	data := abrtest.Sampled(VersionSampled6, 1, nil, a.Body(1))
	// Trailing bytes after the section must never be decoded.
	data = append(data, 0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef)
	d, _ := openBytes(t, data)

	items := drain(t, d)
	if len(items) != 1 || items[0].err != nil {
		t.Fatalf("expected exactly one good brush, got %d items", len(items))
	}
}

func TestSampledLocateFailureLatches(t *testing.T) {
	// The section claims 64 bytes but the stream ends after the length.
	data := []byte{0, 6, 0, 1, '8', 'B', 'I', 'M', 's', 'a', 'm', 'p', 0, 0, 0, 64}
	d, _ := openBytes(t, data)

	if _, err := d.Next(); !IsIOError(err) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if _, err := d.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after latch, got %v", err)
	}
}

func TestDecoderAllStopsEarly(t *testing.T) {
	b := abrtest.LegacyBrush{Bottom: 1, Right: 1, Samples: []byte{1}}
	d, _ := openBytes(t, abrtest.Legacy(1, b.Body(1), b.Body(1), b.Body(1)))

	seen := 0
	for img, err := range d.All() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if img.Index != seen {
			t.Fatalf("index %d, want %d", img.Index, seen)
		}
		seen++
		if seen == 2 {
			break
		}
	}
	if d.Index() != 2 {
		t.Fatalf("expected 2 items consumed, got %d", d.Index())
	}
	img, err := d.Next()
	if err != nil || img.Index != 2 {
		t.Fatalf("resuming after break: %+v, %v", img, err)
	}
}

func TestImageGray(t *testing.T) {
	img := &Image{Width: 3, Height: 2, Depth: 8, Data: []byte{0, 1, 2, 3, 4, 5}}
	g := img.Gray()
	if g.Bounds().Dx() != 3 || g.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", g.Bounds())
	}
	if v := g.GrayAt(2, 1).Y; v != 5 {
		t.Errorf("GrayAt(2,1) = %d, want 5", v)
	}
	if (&Image{Depth: 16}).Gray() != nil {
		t.Error("expected nil for non 8-bit image")
	}
}
