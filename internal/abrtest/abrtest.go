// Package abrtest assembles synthetic ABR streams for tests.
package abrtest

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

var be = binary.BigEndian

// PackBits compresses data with literal and repeat runs of at most 128
// bytes. Runs of two or more equal bytes become repeat runs.
func PackBits(data []byte) []byte {
	var buf bytes.Buffer
	i := 0
	for i < len(data) {
		runLen := 1
		for i+runLen < len(data) && runLen < 128 && data[i+runLen] == data[i] {
			runLen++
		}
		if runLen > 1 {
			buf.WriteByte(byte(int8(-(runLen - 1))))
			buf.WriteByte(data[i])
			i += runLen
			continue
		}

		litLen := 1
		for i+litLen < len(data) && litLen < 128 {
			if i+litLen+1 < len(data) && data[i+litLen] == data[i+litLen+1] {
				break
			}
			litLen++
		}
		buf.WriteByte(byte(litLen - 1))
		buf.Write(data[i : i+litLen])
		i += litLen
	}
	return buf.Bytes()
}

// RLE builds the compressed sample payload for rows of width bytes: one
// u16 encoded length per row followed by every encoded row.
func RLE(samples []byte, width int) []byte {
	if width <= 0 {
		return nil
	}
	var lens, body bytes.Buffer
	for off := 0; off < len(samples); off += width {
		end := off + width
		if end > len(samples) {
			end = len(samples)
		}
		row := PackBits(samples[off:end])
		_ = binary.Write(&lens, be, uint16(len(row)))
		body.Write(row)
	}
	lens.Write(body.Bytes())
	return lens.Bytes()
}

// LegacyBrush describes one record body of a version 1 or 2 stream.
type LegacyBrush struct {
	Type uint16
	// Name is written for version 2 streams only.
	Name       string
	Top        uint16
	Left       uint16
	Bottom     uint16
	Right      uint16
	Depth      uint16
	Compressed bool
	// Samples are raw row-major samples; they are RLE-encoded when
	// Compressed is set unless Payload is given.
	Samples []byte
	// Payload, when non-nil, is written verbatim after the compression flag.
	Payload []byte
}

// Body encodes the record body (without its u16 length prefix).
func (b LegacyBrush) Body(version uint16) []byte {
	var buf bytes.Buffer
	ty := b.Type
	if ty == 0 {
		ty = 2
	}
	_ = binary.Write(&buf, be, ty)
	_ = binary.Write(&buf, be, uint32(0))  // misc
	_ = binary.Write(&buf, be, uint16(25)) // spacing
	if version == 2 {
		units := utf16Units(b.Name)
		_ = binary.Write(&buf, be, uint32(len(units)/2))
		buf.Write(units)
	}
	buf.WriteByte(1) // antialiasing
	for _, v := range []uint16{b.Top, b.Left, b.Bottom, b.Right} {
		_ = binary.Write(&buf, be, v)
	}
	for _, v := range []uint16{b.Top, b.Left, b.Bottom, b.Right} {
		_ = binary.Write(&buf, be, uint32(v))
	}
	_ = binary.Write(&buf, be, depthOrDefault(b.Depth))
	writeSamples(&buf, b.Compressed, b.Samples, b.Payload, int(b.Right)-int(b.Left))
	return buf.Bytes()
}

// Legacy assembles a version 1 or 2 stream declaring len(bodies) brushes.
func Legacy(version uint16, bodies ...[]byte) []byte {
	return LegacyWithCount(version, uint16(len(bodies)), bodies...)
}

// LegacyWithCount assembles a legacy stream whose header declares count
// brushes regardless of how many bodies follow.
func LegacyWithCount(version, count uint16, bodies ...[]byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, be, version)
	_ = binary.Write(&buf, be, count)
	for _, body := range bodies {
		_ = binary.Write(&buf, be, uint16(len(body)))
		buf.Write(body)
	}
	return buf.Bytes()
}

// SampledBrush describes one record body of a version 6 or 10 stream.
type SampledBrush struct {
	Top        uint32
	Left       uint32
	Bottom     uint32
	Right      uint32
	Depth      uint16
	Compressed bool
	Samples    []byte
	Payload    []byte
}

// Body encodes the record body, including the opaque prefix for variant.
func (b SampledBrush) Body(variant uint16) []byte {
	var buf bytes.Buffer
	skip := 301
	if variant == 1 {
		skip = 47
	}
	buf.Write(make([]byte, skip))
	for _, v := range []uint32{b.Top, b.Left, b.Bottom, b.Right} {
		_ = binary.Write(&buf, be, v)
	}
	_ = binary.Write(&buf, be, depthOrDefault(b.Depth))
	writeSamples(&buf, b.Compressed, b.Samples, b.Payload, int(b.Right)-int(b.Left))
	return buf.Bytes()
}

// Block is a tagged resource block placed before the sample section.
type Block struct {
	Sig  [4]byte
	Key  [4]byte
	Data []byte
}

// Sampled assembles a version 6 or 10 stream: the header, the given
// blocks, then a "samp" section holding bodies as 4-byte aligned records.
func Sampled(major, variant uint16, blocks []Block, bodies ...[]byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, be, major)
	_ = binary.Write(&buf, be, variant)
	for _, blk := range blocks {
		buf.Write(blk.Sig[:])
		buf.Write(blk.Key[:])
		_ = binary.Write(&buf, be, uint32(len(blk.Data)))
		buf.Write(blk.Data)
	}
	buf.WriteString("8BIMsamp")

	base := int64(buf.Len()) + 4
	var section bytes.Buffer
	for _, body := range bodies {
		_ = binary.Write(&section, be, uint32(len(body)))
		section.Write(body)
		for (base+int64(section.Len()))%4 != 0 {
			section.WriteByte(0)
		}
	}
	_ = binary.Write(&buf, be, uint32(section.Len()))
	buf.Write(section.Bytes())
	return buf.Bytes()
}

// Tag converts a four character string to a block tag.
func Tag(s string) [4]byte {
	var t [4]byte
	copy(t[:], s)
	return t
}

func depthOrDefault(d uint16) uint16 {
	if d == 0 {
		return 8
	}
	return d
}

func writeSamples(buf *bytes.Buffer, compressed bool, samples, payload []byte, width int) {
	if compressed {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	switch {
	case payload != nil:
		buf.Write(payload)
	case compressed:
		buf.Write(RLE(samples, width))
	default:
		buf.Write(samples)
	}
}

func utf16Units(s string) []byte {
	out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return out
}
