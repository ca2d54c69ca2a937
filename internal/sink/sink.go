// Package sink writes decoded greyscale samples to image files.
package sink

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// BadBitDepthError reports a sample depth the sink cannot represent.
type BadBitDepthError struct {
	Depth uint16
}

func (e *BadBitDepthError) Error() string {
	return fmt.Sprintf("sink: unsupported bit depth %d", e.Depth)
}

// ShortBufferError reports fewer samples than the geometry requires.
type ShortBufferError struct {
	Want int
	Got  int
}

func (e *ShortBufferError) Error() string {
	return fmt.Sprintf("sink: sample buffer too short: got %d bytes, want %d", e.Got, e.Want)
}

// Format selects the output file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("sink: unknown format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w.
func (f Format) Encode(w io.Writer, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("sink: unknown format %q", string(f))
	}
}

// Raster wraps samples as a greyscale image. Depths 1, 2 and 4 are
// packed MSB first with rows padded to a byte and are scaled to 8 bits;
// depth 16 is big-endian.
func Raster(samples []byte, width, height uint32, depth uint16) (image.Image, error) {
	switch depth {
	case 1, 2, 4, 8, 16:
	default:
		return nil, &BadBitDepthError{Depth: depth}
	}
	if width == 0 || height == 0 {
		return nil, errors.New("sink: empty image")
	}

	w, h := int(width), int(height)
	stride := (w*int(depth) + 7) / 8
	if need := stride * h; len(samples) < need {
		return nil, &ShortBufferError{Want: need, Got: len(samples)}
	}
	rect := image.Rect(0, 0, w, h)

	switch depth {
	case 8:
		return &image.Gray{Pix: samples[:stride*h], Stride: stride, Rect: rect}, nil
	case 16:
		return &image.Gray16{Pix: samples[:stride*h], Stride: stride, Rect: rect}, nil
	}

	img := image.NewGray(rect)
	maxVal := byte(1<<depth - 1)
	perByte := 8 / int(depth)
	for y := 0; y < h; y++ {
		row := samples[y*stride : (y+1)*stride]
		for x := 0; x < w; x++ {
			shift := uint(8 - int(depth)*(x%perByte+1))
			v := (row[x/perByte] >> shift) & maxVal
			img.Pix[y*img.Stride+x] = v * (255 / maxVal)
		}
	}
	return img, nil
}

// Save writes samples to path in format f.
func Save(path string, f Format, samples []byte, width, height uint32, depth uint16) error {
	img, err := Raster(samples, width, height, depth)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
