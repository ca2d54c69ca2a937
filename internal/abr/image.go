package abr

import "image"

// Image is one decoded brush.
type Image struct {
	Width  uint32
	Height uint32
	Depth  uint16
	// Data holds Width*Height*(Depth/8) row-major samples.
	Data []byte

	// Name is set for version 2 legacy brushes only.
	Name string
	// Index is the ordinal of the record in the stream.
	Index int
	// Offset is where the record starts.
	Offset int64
}

// Gray returns the samples as an 8-bit greyscale image sharing Data.
func (img *Image) Gray() *image.Gray {
	if img == nil || img.Depth != SupportedDepth {
		return nil
	}
	return &image.Gray{
		Pix:    img.Data,
		Stride: int(img.Width),
		Rect:   image.Rect(0, 0, int(img.Width), int(img.Height)),
	}
}

// sampleSize computes Width*Height*(depth/8), refusing results above
// MaxSampleBytes.
func sampleSize(width, height uint32, depth uint16) (int, error) {
	size := uint64(width) * uint64(height) * uint64(depth>>3)
	if size > MaxSampleBytes {
		return 0, ErrImageTooLarge
	}
	return int(size), nil
}

// readSamples reads the sample payload that closes every brush body:
// bounds are validated, then either RLE or raw samples are read.
func readSamples(c *Cursor, r Rect, depth uint16, compressed bool) (*Image, error) {
	width, err := r.Width()
	if err != nil {
		return nil, err
	}
	height, err := r.Height()
	if err != nil {
		return nil, err
	}
	size, err := sampleSize(width, height, depth)
	if err != nil {
		return nil, err
	}

	var data []byte
	if compressed {
		data, err = DecodeRLE(c, height, size)
		if err != nil {
			return nil, err
		}
		if len(data) != size {
			return nil, &SampleSizeError{Want: size, Got: len(data)}
		}
	} else {
		data, err = c.ReadFull(int64(size))
		if err != nil {
			return nil, err
		}
	}

	return &Image{Width: width, Height: height, Depth: depth, Data: data}, nil
}
