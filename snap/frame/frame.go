package frame

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var ErrMalformedFrame = errors.New("malformed frame")

// Channel locates one colour channel inside a little-endian pixel word.
type Channel struct {
	Offset int
	Length int
}

func (c Channel) extract(value uint32) uint8 {
	if c.Length <= 0 {
		return 0
	}

	v := (value >> uint(c.Offset)) & (1<<uint(c.Length) - 1)

	switch {
	case c.Length < 8:
		return uint8(v << uint(8-c.Length))
	case c.Length > 8:
		return uint8(v >> uint(c.Length-8))
	default:
		return uint8(v)
	}
}

// RawFrame is a framebuffer as the device hands it over.
type RawFrame struct {
	Width        int
	Height       int
	BitsPerPixel int

	Red   Channel
	Green Channel
	Blue  Channel
	Alpha Channel

	Data []byte
}

func (r *RawFrame) BytesPerPixel() int {
	return r.BitsPerPixel >> 3
}

// layout returns the channel layout, falling back to RGB565 for 16 bpp
// and byte-ordered RGB(A) for anything wider when no layout was given.
func (r *RawFrame) layout() (red, green, blue Channel) {
	if r.Red.Length != 0 || r.Green.Length != 0 || r.Blue.Length != 0 {
		return r.Red, r.Green, r.Blue
	}

	if r.BitsPerPixel == 16 {
		return Channel{Offset: 11, Length: 5}, Channel{Offset: 5, Length: 6}, Channel{Offset: 0, Length: 5}
	}

	return Channel{Offset: 0, Length: 8}, Channel{Offset: 8, Length: 8}, Channel{Offset: 16, Length: 8}
}

// Decode converts a raw frame into an opaque RGBA image in the same
// row-major order, whatever alpha the device reported.
// Bit depths that are not a multiple of 8 are not supported.
func Decode(raw *RawFrame) (*image.RGBA, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrMalformedFrame)
	}

	if raw.Width < 0 || raw.Height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrMalformedFrame, raw.Width, raw.Height)
	}

	bytesPerPixel := raw.BytesPerPixel()
	if bytesPerPixel < 1 || bytesPerPixel > 4 {
		return nil, fmt.Errorf("%w: unsupported bits per pixel %d", ErrMalformedFrame, raw.BitsPerPixel)
	}

	// the decoded image takes 4 bytes per pixel
	if raw.Width > 0 && raw.Height > math.MaxInt/4/raw.Width {
		return nil, fmt.Errorf("%w: size %dx%d is too large", ErrMalformedFrame, raw.Width, raw.Height)
	}

	expected := raw.Width * raw.Height * bytesPerPixel
	if len(raw.Data) < expected {
		return nil, fmt.Errorf("%w: expected %d bytes for %dx%d@%d, got %d", ErrMalformedFrame, expected, raw.Width, raw.Height, raw.BitsPerPixel, len(raw.Data))
	}

	red, green, blue := raw.layout()

	img := image.NewRGBA(image.Rect(0, 0, raw.Width, raw.Height))

	index := 0
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			var value uint32
			for i := 0; i < bytesPerPixel; i++ {
				value |= uint32(raw.Data[index+i]) << uint(8*i)
			}

			offset := img.PixOffset(x, y)
			img.Pix[offset] = red.extract(value)
			img.Pix[offset+1] = green.extract(value)
			img.Pix[offset+2] = blue.extract(value)
			img.Pix[offset+3] = 0xff

			index += bytesPerPixel
		}
	}

	return img, nil
}
