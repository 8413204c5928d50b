package adb

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/allape/snapcat/snap/frame"
)

// pixel formats reported by screencap, see android.graphics.PixelFormat
const (
	FormatRGBA8888 = 1
	FormatRGBX8888 = 2
	FormatRGB888   = 3
	FormatRGB565   = 4
)

const (
	legacyHeaderSize = 12 // width, height, format
	headerSize       = 16 // width, height, format, color space
)

func formatLayout(format uint32) (frame.RawFrame, error) {
	switch format {
	case FormatRGBA8888:
		return frame.RawFrame{
			BitsPerPixel: 32,
			Red:          frame.Channel{Offset: 0, Length: 8},
			Green:        frame.Channel{Offset: 8, Length: 8},
			Blue:         frame.Channel{Offset: 16, Length: 8},
			Alpha:        frame.Channel{Offset: 24, Length: 8},
		}, nil
	case FormatRGBX8888:
		return frame.RawFrame{
			BitsPerPixel: 32,
			Red:          frame.Channel{Offset: 0, Length: 8},
			Green:        frame.Channel{Offset: 8, Length: 8},
			Blue:         frame.Channel{Offset: 16, Length: 8},
		}, nil
	case FormatRGB888:
		return frame.RawFrame{
			BitsPerPixel: 24,
			Red:          frame.Channel{Offset: 0, Length: 8},
			Green:        frame.Channel{Offset: 8, Length: 8},
			Blue:         frame.Channel{Offset: 16, Length: 8},
		}, nil
	case FormatRGB565:
		return frame.RawFrame{
			BitsPerPixel: 16,
			Red:          frame.Channel{Offset: 11, Length: 5},
			Green:        frame.Channel{Offset: 5, Length: 6},
			Blue:         frame.Channel{Offset: 0, Length: 5},
		}, nil
	}
	return frame.RawFrame{}, fmt.Errorf("unsupported screencap pixel format: %d", format)
}

// ParseScreencap reads the raw output of `screencap` (no -p).
// Newer devices append a color space word to the header, the header size
// is picked by whichever makes the payload length add up.
func ParseScreencap(data []byte) (*frame.RawFrame, error) {
	if len(data) < legacyHeaderSize {
		return nil, fmt.Errorf("screencap output too short: %d bytes", len(data))
	}

	width := binary.LittleEndian.Uint32(data[0:4])
	height := binary.LittleEndian.Uint32(data[4:8])
	format := binary.LittleEndian.Uint32(data[8:12])

	raw, err := formatLayout(format)
	if err != nil {
		return nil, err
	}

	raw.Width = int(width)
	raw.Height = int(height)

	if raw.Width < 0 || raw.Height < 0 || (raw.Width > 0 && raw.Height > (math.MaxInt-headerSize)/raw.BytesPerPixel()/raw.Width) {
		return nil, fmt.Errorf("screencap size %dx%d is too large", width, height)
	}

	size := raw.Width * raw.Height * raw.BytesPerPixel()

	switch {
	case len(data) == headerSize+size:
		raw.Data = data[headerSize:]
	case len(data) >= legacyHeaderSize+size:
		raw.Data = data[legacyHeaderSize : legacyHeaderSize+size]
	default:
		return nil, fmt.Errorf("screencap payload too short: expected %d bytes for %dx%d, got %d", size, width, height, len(data)-legacyHeaderSize)
	}

	return &raw, nil
}
