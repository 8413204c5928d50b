package adb

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func screencapHeader(width, height, format uint32, colorSpace bool) []byte {
	header := binary.LittleEndian.AppendUint32(nil, width)
	header = binary.LittleEndian.AppendUint32(header, height)
	header = binary.LittleEndian.AppendUint32(header, format)
	if colorSpace {
		header = binary.LittleEndian.AppendUint32(header, 1)
	}
	return header
}

func TestParseScreencapLegacyHeader(t *testing.T) {
	pixels := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	raw, err := ParseScreencap(append(screencapHeader(2, 1, FormatRGBA8888, false), pixels...))
	require.NoError(t, err)
	require.Equal(t, 2, raw.Width)
	require.Equal(t, 1, raw.Height)
	require.Equal(t, 32, raw.BitsPerPixel)
	require.Equal(t, pixels, raw.Data)
}

func TestParseScreencapColorSpaceHeader(t *testing.T) {
	pixels := []byte{0x00, 0xf8, 0xe0, 0x07}
	raw, err := ParseScreencap(append(screencapHeader(1, 2, FormatRGB565, true), pixels...))
	require.NoError(t, err)
	require.Equal(t, 16, raw.BitsPerPixel)
	require.Equal(t, 11, raw.Red.Offset)
	require.Equal(t, pixels, raw.Data)
}

func TestParseScreencapErrors(t *testing.T) {
	_, err := ParseScreencap([]byte{1, 2, 3})
	require.Error(t, err)

	_, err = ParseScreencap(screencapHeader(1, 1, 42, false))
	require.ErrorContains(t, err, "unsupported")

	_, err = ParseScreencap(append(screencapHeader(2, 2, FormatRGB888, false), 1, 2, 3))
	require.ErrorContains(t, err, "too short")

	require.NotPanics(t, func() {
		_, err = ParseScreencap(append(screencapHeader(0xffffffff, 0xffffffff, FormatRGBA8888, false), make([]byte, 16)...))
	})
	require.ErrorContains(t, err, "too large")
}
