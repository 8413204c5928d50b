package save

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/allape/snapcat/snap/marker"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	require.Equal(t, "ConfigureMorseActivity-SOS", FileName("ConfigureMorseActivity-SOS"))
	require.Equal(t, "a_b_c.d", FileName("a/b c.d"))
	require.Equal(t, "_etc_passwd", FileName("../etc/passwd"))
	require.Equal(t, "", FileName(""))
	require.Equal(t, "", FileName(".."))
}

func TestProcess(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	p := New(dir)

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 0xff})

	meta := marker.Metadata{"name": "home screen", "step": "2"}
	require.NoError(t, p.Process(context.Background(), img, meta))

	file, err := os.Open(filepath.Join(dir, "home_screen.png"))
	require.NoError(t, err)
	defer func() {
		_ = file.Close()
	}()

	decoded, err := png.Decode(file)
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), decoded.Bounds())
	r, g, b, _ := decoded.At(1, 1).RGBA()
	require.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, b >> 8})

	sidecar, err := os.ReadFile(filepath.Join(dir, "home_screen.toml"))
	require.NoError(t, err)

	var stored map[string]string
	require.NoError(t, toml.Unmarshal(sidecar, &stored))
	require.Equal(t, map[string]string(meta), stored)

	require.NoError(t, p.Finish())
}

func TestProcessWithoutName(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	require.NoError(t, p.Process(context.Background(), img, marker.Metadata{}))
	require.NoError(t, p.Process(context.Background(), img, marker.Metadata{}))

	pngs, err := filepath.Glob(filepath.Join(dir, "*.png"))
	require.NoError(t, err)
	require.Len(t, pngs, 2)
}
