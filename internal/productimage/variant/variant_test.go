package variant

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestProcessFitsEachSpec(t *testing.T) {
	set, err := Process(pngBytes(t, 1600, 900), OriginalQuality)
	require.NoError(t, err)

	w, h := decodeSize(t, set.Original)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 900, h)

	w, h = decodeSize(t, set.Variants["thumbnail"])
	assert.Equal(t, 150, w)
	assert.Equal(t, 84, h)

	w, h = decodeSize(t, set.Variants["medium"])
	assert.Equal(t, 400, w)
	assert.Equal(t, 225, h)

	w, h = decodeSize(t, set.Variants["large"])
	assert.Equal(t, 800, w)
	assert.Equal(t, 450, h)
}

func TestFitNeverUpscales(t *testing.T) {
	set, err := Process(pngBytes(t, 300, 200), OriginalQuality)
	require.NoError(t, err)

	w, h := decodeSize(t, set.Variants["large"])
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)

	w, h = decodeSize(t, set.Variants["thumbnail"])
	assert.Equal(t, 150, w)
	assert.Equal(t, 100, h)
}

func TestFitPortrait(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 500, 1000))
	out := Fit(img, 400)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 400, out.Bounds().Dy())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Process([]byte("not an image"), OriginalQuality)
	assert.ErrorIs(t, err, ErrUnsupported)
}
