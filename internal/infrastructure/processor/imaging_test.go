package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestImageProcessor_Preview(t *testing.T) {
	t.Parallel()

	out, err := New().Preview(context.Background(), "image/png", pngBytes(t, 1280, 640), "lat=18.52 lon=73.85 2025-10-18T09:12:00Z")
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, previewSize, cfg.Width)
	assert.Equal(t, previewSize/2, cfg.Height)
}

func TestImageProcessor_PreviewKeepsSmallImages(t *testing.T) {
	t.Parallel()

	out, err := New().Preview(context.Background(), "image/png", pngBytes(t, 100, 80), "")
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 80, cfg.Height)
}

func TestImageProcessor_PreviewRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := New().Preview(context.Background(), "image/png", []byte("not an image"), "x")
	assert.Error(t, err)
}

func TestImageProcessor_PreviewCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Preview(ctx, "image/png", pngBytes(t, 10, 10), "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
