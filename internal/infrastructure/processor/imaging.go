package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	// registers the webp decoder with image.Decode
	_ "golang.org/x/image/webp"
)

const (
	previewSize    = 320
	captionPadding = 4
	maxCaptionLen  = 48
	jpegQuality    = 80
)

var captionBand = color.NRGBA{A: 160}

type ImageProcessor struct{}

func New() *ImageProcessor {
	return &ImageProcessor{}
}

// Preview fits the photo into a square box and stamps caption along the bottom edge.
func (p *ImageProcessor) Preview(ctx context.Context, contentType string, data []byte, caption string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ImageProcessor - Preview: %w", err)
	}

	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - Preview - decodeImage: %w", err)
	}

	fitted := imaging.Fit(img, previewSize, previewSize, imaging.Lanczos)

	canvas := imaging.Clone(fitted)
	stampCaption(canvas, caption)

	res, err := encodeJPEG(canvas)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - Preview - encodeJPEG: %w", err)
	}

	return res, nil
}

func stampCaption(dst *image.NRGBA, caption string) {
	caption = truncate(caption, maxCaptionLen)
	if caption == "" {
		return
	}

	face := basicfont.Face7x13
	bounds := dst.Bounds()
	bandHeight := face.Height + 2*captionPadding

	band := image.Rect(bounds.Min.X, bounds.Max.Y-bandHeight, bounds.Max.X, bounds.Max.Y)
	draw.Draw(dst, band, image.NewUniform(captionBand), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	d.Dot = fixed.P(
		bounds.Min.X+captionPadding,
		bounds.Max.Y-captionPadding-face.Descent,
	)

	d.DrawString(caption)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-3]) + "..."
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - decodeImage - imaging.Decode: %w", err)
	}

	return img, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - encodeJPEG - imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}
