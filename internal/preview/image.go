package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/cuts/internal/media"
)

const (
	DefaultMaxWidth = 320
	DefaultQuality  = 85
)

// ImageThumbnailer decodes an image and re-encodes it as a small JPEG.
type ImageThumbnailer struct {
	MaxWidth int
	Quality  int
}

func NewImageThumbnailer(maxWidth, quality int) *ImageThumbnailer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &ImageThumbnailer{MaxWidth: maxWidth, Quality: quality}
}

func (t *ImageThumbnailer) Generate(_ context.Context, f media.File) (*media.Preview, error) {
	img, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Name, err)
	}
	return t.FromImage(img)
}

// FromImage scales img down to MaxWidth and encodes it.
func (t *ImageThumbnailer) FromImage(img image.Image) (*media.Preview, error) {
	scaled := Scale(img, t.MaxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: t.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &media.Preview{MediaType: "image/jpeg", Data: buf.Bytes()}, nil
}

// Scale fits img into maxWidth keeping its aspect ratio. Smaller images are
// returned as they are.
func Scale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth || b.Dx() == 0 {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// TooDark reports whether the top-left 64x64 sample of img has a mean
// luma below 8.
func TooDark(img image.Image) bool {
	b := img.Bounds()
	w, h := min(64, b.Dx()), min(64, b.Dy())
	if w == 0 || h == 0 {
		return true
	}
	var sum float64
	for y := b.Min.Y; y < b.Min.Y+h; y++ {
		for x := b.Min.X; x < b.Min.X+w; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			sum += float64(r>>8)*0.2126 + float64(g>>8)*0.7152 + float64(bl>>8)*0.0722
		}
	}
	return sum/float64(w*h) < 8
}
