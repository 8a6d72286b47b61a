package caption

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

var (
	barColor         = color.NRGBA{R: 50, G: 50, B: 50, A: 140}
	placeholderColor = color.RGBA{R: 0x3c, G: 0x3c, B: 0x3c, A: 0xff}
	slateColor       = color.RGBA{R: 0x14, G: 0x14, B: 0x14, A: 0xff}
)

// Painter draws video frames of a fixed size: letterboxed stills, the
// caption bar, placeholders for empty cuts and the slate card.
type Painter struct {
	Width, Height int
	FontSize      float64
	FontName      string
	faces         faceSource
}

// NewPainter loads the caption font. A zero size scales with the frame
// height.
func NewPainter(width, height int, fontPath string, size float64) (*Painter, error) {
	faces, name, err := resolveFont(fontPath)
	if err != nil {
		return nil, fmt.Errorf("caption.NewPainter: %w", err)
	}
	if size <= 0 {
		size = float64(height) / 24
	}
	return &Painter{Width: width, Height: height, FontSize: size, FontName: name, faces: faces}, nil
}

func (p *Painter) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// BarRect is where the caption bar goes: top edge at two thirds of the
// frame height, at least 60px tall.
func (p *Painter) BarRect() image.Rectangle {
	h := p.Height / 6
	if h < 60 {
		h = 60
	}
	top := p.Height * 2 / 3
	bottom := top + h
	if bottom > p.Height {
		bottom = p.Height
	}
	return image.Rect(0, top, p.Width, bottom)
}

// Compose letterboxes img on black into dst and draws the caption over it.
// dst must match the painter size.
func (p *Painter) Compose(dst *image.RGBA, img image.Image, text string) {
	Fill(dst, color.Black)
	Letterbox(dst, img)
	p.DrawCaption(dst, text)
}

// Placeholder paints the frame used for cuts without media.
func (p *Painter) Placeholder(dst *image.RGBA, text string) {
	Fill(dst, placeholderColor)
	p.DrawCaption(dst, text)
}

// Overlay returns a transparent frame holding only the caption bar, for
// compositing over video cuts.
func (p *Painter) Overlay(text string) *image.RGBA {
	dst := image.NewRGBA(p.Bounds())
	p.DrawCaption(dst, text)
	return dst
}

// DrawCaption draws the translucent bar with centered white text. Blank
// captions draw nothing.
func (p *Painter) DrawCaption(dst *image.RGBA, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	bar := p.BarRect()

	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(barColor)
	dc.DrawRectangle(float64(bar.Min.X), float64(bar.Min.Y), float64(bar.Dx()), float64(bar.Dy()))
	dc.Fill()

	dc.SetFontFace(p.faces(p.FontSize))
	dc.SetColor(color.White)
	width := float64(p.Width) * 0.9
	cx := float64(p.Width) / 2
	cy := float64(bar.Min.Y) + float64(bar.Dy())/2
	dc.DrawStringWrapped(text, cx, cy, 0.5, 0.5, width, 1.2, gg.AlignCenter)
}

// Slate draws the leading card with title, version, date and a QR code
// carrying the same data.
func (p *Painter) Slate(dst *image.RGBA, title, version, date string) error {
	Fill(dst, slateColor)
	dc := gg.NewContextForRGBA(dst)

	w, h := float64(p.Width), float64(p.Height)
	dc.SetColor(color.White)
	dc.SetFontFace(p.faces(p.FontSize * 2))
	if title == "" {
		title = "Untitled"
	}
	dc.DrawStringWrapped(title, w*0.08, h*0.35, 0, 0.5, w*0.55, 1.2, gg.AlignLeft)

	dc.SetFontFace(p.faces(p.FontSize))
	dc.SetColor(color.Gray{Y: 0xb4})
	dc.DrawStringAnchored("v"+version, w*0.08, h*0.55, 0, 0.5)
	dc.DrawStringAnchored(date, w*0.08, h*0.55+p.FontSize*1.6, 0, 0.5)

	qr, err := qrcode.New(strings.Join([]string{title, "v" + version, date}, "\n"), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("caption.Slate: %w", err)
	}
	size := p.Height / 3
	dc.DrawImage(qr.Image(size), p.Width-size-p.Width/12, (p.Height-size)/2)
	return nil
}

// Fill paints the whole of dst with c.
func Fill(dst *image.RGBA, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Letterbox scales img to fit dst keeping its aspect ratio and centers it.
func Letterbox(dst *image.RGBA, img image.Image) {
	r := Fit(img.Bounds(), dst.Bounds())
	if r.Empty() {
		return
	}
	draw.CatmullRom.Scale(dst, r, img, img.Bounds(), draw.Over, nil)
}

// Fit returns the largest rectangle with src's aspect ratio centered in
// dst.
func Fit(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()
	if sw == 0 || sh == 0 || dw == 0 || dh == 0 {
		return image.Rectangle{}
	}
	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}
