package source

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/cuts/internal/media"
)

// Source yields the pages a storyboard is seeded from, one cut per page.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	// PageFile returns the page as attachable media.
	PageFile(index int, dpi int) (media.File, image.Image, error)
	Close() error
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	base string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &FitzPDFSource{doc: doc, path: path, base: base}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens its own document so pages can render concurrently.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) PageFile(index int, dpi int) (media.File, image.Image, error) {
	img, err := f.RenderPage(index, dpi)
	if err != nil {
		return media.File{}, nil, fmt.Errorf("render page %d: %w", index+1, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return media.File{}, nil, fmt.Errorf("encode page %d: %w", index+1, err)
	}
	return media.File{
		Name: fmt.Sprintf("%s_p%03d.png", f.base, index+1),
		Type: "image/png",
		Data: buf.Bytes(),
	}, img, nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
