package photopdf

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Renderer opens PDF documents for rasterization.
type Renderer interface {
	Open(path string) (RenderedDocument, error)
}

// RenderedDocument renders pages of one open PDF. Page indexes are 0-based.
type RenderedDocument interface {
	NumPages() int
	RenderPage(index int, dpi float64) (image.Image, error)
	Close() error
}

// Compile-time interface implementation checks.
var (
	_ Renderer         = (*FitzRenderer)(nil)
	_ RenderedDocument = (*fitzDocument)(nil)
)

// FitzRenderer renders pages with MuPDF through go-fitz.
type FitzRenderer struct{}

// NewFitzRenderer returns the MuPDF-backed renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// Open parses the document at path. Errors wrap ErrDocument.
func (FitzRenderer) Open(path string) (doc RenderedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %s: %v", ErrDocument, path, r)
		}
	}()
	d, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocument, path, err)
	}
	return &fitzDocument{doc: d}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPages() int {
	return d.doc.NumPage()
}

// RenderPage renders at dpi; the pixel size is page points * dpi / 72.
func (d *fitzDocument) RenderPage(index int, dpi float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
