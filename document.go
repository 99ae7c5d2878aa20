package photopdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/alnah/photopdf/internal/fileutil"
)

// producerName is written as the document Creator.
const producerName = "photopdf"

// pageWriter accumulates pages for one output document. A writer is owned by
// a single job and is either finalized or discarded, never both.
type pageWriter interface {
	AddPage(spec PageSpec, img Embedded) error
	Pages() int
	Finalize(path string, meta *Metadata, created time.Time) error
	Discard()
}

// Compile-time interface implementation check.
var _ pageWriter = (*gofpdfDocument)(nil)

// gofpdfDocument writes pages with gofpdf. Images are registered before
// their page is added, so a rejected image never leaves a blank page.
type gofpdfDocument struct {
	pdf    *gofpdf.Fpdf
	pages  int
	seq    int
	broken error
}

func newGofpdfDocument() pageWriter {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: A4Width, Ht: A4Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(true)
	return &gofpdfDocument{pdf: pdf}
}

// AddPage appends one page holding img at spec. Errors wrap ErrInput when the
// writer rejects the image stream.
func (d *gofpdfDocument) AddPage(spec PageSpec, img Embedded) error {
	if d.broken != nil {
		return d.broken
	}
	data, imageType, err := insertionStream(img)
	if err != nil {
		return err
	}

	d.seq++
	name := fmt.Sprintf("img%d", d.seq)
	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}

	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if d.pdf.Err() {
		err := d.pdf.Error()
		d.pdf.ClearError()
		return fmt.Errorf("%w: document writer rejected image: %v", ErrInput, err)
	}

	d.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: spec.Width, Ht: spec.Height})
	d.pdf.ImageOptions(name, spec.Image.X, spec.Image.Y, spec.Image.W, spec.Image.H, false, opts, 0, "")
	if d.pdf.Err() {
		// The page exists but has no content; the document can no longer be trusted.
		d.broken = fmt.Errorf("%w: placing image: %v", ErrIO, d.pdf.Error())
		return d.broken
	}
	d.pages++
	return nil
}

func (d *gofpdfDocument) Pages() int {
	return d.pages
}

// Finalize applies metadata and writes the document atomically to path.
// Errors wrap ErrIO; nothing is left at path on failure.
func (d *gofpdfDocument) Finalize(path string, meta *Metadata, created time.Time) error {
	if d.broken != nil {
		return d.broken
	}
	if d.pages == 0 {
		return fmt.Errorf("%w: document has no pages", ErrIO)
	}
	if meta != nil {
		if meta.Title != "" {
			d.pdf.SetTitle(meta.Title, true)
		}
		if meta.Author != "" {
			d.pdf.SetAuthor(meta.Author, true)
		}
	}
	d.pdf.SetCreator(producerName, true)
	d.pdf.SetCreationDate(created)

	err := fileutil.WriteAtomic(path, func(w io.Writer) error {
		return d.pdf.Output(w)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// Discard releases the in-memory document without writing anything.
func (d *gofpdfDocument) Discard() {
	d.pdf = nil
	d.broken = errors.New("document discarded")
}

// insertionStream returns the bytes and gofpdf image type for img. Without
// direct insertion a JPEG is decoded and recompressed, the way a generic
// writer would.
func insertionStream(img Embedded) ([]byte, string, error) {
	switch img.Kind {
	case KindPNG:
		return img.Data, "PNG", nil
	case KindJPEG:
		if img.Direct {
			return img.Data, "JPG", nil
		}
		decoded, _, err := image.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return nil, "", fmt.Errorf("%w: decoding JPEG for generic insertion: %v", ErrInput, err)
		}
		quality := img.Quality
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		data, err := encodeJPEG(decoded, quality)
		if err != nil {
			return nil, "", fmt.Errorf("%w: re-encoding JPEG: %v", ErrInput, err)
		}
		return data, "JPG", nil
	default:
		return nil, "", fmt.Errorf("%w: unknown image kind %q", ErrInput, img.Kind)
	}
}
