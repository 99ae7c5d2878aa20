package photopdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// EmbedKind is the encoding of an embedded image stream.
type EmbedKind string

const (
	KindJPEG EmbedKind = "jpeg"
	KindPNG  EmbedKind = "png"
)

// keepOriginalQuality is used when a kept JPEG must go through generic insertion.
const keepOriginalQuality = 100

// Embedded is an encoded image ready for insertion into a page.
type Embedded struct {
	Kind EmbedKind
	Data []byte

	// Direct means the writer inserts Data verbatim. When false and Kind is
	// KindJPEG, the writer decodes and recompresses at Quality.
	Direct  bool
	Quality int
}

// Procedure is a concrete encode-and-insert plan chosen by Select.
type Procedure struct {
	mode EmbeddingMode
	caps CapabilitySet
}

// Select picks the procedure for mode under caps. It fails only for an
// invalid mode; capability absence degrades the procedure instead.
func Select(mode EmbeddingMode, caps CapabilitySet) (Procedure, error) {
	switch m := mode.(type) {
	case HighQualityJPEG:
		if err := validateQuality(m.Quality); err != nil {
			return Procedure{}, err
		}
	case KeepOriginal, LosslessPNG:
	case nil:
		return Procedure{}, ErrNilEmbedding
	default:
		return Procedure{}, fmt.Errorf("unsupported embedding mode %T", mode)
	}
	return Procedure{mode: mode, caps: caps}, nil
}

// Mode returns the embedding mode the procedure implements.
func (p Procedure) Mode() EmbeddingMode {
	return p.mode
}

// MayDegrade reports whether Apply can fall back to generic JPEG insertion.
func (p Procedure) MayDegrade() bool {
	_, png := p.mode.(LosslessPNG)
	return !png && !p.caps.DirectJPEG
}

// Apply encodes src according to the procedure. Degradations come back as
// warnings: WarnCapabilityDegraded when a JPEG needs generic insertion and
// WarnOriginalNotPreserved when keep_original had to re-encode.
// Errors wrap ErrInput.
func (p Procedure) Apply(src SourceImage) (Embedded, []Warning, error) {
	if src.Pixels == nil {
		return Embedded{}, nil, fmt.Errorf("%w: %s: no pixel data", ErrInput, src.Path)
	}

	switch m := p.mode.(type) {
	case HighQualityJPEG:
		data, err := encodeJPEG(src.Pixels, m.Quality)
		if err != nil {
			return Embedded{}, nil, fmt.Errorf("%w: %s: encoding JPEG: %v", ErrInput, src.Path, err)
		}
		e, warns := p.jpeg(src.Path, data, m.Quality)
		return e, warns, nil

	case KeepOriginal:
		if src.Format == "jpeg" && !src.Transformed {
			e, warns := p.jpeg(src.Path, src.Data, keepOriginalQuality)
			return e, warns, nil
		}
		data, err := encodePNG(src.Pixels)
		if err != nil {
			return Embedded{}, nil, fmt.Errorf("%w: %s: encoding PNG: %v", ErrInput, src.Path, err)
		}
		reason := fmt.Sprintf("%s source cannot be embedded as-is", src.Format)
		if src.Format == "jpeg" {
			reason = "JPEG was re-oriented"
		}
		return Embedded{Kind: KindPNG, Data: data, Direct: true}, []Warning{{
			Code:    WarnOriginalNotPreserved,
			Source:  src.Path,
			Message: reason + "; embedded as lossless PNG",
		}}, nil

	case LosslessPNG:
		data, err := encodePNG(src.Pixels)
		if err != nil {
			return Embedded{}, nil, fmt.Errorf("%w: %s: encoding PNG: %v", ErrInput, src.Path, err)
		}
		return Embedded{Kind: KindPNG, Data: data, Direct: true}, nil, nil

	default:
		return Embedded{}, nil, fmt.Errorf("unsupported embedding mode %T", p.mode)
	}
}

func (p Procedure) jpeg(path string, data []byte, quality int) (Embedded, []Warning) {
	e := Embedded{Kind: KindJPEG, Data: data, Direct: p.caps.DirectJPEG, Quality: quality}
	if p.caps.DirectJPEG {
		return e, nil
	}
	return e, []Warning{{
		Code:    WarnCapabilityDegraded,
		Source:  path,
		Message: "direct JPEG insertion unavailable; the document writer recompresses images",
	}}
}

// encodeJPEG flattens transparency onto white, since JPEG has no alpha.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodePNG writes an 8-bit non-interlaced PNG. Deeper sources are
// reduced to 8 bits per channel.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// flatten composites img over an opaque white background when it has alpha.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
