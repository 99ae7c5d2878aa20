package photopdf

import (
	"bytes"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// CapabilitySet records which optional embedding paths the document writer
// supports. Probe it once with ProbeCapabilities and pass it to NewEngine;
// it is read-only afterwards.
type CapabilitySet struct {
	// DirectJPEG means encoded JPEG streams are inserted verbatim (DCTDecode)
	// instead of being decoded and recompressed by the writer.
	DirectJPEG bool
}

func (c CapabilitySet) String() string {
	if c.DirectJPEG {
		return "direct-jpeg"
	}
	return "generic"
}

// ProbeCapabilities checks the document writer by registering a tiny JPEG
// through the passthrough path.
func ProbeCapabilities() CapabilitySet {
	var buf bytes.Buffer
	probe := imaging.New(2, 2, color.White)
	if err := imaging.Encode(&buf, probe, imaging.JPEG); err != nil {
		return CapabilitySet{}
	}
	return CapabilitySet{DirectJPEG: acceptsJPEG(buf.Bytes())}
}

func acceptsJPEG(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	pdf := gofpdf.New("P", "pt", "A4", "")
	info := pdf.RegisterImageOptionsReader("probe", gofpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(data))
	return !pdf.Err() && info != nil
}
