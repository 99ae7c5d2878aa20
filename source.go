package photopdf

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Decoders for every supported source format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/alnah/photopdf/internal/imagemeta"
)

// SupportedExtensions lists the source image extensions, lower case.
var SupportedExtensions = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp"}

// IsSupportedImage reports whether path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DPI is a declared resolution. Zero or negative axes mean undeclared.
type DPI struct {
	X, Y float64
}

// Declared reports whether both axes carry a usable value.
func (d DPI) Declared() bool {
	return d.X > 0 && d.Y > 0 && finite(d.X) && finite(d.Y)
}

// SourceImage is a decoded photo plus the metadata the pipeline needs.
// Values are treated as immutable; Normalize returns a new one.
type SourceImage struct {
	Path           string
	Format         string // decoder name: jpeg, png, gif, bmp, tiff, webp
	Width, Height  int
	DPI            DPI
	Orientation    int   // raw EXIF orientation, 0 when absent
	OrientationErr error // set when the tag exists but is unusable
	Data           []byte
	Pixels         image.Image

	// Transformed is set once Pixels no longer match Data.
	Transformed bool
}

// LoadSource reads and decodes the image at path.
// Errors wrap ErrInput.
func LoadSource(path string) (SourceImage, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-provided source path
	if err != nil {
		return SourceImage{}, fmt.Errorf("%w: %s: %v", ErrInput, path, err)
	}
	return DecodeSource(path, data)
}

// DecodeSource decodes already-read image bytes.
func DecodeSource(path string, data []byte) (SourceImage, error) {
	if len(data) == 0 {
		return SourceImage{}, fmt.Errorf("%w: %s: empty file", ErrInput, path)
	}
	pixels, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return SourceImage{}, fmt.Errorf("%w: %s: %v", ErrInput, path, err)
	}
	b := pixels.Bounds()
	meta := imagemeta.Read(data, format)
	return SourceImage{
		Path:           path,
		Format:         format,
		Width:          b.Dx(),
		Height:         b.Dy(),
		DPI:            DPI{X: meta.DPIX, Y: meta.DPIY},
		Orientation:    meta.Orientation,
		OrientationErr: meta.OrientationErr,
		Data:           data,
		Pixels:         pixels,
	}, nil
}
