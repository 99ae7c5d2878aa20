package photopdf

// Notes:
// - Shared fixtures for the root package tests: images are generated in
//   memory and written to t.TempDir(); nothing is read from testdata.
// - PDF outputs are inspected with rsc.io/pdf. gofpdf only writes a per-page
//   MediaBox when it differs from the document default, so pageSizes falls
//   back to the parent Pages node.

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"rsc.io/pdf"
)

// ---------------------------------------------------------------------------
// Image fixtures
// ---------------------------------------------------------------------------

// gradient returns a w x h opaque image with varying pixels so encoders
// have something to compress.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", name, err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	return writeFile(t, dir, name, pngBytes(t, gradient(w, h)))
}

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	return writeFile(t, dir, name, jpegBytes(t, gradient(w, h)))
}

// withJFIFDensity inserts an APP0 JFIF segment declaring dpi on both axes
// right after the SOI marker. Go's encoder writes no APP0 of its own.
func withJFIFDensity(data []byte, dpi int) []byte {
	payload := []byte{'J', 'F', 'I', 'F', 0, 1, 1, 1,
		byte(dpi >> 8), byte(dpi), byte(dpi >> 8), byte(dpi), 0, 0}
	seg := []byte{0xFF, 0xE0, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)}
	seg = append(seg, payload...)
	out := append([]byte{}, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...)
}

// withEXIFOrientation inserts an APP1 Exif segment carrying one orientation entry.
func withEXIFOrientation(data []byte, orientation uint16) []byte {
	tiff := []byte{
		'M', 'M', 0, 42, 0, 0, 0, 8, // header, IFD0 at 8
		0, 1, // one entry
		0x01, 0x12, 0, 3, 0, 0, 0, 1, byte(orientation >> 8), byte(orientation), 0, 0,
		0, 0, 0, 0, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xFF, 0xE1, byte((len(payload) + 2) >> 8), byte(len(payload) + 2)}
	seg = append(seg, payload...)
	out := append([]byte{}, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...)
}

func loadSource(t *testing.T, path string) SourceImage {
	t.Helper()
	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource(%s): %v", path, err)
	}
	return src
}

// ---------------------------------------------------------------------------
// PDF inspection
// ---------------------------------------------------------------------------

type pageSize struct {
	W, H float64
}

func openPDF(t *testing.T, path string) *pdf.Reader {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return r
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	return openPDF(t, path).NumPage()
}

func pageSizes(t *testing.T, path string) []pageSize {
	t.Helper()
	r := openPDF(t, path)
	sizes := make([]pageSize, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		box := page.V.Key("MediaBox")
		if box.Len() < 4 {
			box = page.V.Key("Parent").Key("MediaBox")
		}
		if box.Len() < 4 {
			t.Fatalf("page %d has no MediaBox", i)
		}
		sizes = append(sizes, pageSize{
			W: box.Index(2).Float64() - box.Index(0).Float64(),
			H: box.Index(3).Float64() - box.Index(1).Float64(),
		})
	}
	return sizes
}

func infoString(t *testing.T, path, key string) string {
	t.Helper()
	return openPDF(t, path).Trailer().Key("Info").Key(key).Text()
}

// approx compares page dimensions, which gofpdf writes with two decimals.
func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.02
}
