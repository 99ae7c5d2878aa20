// Package imagemeta reads the resolution and orientation metadata that image
// decoders discard: JFIF density, PNG pHYs and EXIF (JPEG, TIFF, PNG eXIf).
package imagemeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rwcarlsen/goexif/exif"
)

// Format names as reported by image.Decode.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatTIFF = "tiff"
)

// ErrMalformedOrientation is set on Info when an orientation tag exists but
// cannot be read or holds a value outside 1..8.
var ErrMalformedOrientation = errors.New("malformed orientation tag")

const (
	metresPerInch = 0.0254
	cmPerInch     = 2.54
)

// Info is the metadata found in an encoded image. Zero values mean absent.
type Info struct {
	DPIX, DPIY     float64
	Orientation    int
	OrientationErr error
}

// Read extracts metadata from encoded image data. It never fails:
// unreadable metadata is reported as absent, except a present but unusable
// orientation tag, which sets OrientationErr.
func Read(data []byte, format string) Info {
	var info Info

	var exifData []byte
	switch format {
	case FormatJPEG:
		info.DPIX, info.DPIY = jfifDensity(data)
		exifData = data
	case FormatPNG:
		var raw []byte
		info.DPIX, info.DPIY, raw = pngChunks(data)
		exifData = raw
	case FormatTIFF:
		exifData = data
	default:
		return info
	}

	if len(exifData) == 0 {
		return info
	}
	x := decodeExif(exifData)
	if x == nil {
		return info
	}

	info.Orientation, info.OrientationErr = orientation(x)
	if info.DPIX <= 0 || info.DPIY <= 0 {
		info.DPIX, info.DPIY = exifResolution(x)
	}
	return info
}

// decodeExif returns nil when no usable EXIF block is present.
// goexif panics on some truncated inputs.
func decodeExif(data []byte) (x *exif.Exif) {
	defer func() {
		if r := recover(); r != nil {
			x = nil
		}
	}()
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil
	}
	return x
}

func orientation(x *exif.Exif) (int, error) {
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrMalformedOrientation, err)
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedOrientation, err)
	}
	if v < 1 || v > 8 {
		return 0, fmt.Errorf("%w: value %d", ErrMalformedOrientation, v)
	}
	return v, nil
}

// exifResolution reads XResolution/YResolution; ResolutionUnit 3 is centimetres.
func exifResolution(x *exif.Exif) (float64, float64) {
	xr := rational(x, exif.XResolution)
	yr := rational(x, exif.YResolution)
	if xr <= 0 || yr <= 0 {
		return 0, 0
	}
	if tag, err := x.Get(exif.ResolutionUnit); err == nil {
		if unit, err := tag.Int(0); err == nil && unit == 3 {
			xr *= cmPerInch
			yr *= cmPerInch
		}
	}
	return xr, yr
}

func rational(x *exif.Exif, name exif.FieldName) float64 {
	tag, err := x.Get(name)
	if err != nil {
		return 0
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// jfifDensity reads the APP0 JFIF density. Units 1 = dots per inch,
// 2 = dots per cm; unit 0 only encodes aspect ratio and is ignored.
func jfifDensity(data []byte) (float64, float64) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 0, 0
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		// Start of scan: no more header segments.
		if marker == 0xDA || marker == 0xD9 {
			return 0, 0
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return 0, 0
		}
		seg := data[pos+4 : pos+2+length]
		if marker == 0xE0 && len(seg) >= 12 && bytes.Equal(seg[:5], []byte("JFIF\x00")) {
			units := seg[7]
			xd := float64(binary.BigEndian.Uint16(seg[8:10]))
			yd := float64(binary.BigEndian.Uint16(seg[10:12]))
			switch units {
			case 1:
				return xd, yd
			case 2:
				return xd * cmPerInch, yd * cmPerInch
			default:
				return 0, 0
			}
		}
		pos += 2 + length
	}
	return 0, 0
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngChunks returns the pHYs density in DPI and the raw eXIf payload.
// Chunks after IDAT are not examined.
func pngChunks(data []byte) (dpiX, dpiY float64, exifData []byte) {
	if !bytes.HasPrefix(data, pngSignature) {
		return 0, 0, nil
	}
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		start := pos + 8
		end := start + length
		if length < 0 || end+4 > len(data) {
			break
		}
		chunk := data[start:end]
		switch typ {
		case "pHYs":
			// Unit 1 is the metre; unit 0 is aspect ratio only.
			if len(chunk) == 9 && chunk[8] == 1 {
				dpiX = float64(binary.BigEndian.Uint32(chunk[0:4])) * metresPerInch
				dpiY = float64(binary.BigEndian.Uint32(chunk[4:8])) * metresPerInch
			}
		case "eXIf":
			exifData = chunk
		case "IDAT", "IEND":
			return dpiX, dpiY, exifData
		}
		pos = end + 4
	}
	return dpiX, dpiY, exifData
}
