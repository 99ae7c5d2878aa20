package photopdf

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// EXIF orientation values.
const (
	orientNormal     = 1
	orientFlipH      = 2
	orientRotate180  = 3
	orientFlipV      = 4
	orientTranspose  = 5
	orientRotate270  = 6
	orientTransverse = 7
	orientRotate90   = 8
)

// Normalize applies the image's EXIF orientation to its pixels and clears the tag.
// Absent or identity orientation returns src unchanged. A malformed tag is
// treated as identity and reported as a warning; Normalize never fails.
func Normalize(src SourceImage) (SourceImage, []Warning) {
	if src.OrientationErr != nil || src.Orientation < 0 || src.Orientation > orientRotate90 {
		reason := src.OrientationErr
		if reason == nil {
			reason = fmt.Errorf("value %d", src.Orientation)
		}
		out := src
		out.Orientation = 0
		out.OrientationErr = nil
		return out, []Warning{{
			Code:    WarnOrientationMalformed,
			Source:  src.Path,
			Message: fmt.Sprintf("orientation tag ignored (%v); assuming no rotation", reason),
		}}
	}
	if src.Orientation <= orientNormal || src.Pixels == nil {
		return src, nil
	}

	var img *image.NRGBA
	switch src.Orientation {
	case orientFlipH:
		img = imaging.FlipH(src.Pixels)
	case orientRotate180:
		img = imaging.Rotate180(src.Pixels)
	case orientFlipV:
		img = imaging.FlipV(src.Pixels)
	case orientTranspose:
		img = imaging.Transpose(src.Pixels)
	case orientRotate270:
		img = imaging.Rotate270(src.Pixels)
	case orientTransverse:
		img = imaging.Transverse(src.Pixels)
	case orientRotate90:
		img = imaging.Rotate90(src.Pixels)
	}

	out := src
	out.Pixels = img
	out.Width, out.Height = img.Bounds().Dx(), img.Bounds().Dy()
	out.Orientation = 0
	out.Transformed = true
	if swapsAxes(src.Orientation) {
		out.DPI = DPI{X: src.DPI.Y, Y: src.DPI.X}
	}
	return out, nil
}

// swapsAxes reports whether the orientation exchanges width and height.
func swapsAxes(o int) bool {
	return o >= orientTranspose && o <= orientRotate90
}

// clearOrientation drops the tag without touching pixels, for jobs that
// ignore orientation.
func clearOrientation(src SourceImage) SourceImage {
	src.Orientation = 0
	src.OrientationErr = nil
	return src
}
