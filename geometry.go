package photopdf

import (
	"fmt"
	"math"
)

// Rect is a placement rectangle in points, origin at the page's top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// DPISource records where the effective DPI of a page came from.
type DPISource string

const (
	DPINone     DPISource = ""
	DPIDeclared DPISource = "declared"
	DPIFallback DPISource = "fallback"
	DPIManual   DPISource = "manual"
)

// PageSpec is the resolved page for one image.
type PageSpec struct {
	Width, Height float64 // points
	Image         Rect
	DPI           float64 // effective DPI for DPI-based policies, 0 otherwise
	DPISource     DPISource
}

// Note describes the effective DPI, or "" for policies that do not use one.
func (p PageSpec) Note() string {
	if p.DPISource == DPINone {
		return ""
	}
	return fmt.Sprintf("DPI: %g (%s)", p.DPI, p.DPISource)
}

// Resolve computes the page size and image placement for img under policy.
//
// DPI policies size the page from pixels (px / dpi * 72 per axis) regardless
// of margin, then fit the image inside page - 2*margin. MatchPixels sizes the
// page to pixels plus margin on each side and places the image 1:1. Fixed
// policies fit the image inside the fixed page minus margins. Placement always
// preserves aspect ratio and is centered.
//
// Errors wrap ErrGeometry.
func Resolve(policy SizingPolicy, img SourceImage, margin float64) (PageSpec, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return PageSpec{}, fmt.Errorf("%w: image dimensions %dx%d", ErrGeometry, img.Width, img.Height)
	}
	if margin < 0 || !finite(margin) {
		return PageSpec{}, fmt.Errorf("%w: margin %g", ErrGeometry, margin)
	}
	w, h := float64(img.Width), float64(img.Height)

	switch p := policy.(type) {
	case AutoDPI:
		dpi, source := p.fallback(), DPIFallback
		if img.DPI.Declared() {
			// Averaged so pixels stay square on the page.
			dpi, source = (img.DPI.X+img.DPI.Y)/2, DPIDeclared
		}
		return dpiPage(w, h, dpi, margin, source)
	case ManualDPI:
		if p.DPI <= 0 || !finite(p.DPI) {
			return PageSpec{}, fmt.Errorf("%w: manual DPI %g", ErrGeometry, p.DPI)
		}
		return dpiPage(w, h, p.DPI, margin, DPIManual)
	case MatchPixels:
		return PageSpec{
			Width:  w + 2*margin,
			Height: h + 2*margin,
			Image:  Rect{X: margin, Y: margin, W: w, H: h},
		}, nil
	case FixedA4:
		return fitPage(w, h, A4Width, A4Height, margin)
	case FixedLetter:
		return fitPage(w, h, LetterWidth, LetterHeight, margin)
	case nil:
		return PageSpec{}, ErrNilSizing
	default:
		return PageSpec{}, fmt.Errorf("%w: unsupported sizing policy %T", ErrGeometry, policy)
	}
}

func dpiPage(w, h, dpi, margin float64, source DPISource) (PageSpec, error) {
	spec, err := fitPage(w, h, w/dpi*PointsPerInch, h/dpi*PointsPerInch, margin)
	if err != nil {
		return PageSpec{}, err
	}
	spec.DPI = dpi
	spec.DPISource = source
	return spec, nil
}

// fitPage scales (w, h) uniformly into the page area left by margin and centers it.
func fitPage(w, h, pageW, pageH, margin float64) (PageSpec, error) {
	availW := pageW - 2*margin
	availH := pageH - 2*margin
	if availW <= 0 || availH <= 0 || !finite(pageW) || !finite(pageH) {
		return PageSpec{}, fmt.Errorf("%w: margin %g leaves no room on a %.2fx%.2f page", ErrGeometry, margin, pageW, pageH)
	}
	scale := math.Min(availW/w, availH/h)
	iw, ih := w*scale, h*scale
	return PageSpec{
		Width:  pageW,
		Height: pageH,
		Image: Rect{
			X: (pageW - iw) / 2,
			Y: (pageH - ih) / 2,
			W: iw,
			H: ih,
		},
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
