package photopdf

import (
	"fmt"
	"math"
	"strings"
)

// Page sizes in points.
const (
	A4Width      = 595.27
	A4Height     = 841.89
	LetterWidth  = 612.0
	LetterHeight = 792.0
)

// DPI and quality bounds.
const (
	DefaultFallbackDPI = 300.0
	DefaultJPEGQuality = 100
	MinJPEGQuality     = 1
	MaxJPEGQuality     = 100

	// PointsPerInch converts between pixels at a given DPI and PDF points.
	PointsPerInch = 72.0
)

// Sizing policy names accepted by ParseSizing.
const (
	SizingAutoDPI     = "auto_dpi"
	SizingManualDPI   = "manual_dpi"
	SizingMatchPixels = "match_pixels"
	SizingA4          = "a4"
	SizingLetter      = "letter"
)

// Embedding mode names accepted by ParseEmbedding.
const (
	EmbedJPEG     = "jpeg"
	EmbedOriginal = "original"
	EmbedPNG      = "png"
)

// SizingPolicy decides how a page's physical size derives from an image.
// The set of policies is closed: AutoDPI, ManualDPI, MatchPixels, FixedA4, FixedLetter.
type SizingPolicy interface {
	fmt.Stringer
	sizingPolicy()
}

// AutoDPI uses the image's declared DPI, or Fallback when none is declared.
// A Fallback <= 0 means DefaultFallbackDPI.
type AutoDPI struct {
	Fallback float64
}

// ManualDPI ignores declared DPI and sizes every page at DPI.
type ManualDPI struct {
	DPI float64
}

// MatchPixels maps one pixel to one point.
type MatchPixels struct{}

// FixedA4 places every image on an A4 page.
type FixedA4 struct{}

// FixedLetter places every image on a US Letter page.
type FixedLetter struct{}

func (AutoDPI) sizingPolicy()     {}
func (ManualDPI) sizingPolicy()   {}
func (MatchPixels) sizingPolicy() {}
func (FixedA4) sizingPolicy()     {}
func (FixedLetter) sizingPolicy() {}

func (p AutoDPI) String() string   { return fmt.Sprintf("%s(fallback=%g)", SizingAutoDPI, p.fallback()) }
func (p ManualDPI) String() string { return fmt.Sprintf("%s(%g)", SizingManualDPI, p.DPI) }
func (MatchPixels) String() string { return SizingMatchPixels }
func (FixedA4) String() string     { return SizingA4 }
func (FixedLetter) String() string { return SizingLetter }

func (p AutoDPI) fallback() float64 {
	if p.Fallback <= 0 || math.IsNaN(p.Fallback) || math.IsInf(p.Fallback, 0) {
		return DefaultFallbackDPI
	}
	return p.Fallback
}

// ParseSizing builds a SizingPolicy from its name. dpi is the fallback DPI
// for auto_dpi and the chosen DPI for manual_dpi; other policies ignore it.
func ParseSizing(name string, dpi float64) (SizingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SizingAutoDPI, "auto", "":
		return AutoDPI{Fallback: dpi}, nil
	case SizingManualDPI, "dpi", "manual":
		return ManualDPI{DPI: dpi}, nil
	case SizingMatchPixels, "pixels":
		return MatchPixels{}, nil
	case SizingA4, "fixed_a4":
		return FixedA4{}, nil
	case SizingLetter, "fixed_letter":
		return FixedLetter{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown sizing policy %q", ErrGeometry, name)
	}
}

// EmbeddingMode trades output fidelity against file size.
// The set of modes is closed: HighQualityJPEG, KeepOriginal, LosslessPNG.
type EmbeddingMode interface {
	fmt.Stringer
	embeddingMode()
}

// HighQualityJPEG re-encodes every image as JPEG at Quality (1..100).
type HighQualityJPEG struct {
	Quality int
}

// KeepOriginal embeds JPEG sources byte for byte and falls back to PNG otherwise.
type KeepOriginal struct{}

// LosslessPNG re-encodes every image as PNG.
type LosslessPNG struct{}

func (HighQualityJPEG) embeddingMode() {}
func (KeepOriginal) embeddingMode()    {}
func (LosslessPNG) embeddingMode()     {}

func (m HighQualityJPEG) String() string { return fmt.Sprintf("%s(q=%d)", EmbedJPEG, m.Quality) }
func (KeepOriginal) String() string      { return EmbedOriginal }
func (LosslessPNG) String() string       { return EmbedPNG }

// ParseEmbedding builds an EmbeddingMode from its name.
// quality is only used by the jpeg mode; 0 means DefaultJPEGQuality.
func ParseEmbedding(name string, quality int) (EmbeddingMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EmbedJPEG, "jpg", "jpeg_high", "":
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if err := validateQuality(quality); err != nil {
			return nil, err
		}
		return HighQualityJPEG{Quality: quality}, nil
	case EmbedOriginal, "keep_original":
		return KeepOriginal{}, nil
	case EmbedPNG, "lossless_png", "lossless":
		return LosslessPNG{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (must be jpeg, original, or png)", ErrInvalidEmbedding, name)
	}
}

func validateQuality(q int) error {
	if q < MinJPEGQuality || q > MaxJPEGQuality {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidQuality, q, MinJPEGQuality, MaxJPEGQuality)
	}
	return nil
}

// OutputMode selects between one combined document and one document per image.
type OutputMode int

const (
	// OutputSingle writes every page into one document at Job.Target.
	OutputSingle OutputMode = iota
	// OutputPerImage writes <stem>.pdf for each image into the Job.Target directory.
	OutputPerImage
)

func (m OutputMode) String() string {
	switch m {
	case OutputSingle:
		return "single"
	case OutputPerImage:
		return "per_image"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// Metadata is written into the document info dictionary at finalization.
type Metadata struct {
	Title  string
	Author string
}

// Job describes one composition run. Images are processed in order;
// their order is the page order.
type Job struct {
	Images    []string
	Sizing    SizingPolicy
	Embedding EmbeddingMode
	Margin    float64 // points, applied on every side
	Output    OutputMode
	Target    string // file path for OutputSingle, directory for OutputPerImage
	Metadata  *Metadata

	// IgnoreOrientation keeps pixel data as stored, skipping EXIF rotation.
	IgnoreOrientation bool
}

// Validate checks that a job can start. Per-image problems are not
// validation errors; they surface as failed items.
func (j *Job) Validate() error {
	if len(j.Images) == 0 {
		return ErrNoImages
	}
	if j.Sizing == nil {
		return ErrNilSizing
	}
	if j.Embedding == nil {
		return ErrNilEmbedding
	}
	if m, ok := j.Embedding.(HighQualityJPEG); ok {
		if err := validateQuality(m.Quality); err != nil {
			return err
		}
	}
	if j.Margin < 0 || math.IsNaN(j.Margin) || math.IsInf(j.Margin, 0) {
		return fmt.Errorf("%w: %g (must be >= 0)", ErrInvalidMargin, j.Margin)
	}
	if j.Output != OutputSingle && j.Output != OutputPerImage {
		return fmt.Errorf("%w: %s", ErrInvalidOutputMode, j.Output)
	}
	if strings.TrimSpace(j.Target) == "" {
		return ErrEmptyTarget
	}
	return nil
}

// RasterFormat is the image encoding used for rendered PDF pages.
type RasterFormat string

const (
	RasterPNG  RasterFormat = "png"
	RasterJPEG RasterFormat = "jpg"
)

// Rasterization bounds.
const (
	MinRasterDPI       = 36.0
	DefaultRasterDPI   = 300.0
	DefaultRasterJPEGQ = 95
)

// ParseRasterFormat accepts png, jpg and jpeg (case-insensitive).
func ParseRasterFormat(s string) (RasterFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return RasterPNG, nil
	case "jpg", "jpeg":
		return RasterJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q (must be png or jpg)", ErrInvalidRasterFormat, s)
	}
}

// RasterJob describes one rasterization run over PDFs, in order.
type RasterJob struct {
	PDFs      []string
	OutputDir string
	DPI       float64
	Format    RasterFormat
	Quality   int // JPEG quality; 0 means DefaultRasterJPEGQ
}

// Validate checks that a rasterization job can start.
func (j *RasterJob) Validate() error {
	if len(j.PDFs) == 0 {
		return ErrNoDocuments
	}
	if strings.TrimSpace(j.OutputDir) == "" {
		return ErrEmptyTarget
	}
	if j.DPI < MinRasterDPI || math.IsNaN(j.DPI) || math.IsInf(j.DPI, 0) {
		return fmt.Errorf("%w: %g (must be at least %g)", ErrInvalidDPI, j.DPI, MinRasterDPI)
	}
	if _, err := ParseRasterFormat(string(j.Format)); err != nil {
		return err
	}
	if j.Quality != 0 {
		if err := validateQuality(j.Quality); err != nil {
			return err
		}
	}
	return nil
}

func (j *RasterJob) quality() int {
	if j.Quality == 0 {
		return DefaultRasterJPEGQ
	}
	return j.Quality
}
