package photopdf

import "errors"

// Sentinel errors for library operations.
var (
	// Per-item failures. Recorded in ItemResult.Err, never abort a batch.
	ErrInput    = errors.New("unreadable or unsupported source image")
	ErrGeometry = errors.New("invalid page geometry")
	ErrDocument = errors.New("document cannot be opened")
	ErrIO       = errors.New("write failed")
	ErrRender   = errors.New("page render failed")

	// ErrCapabilityDegraded is advisory: the direct JPEG insertion path was
	// unavailable and the document writer recompressed the image.
	ErrCapabilityDegraded = errors.New("direct JPEG insertion unavailable")

	// ErrCancelled marks items that were not started because the job was cancelled.
	ErrCancelled = errors.New("cancelled before processing")

	// ErrNoSuccess is the job-level error when every item failed.
	ErrNoSuccess = errors.New("no item succeeded")

	// Job validation errors.
	ErrNoImages            = errors.New("no source images")
	ErrNoDocuments         = errors.New("no source documents")
	ErrEmptyTarget         = errors.New("output target cannot be empty")
	ErrInvalidOutputMode   = errors.New("invalid output mode")
	ErrInvalidMargin       = errors.New("invalid margin")
	ErrInvalidQuality      = errors.New("invalid JPEG quality")
	ErrInvalidDPI          = errors.New("invalid DPI")
	ErrInvalidRasterFormat = errors.New("invalid raster format")
	ErrInvalidEmbedding    = errors.New("invalid embedding mode")
	ErrNilSizing           = errors.New("sizing policy is required")
	ErrNilEmbedding        = errors.New("embedding mode is required")

	// ErrBusy is returned by Worker when a job is already running.
	ErrBusy = errors.New("worker is busy")
)
