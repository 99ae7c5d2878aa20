package main

import (
	"errors"
	"os"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/config"
)

// Exit codes for the photopdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every item succeeded
	ExitGeneral = 1 // General/unexpected error, interruption
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Unreadable input, unwritable output
	ExitRender  = 4 // PDF open or page render failures
	ExitPartial = 5 // Job completed but some items failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrPartial) {
		return ExitPartial
	}

	// Render/document errors (exit 4)
	if errors.Is(err, photopdf.ErrDocument) ||
		errors.Is(err, photopdf.ErrRender) {
		return ExitRender
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, photopdf.ErrIO) ||
		errors.Is(err, photopdf.ErrInput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoFilesFound) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, photopdf.ErrGeometry) ||
		errors.Is(err, photopdf.ErrInvalidMargin) ||
		errors.Is(err, photopdf.ErrInvalidQuality) ||
		errors.Is(err, photopdf.ErrInvalidDPI) ||
		errors.Is(err, photopdf.ErrInvalidRasterFormat) ||
		errors.Is(err, photopdf.ErrInvalidEmbedding) ||
		errors.Is(err, photopdf.ErrEmptyTarget) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
