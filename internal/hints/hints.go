// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/photopdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the per-user config location among searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	marker := string(filepath.Separator) + "photopdf" + string(filepath.Separator)
	for _, p := range searchedPaths {
		if strings.Contains(p, marker) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation or write errors.
func ForOutputDirectory() string {
	hints := []string{"check parent directory exists and is writable"}
	if IsInContainer() {
		hints = append(hints, "mount the output directory as a volume")
	}
	return formatHints(hints)
}

// ForDocument returns hints for PDFs that cannot be opened.
func ForDocument() string {
	return format("check the file is a PDF and not password-protected")
}

// ForUnsupportedImage lists the accepted source extensions.
func ForUnsupportedImage(extensions []string) string {
	if len(extensions) == 0 {
		return ""
	}
	return format("supported formats: " + strings.Join(extensions, ", "))
}

// ForDegraded explains how to avoid the second JPEG compression pass.
// directDisabled reports whether the user turned direct insertion off.
func ForDegraded(directDisabled bool) string {
	if directDisabled {
		return format("drop --no-direct-jpeg to embed JPEG data without recompression")
	}
	return format("use --embed png for lossless pages")
}

// ForLocked returns a hint when another process holds the output lock.
func ForLocked(target string) string {
	return format(fmt.Sprintf("another photopdf run is writing %s; wait for it or choose another output", target))
}

// ForRasterDPI returns a hint for a rasterization DPI below the minimum.
func ForRasterDPI(minDPI float64) string {
	return format(fmt.Sprintf("use --dpi %g or higher (300 for print, 150 for screen)", minDPI))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
