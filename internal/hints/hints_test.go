package hints

// Notes:
// - ForOutputDirectory tests cannot use t.Parallel() because they modify the
//   package-level IsInContainer variable.

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	userPath := filepath.Join("home", "sam", ".config", "photopdf", "album.yaml")

	tests := []struct {
		name     string
		paths    []string
		contains string
		excludes string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
			excludes: "create",
		},
		{
			name:     "local paths only",
			paths:    []string{"album.yaml", "album.yml"},
			contains: "--config",
			excludes: "create",
		},
		{
			name:     "user config path suggested",
			paths:    []string{"album.yaml", userPath},
			contains: "create " + userPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.paths)
			if !strings.Contains(hint, "hint:") {
				t.Error("expected hint prefix")
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
			if tt.excludes != "" && strings.Contains(hint, tt.excludes) {
				t.Errorf("hint should not contain %q, got %q", tt.excludes, hint)
			}
		})
	}
}

func TestForOutputDirectory_Host(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	hint := ForOutputDirectory()
	if !strings.Contains(hint, "parent directory") {
		t.Errorf("expected parent directory mention, got %q", hint)
	}
	if strings.Contains(hint, "volume") {
		t.Errorf("volume hint outside a container: %q", hint)
	}
}

func TestForOutputDirectory_Container(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	hint := ForOutputDirectory()
	if !strings.Contains(hint, "parent directory; mount the output directory as a volume") {
		t.Errorf("expected both hints joined, got %q", hint)
	}
}

func TestForUnsupportedImage(t *testing.T) {
	t.Parallel()

	if got := ForUnsupportedImage(nil); got != "" {
		t.Errorf("ForUnsupportedImage(nil) = %q, want empty", got)
	}
	got := ForUnsupportedImage([]string{".jpg", ".png"})
	if !strings.Contains(got, "supported formats: .jpg, .png") {
		t.Errorf("ForUnsupportedImage() = %q", got)
	}
}

func TestForDegraded(t *testing.T) {
	t.Parallel()

	if got := ForDegraded(true); !strings.Contains(got, "--no-direct-jpeg") {
		t.Errorf("ForDegraded(true) = %q, want flag mention", got)
	}
	if got := ForDegraded(false); !strings.Contains(got, "--embed png") {
		t.Errorf("ForDegraded(false) = %q, want --embed png", got)
	}
}

func TestForLocked(t *testing.T) {
	t.Parallel()

	got := ForLocked("album.pdf")
	if !strings.Contains(got, "album.pdf") {
		t.Errorf("ForLocked() = %q, want target mention", got)
	}
}

func TestForRasterDPI(t *testing.T) {
	t.Parallel()

	got := ForRasterDPI(36)
	if !strings.Contains(got, "--dpi 36") {
		t.Errorf("ForRasterDPI(36) = %q", got)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	if format("") != "" {
		t.Error("format(\"\") should be empty")
	}
	if formatHints(nil) != "" {
		t.Error("formatHints(nil) should be empty")
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q", got)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	hints := []string{
		ForConfigNotFound(nil),
		ForDocument(),
		ForDegraded(false),
		ForLocked("x.pdf"),
		ForRasterDPI(36),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
