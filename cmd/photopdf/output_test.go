package main

// Notes:
// - newLogger: we test level selection through Enabled, not record layout.
// - progressReporter: only the inert path is testable without a TTY; a
//   bytes.Buffer is never a terminal, so nothing may be drawn.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alnah/photopdf"
)

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		quiet, verbose bool
		enabled        slog.Level
		disabled       slog.Level
	}{
		{"default", false, false, slog.LevelWarn, slog.LevelInfo},
		{"quiet", true, false, slog.LevelError, slog.LevelWarn},
		{"verbose", false, true, slog.LevelDebug, slog.LevelDebug - 1},
		{"quiet wins", true, true, slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := newLogger(&buf, tt.quiet, tt.verbose)
			ctx := context.Background()
			if !l.Enabled(ctx, tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if l.Enabled(ctx, tt.disabled) {
				t.Errorf("level %v should be disabled", tt.disabled)
			}
		})
	}
}

func TestProgressReporter_InertWithoutTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := newProgressReporter(&buf, "converting", true)
	p.Update(photopdf.Progress{Index: 1, Total: 3})
	p.Update(photopdf.Progress{Index: 3, Total: 3})
	p.Finish()

	if buf.Len() != 0 {
		t.Errorf("non-terminal writer should stay clean, got %q", buf.String())
	}
}

func TestProgressReporter_Disabled(t *testing.T) {
	t.Parallel()

	p := newProgressReporter(os.Stderr, "rendering", false)
	p.Update(photopdf.Progress{Index: 1, Total: 1})
	p.Finish()

	if p.bar != nil {
		t.Error("disabled reporter should never create a bar")
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	t.Parallel()

	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
