package main

import (
	"io"
	"log/slog"
)

// newLogger builds the stderr text logger for a command.
// Quiet shows errors only; verbose adds per-item debug records.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
