package photopdf

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Engine runs composition and rasterization jobs. It holds only read-only
// configuration, so one Engine may serve any number of sequential or
// concurrent jobs; each job owns its own documents.
type Engine struct {
	caps        CapabilitySet
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	newDocument func() pageWriter
	renderer    Renderer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used for durations and document dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRenderer replaces the PDF renderer used by Rasterize.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// withDocumentFactory replaces the document writer (tests).
func withDocumentFactory(f func() pageWriter) Option {
	return func(e *Engine) {
		e.newDocument = f
	}
}

// NewEngine creates an Engine bound to caps. Capabilities are fixed for the
// Engine's lifetime; probe them once with ProbeCapabilities.
func NewEngine(caps CapabilitySet, opts ...Option) *Engine {
	e := &Engine{
		caps:        caps,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		newID:       uuid.NewString,
		newDocument: newGofpdfDocument,
		renderer:    NewFitzRenderer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Capabilities returns the capability set the Engine was built with.
func (e *Engine) Capabilities() CapabilitySet {
	return e.caps
}
