package main

import (
	"log/slog"
	"time"

	"github.com/alnah/photopdf"
)

// engineOptions carries what a command decides about its engine.
type engineOptions struct {
	directJPEG bool // probe direct insertion; false forces the generic path
	logger     *slog.Logger
	now        func() time.Time
}

// engineFactory builds the engine for one command run.
type engineFactory func(engineOptions) *photopdf.Engine

// newEngine probes capabilities once and builds the production engine.
func newEngine(o engineOptions) *photopdf.Engine {
	var caps photopdf.CapabilitySet
	if o.directJPEG {
		caps = photopdf.ProbeCapabilities()
	}
	return photopdf.NewEngine(caps,
		photopdf.WithLogger(o.logger),
		photopdf.WithClock(o.now),
	)
}
