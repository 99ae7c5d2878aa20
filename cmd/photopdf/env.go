package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/photopdf/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and the engine factory.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // Loaded once per command

	// NewEngine builds the engine for a run; tests swap in fakes.
	NewEngine engineFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Config:    config.DefaultConfig(),
		NewEngine: newEngine,
	}
}
