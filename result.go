package photopdf

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a job.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Terminal reports whether s is Completed, Cancelled or Failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// WarningCode identifies a non-fatal degradation.
type WarningCode string

const (
	WarnCapabilityDegraded   WarningCode = "capability_degraded"
	WarnOriginalNotPreserved WarningCode = "original_not_preserved"
	WarnOrientationMalformed WarningCode = "orientation_malformed"
)

// Warning is an advisory attached to an item or to the whole job.
type Warning struct {
	Code    WarningCode
	Source  string // empty for job-level warnings
	Message string
}

// Err returns the warning as an error. Capability degradation wraps
// ErrCapabilityDegraded so callers can match it with errors.Is.
func (w Warning) Err() error {
	if w.Code == WarnCapabilityDegraded {
		return fmt.Errorf("%w: %s", ErrCapabilityDegraded, w.Message)
	}
	return errors.New(w.String())
}

func (w Warning) String() string {
	if w.Source == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Code, w.Source, w.Message)
}

// ItemResult is the outcome of one image (composition) or one page (rasterization).
type ItemResult struct {
	Index    int    // position in processing order, 0-based
	Source   string // image or PDF path
	Page     int    // 1-based PDF page for rasterization, 0 otherwise
	Output   string // written file, empty on failure or for pages of a combined document
	Spec     *PageSpec
	Warnings []Warning
	Err      error
	Duration time.Duration
}

// OK reports whether the item succeeded.
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// Result summarizes a finished job.
type Result struct {
	JobID    string
	Status   Status
	Items    []ItemResult
	Outputs  []string
	Warnings []Warning // job-level advisories, each reported once
	Degraded bool      // direct JPEG insertion was needed but unavailable
	Err      error     // terminal reason for Failed or Cancelled
	Started  time.Time
	Finished time.Time
}

// Succeeded counts successful items.
func (r *Result) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.OK() {
			n++
		}
	}
	return n
}

// Failed counts failed or skipped items.
func (r *Result) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// AllWarnings returns job-level warnings followed by per-item warnings.
func (r *Result) AllWarnings() []Warning {
	out := append([]Warning(nil), r.Warnings...)
	for _, it := range r.Items {
		out = append(out, it.Warnings...)
	}
	return out
}

// Progress is delivered after each image or page, in processing order.
type Progress struct {
	Index int // 1-based count of items processed so far
	Total int
	Item  ItemResult
}

// ProgressFunc receives progress notifications. It runs on the job's goroutine.
type ProgressFunc func(Progress)
