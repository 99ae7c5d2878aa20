package photopdf

import (
	"context"
	"sync"
)

// Worker runs one job at a time in a background goroutine so the caller is
// never blocked. A submission while a job is in flight returns ErrBusy.
type Worker struct {
	engine *Engine

	mu      sync.Mutex
	current *Run
}

// NewWorker creates a single-slot worker backed by e.
func NewWorker(e *Engine) *Worker {
	return &Worker{engine: e}
}

// Run is a handle on one background job.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	state  Status
	result *Result
	err    error
}

// StartCompose validates job and starts composing it in the background.
// progress, when non-nil, is called from the worker goroutine.
func (w *Worker) StartCompose(ctx context.Context, job Job, progress ProgressFunc) (*Run, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return w.start(ctx, func(ctx context.Context) (*Result, error) {
		return w.engine.Compose(ctx, job, progress)
	})
}

// StartRasterize validates job and starts rasterizing it in the background.
func (w *Worker) StartRasterize(ctx context.Context, job RasterJob, progress ProgressFunc) (*Run, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return w.start(ctx, func(ctx context.Context) (*Result, error) {
		return w.engine.Rasterize(ctx, job, progress)
	})
}

// Busy reports whether a job is in flight.
func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current != nil && !w.current.State().Terminal()
}

func (w *Worker) start(parent context.Context, fn func(context.Context) (*Result, error)) (*Run, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current != nil && !w.current.State().Terminal() {
		return nil, ErrBusy
	}

	ctx, cancel := context.WithCancel(parent)
	run := &Run{
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StatusRunning,
	}
	w.current = run

	go func() {
		defer cancel()
		res, err := fn(ctx)
		run.finish(res, err)
	}()
	return run, nil
}

func (r *Run) finish(res *Result, err error) {
	r.mu.Lock()
	r.result, r.err = res, err
	switch {
	case err != nil || res == nil:
		r.state = StatusFailed
	default:
		r.state = res.Status
	}
	r.mu.Unlock()
	close(r.done)
}

// Cancel requests cooperative cancellation. The job stops at its next
// suspension point; in-flight work completes first.
func (r *Run) Cancel() {
	r.cancel()
}

// Done is closed once the job reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the job ends and returns its outcome.
func (r *Run) Wait() (*Result, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

// JobID returns the job's identifier once it has finished, "" before.
func (r *Run) JobID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return ""
	}
	return r.result.JobID
}

// State returns Running until the job ends, then its terminal status.
func (r *Run) State() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
