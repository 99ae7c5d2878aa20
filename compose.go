package photopdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alnah/photopdf/internal/fileutil"
)

// defaultStem names per-image outputs whose source has no usable stem.
const defaultStem = "image"

// Compose turns job.Images into PDF pages, in order.
//
// The returned error is non-nil only when the job cannot start (validation
// or an unusable output directory). Everything after that is reported in the
// Result: per-image failures do not stop the batch, and only zero successes
// make the job Failed. ctx is checked before each image; on cancellation the
// remaining images are recorded with ErrCancelled, per-image documents already
// written stay on disk, and a combined document is discarded.
//
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Engine) Compose(ctx context.Context, job Job, progress ProgressFunc) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := job.Validate(); err != nil {
		return nil, err
	}
	proc, err := Select(job.Embedding, e.caps)
	if err != nil {
		return nil, err
	}
	dir := job.Target
	if job.Output == OutputSingle {
		dir = filepath.Dir(job.Target)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", ErrIO, err)
	}

	c := &composition{
		engine:   e,
		job:      job,
		proc:     proc,
		progress: progress,
		used:     map[string]bool{},
		result: &Result{
			JobID:   e.newID(),
			Status:  StatusRunning,
			Started: e.now(),
		},
	}
	c.log = e.logger.With("job_id", c.result.JobID)
	c.run(ctx)
	return c.result, nil
}

// composition is the state of one running Compose call.
type composition struct {
	engine   *Engine
	job      Job
	proc     Procedure
	progress ProgressFunc
	result   *Result
	log      *slog.Logger

	doc      pageWriter // combined document, nil in per-image mode
	appended []int      // item indexes whose page is in doc
	used     map[string]bool
}

func (c *composition) run(ctx context.Context) {
	job := c.job
	c.log.Info("compose started",
		"images", len(job.Images),
		"sizing", job.Sizing.String(),
		"embedding", job.Embedding.String(),
		"output", job.Output.String(),
		"capabilities", c.engine.caps.String())

	if job.Output == OutputSingle {
		c.doc = c.engine.newDocument()
	}

	total := len(job.Images)
	cancelled := false
	for i, path := range job.Images {
		if ctx.Err() != nil {
			c.skipRemaining(i)
			cancelled = true
			break
		}
		item := c.processImage(i, path)
		c.result.Items = append(c.result.Items, item)
		if c.progress != nil {
			c.progress(Progress{Index: i + 1, Total: total, Item: item})
		}
	}

	switch {
	case cancelled:
		c.finishCancelled(ctx.Err())
	case job.Output == OutputSingle:
		c.finishSingle()
	default:
		c.finishPerImage()
	}

	c.result.Finished = c.engine.now()
	c.log.Info("compose finished",
		"status", c.result.Status.String(),
		"succeeded", c.result.Succeeded(),
		"failed", c.result.Failed(),
		"degraded", c.result.Degraded)
}

// processImage runs normalize, resolve and embed for one image, then appends
// its page. Failures are returned in the item, never panicked or propagated.
func (c *composition) processImage(index int, path string) ItemResult {
	start := c.engine.now()
	item := ItemResult{Index: index, Source: path}

	fail := func(err error) ItemResult {
		item.Err = err
		item.Duration = c.engine.now().Sub(start)
		c.log.Warn("image skipped", "source", path, "error", err)
		return item
	}

	src, err := LoadSource(path)
	if err != nil {
		return fail(err)
	}

	var warns []Warning
	if c.job.IgnoreOrientation {
		src = clearOrientation(src)
	} else {
		src, warns = Normalize(src)
		c.addWarnings(&item, warns)
	}

	spec, err := Resolve(c.job.Sizing, src, c.job.Margin)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", path, err))
	}
	item.Spec = &spec

	embedded, warns, err := c.proc.Apply(src)
	if err != nil {
		return fail(err)
	}

	if c.job.Output == OutputSingle {
		if err := c.doc.AddPage(spec, embedded); err != nil {
			return fail(fmt.Errorf("%s: %w", path, err))
		}
		c.appended = append(c.appended, index)
	} else {
		out, err := c.writeSingle(path, spec, embedded)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", path, err))
		}
		item.Output = out
		c.result.Outputs = append(c.result.Outputs, out)
	}
	// Degradation warnings only count once the page really exists.
	c.addWarnings(&item, warns)

	c.log.Debug("image added",
		"source", path,
		"page_width", spec.Width,
		"page_height", spec.Height,
		"dpi", spec.Note(),
		"kind", string(embedded.Kind),
		"direct", embedded.Direct)
	item.Duration = c.engine.now().Sub(start)
	return item
}

// writeSingle finalizes a one-page document for path before the next image starts.
func (c *composition) writeSingle(path string, spec PageSpec, img Embedded) (string, error) {
	stem := fileutil.Stem(path)
	if stem == "" {
		stem = defaultStem
	}
	out := filepath.Join(c.job.Target, fileutil.UniqueName(c.used, stem, ".pdf"))

	doc := c.engine.newDocument()
	if err := doc.AddPage(spec, img); err != nil {
		doc.Discard()
		return "", err
	}
	if err := doc.Finalize(out, c.job.Metadata, c.engine.now()); err != nil {
		doc.Discard()
		return "", err
	}
	return out, nil
}

// addWarnings keeps item-specific warnings on the item and lifts capability
// degradation to a single job-level warning.
func (c *composition) addWarnings(item *ItemResult, warns []Warning) {
	for _, w := range warns {
		if w.Code != WarnCapabilityDegraded {
			item.Warnings = append(item.Warnings, w)
			continue
		}
		if c.result.Degraded {
			continue
		}
		c.result.Degraded = true
		c.result.Warnings = append(c.result.Warnings, Warning{
			Code:    WarnCapabilityDegraded,
			Message: w.Message,
		})
		c.log.Warn("capability degraded", "source", w.Source, "detail", w.Message)
	}
}

func (c *composition) skipRemaining(from int) {
	for j := from; j < len(c.job.Images); j++ {
		c.result.Items = append(c.result.Items, ItemResult{
			Index:  j,
			Source: c.job.Images[j],
			Err:    ErrCancelled,
		})
	}
}

func (c *composition) finishCancelled(cause error) {
	if c.doc != nil {
		c.doc.Discard()
		for _, idx := range c.appended {
			c.result.Items[idx].Err = fmt.Errorf("%w: combined document discarded", ErrCancelled)
		}
	}
	c.result.Status = StatusCancelled
	c.result.Err = errors.Join(ErrCancelled, cause)
}

func (c *composition) finishSingle() {
	if len(c.appended) == 0 {
		c.doc.Discard()
		c.result.Status = StatusFailed
		c.result.Err = ErrNoSuccess
		return
	}

	err := c.doc.Finalize(c.job.Target, c.job.Metadata, c.engine.now())
	if err != nil {
		c.doc.Discard()
		// The whole document is lost, so every page in it failed.
		for _, idx := range c.appended {
			c.result.Items[idx].Err = err
		}
		c.result.Status = StatusFailed
		c.result.Err = err
		c.log.Error("finalize failed", "output", c.job.Target, "error", err)
		return
	}

	for _, idx := range c.appended {
		c.result.Items[idx].Output = c.job.Target
	}
	c.result.Outputs = []string{c.job.Target}
	c.result.Status = StatusCompleted
}

func (c *composition) finishPerImage() {
	if c.result.Succeeded() == 0 {
		c.result.Status = StatusFailed
		c.result.Err = ErrNoSuccess
		return
	}
	c.result.Status = StatusCompleted
}
