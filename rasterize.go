package photopdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/alnah/photopdf/internal/fileutil"
)

// RasterOutputName returns "<stem>_page_<NNN>.<ext>" for a 1-based page.
// Within one Rasterize call, a stem already taken by an earlier document
// becomes "<stem>_2", "<stem>_3", ...
func RasterOutputName(pdfPath string, page int, format RasterFormat) string {
	return pageName(fileutil.Stem(pdfPath), page, format)
}

func pageName(stem string, page int, format RasterFormat) string {
	return fmt.Sprintf("%s_page_%03d.%s", stem, page, format)
}

// Rasterize renders every page of job.PDFs to image files in job.OutputDir.
//
// A first pass counts pages so progress totals are known up front. A PDF
// that cannot be opened yields one item wrapping ErrDocument and no pages; a
// page that fails to render or write is recorded and skipped. ctx is checked
// before each page; pages not reached are recorded with ErrCancelled.
//
// The returned error is non-nil only when the job cannot start.
func (e *Engine) Rasterize(ctx context.Context, job RasterJob, progress ProgressFunc) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := job.Validate(); err != nil {
		return nil, err
	}
	job.Format, _ = ParseRasterFormat(string(job.Format))
	if err := os.MkdirAll(job.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", ErrIO, err)
	}

	r := &rasterization{
		engine:   e,
		job:      job,
		progress: progress,
		used:     map[string]bool{},
		result: &Result{
			JobID:   e.newID(),
			Status:  StatusRunning,
			Started: e.now(),
		},
	}
	r.log = e.logger.With("job_id", r.result.JobID)
	r.run(ctx)
	return r.result, nil
}

// rasterization is the state of one running Rasterize call.
type rasterization struct {
	engine   *Engine
	job      RasterJob
	progress ProgressFunc
	result   *Result
	log      *slog.Logger

	done  int
	total int
	used  map[string]bool // document stems already claimed in OutputDir
}

func (r *rasterization) run(ctx context.Context) {
	r.log.Info("rasterize started",
		"documents", len(r.job.PDFs),
		"dpi", r.job.DPI,
		"format", string(r.job.Format))

	counts, cancelled := r.countPages(ctx)

	for i, path := range r.job.PDFs {
		if cancelled {
			r.skipDocument(path, counts[i])
			continue
		}
		if counts[i] < 0 {
			r.record(ItemResult{Source: path, Err: r.openErr(path)})
			continue
		}
		cancelled = r.renderDocument(ctx, path, counts[i])
	}

	switch {
	case cancelled:
		r.result.Status = StatusCancelled
		r.result.Err = errors.Join(ErrCancelled, ctx.Err())
	case r.result.Succeeded() == 0:
		r.result.Status = StatusFailed
		r.result.Err = ErrNoSuccess
	default:
		r.result.Status = StatusCompleted
	}
	r.result.Finished = r.engine.now()

	r.log.Info("rasterize finished",
		"status", r.result.Status.String(),
		"written", r.result.Succeeded(),
		"failed", r.result.Failed())
}

// countPages opens each document once. A count of -1 marks a document that
// cannot be opened; it contributes one item to the total.
func (r *rasterization) countPages(ctx context.Context) ([]int, bool) {
	counts := make([]int, len(r.job.PDFs))
	for i, path := range r.job.PDFs {
		if ctx.Err() != nil {
			for j := i; j < len(counts); j++ {
				counts[j] = 0
			}
			return counts, true
		}
		doc, err := r.engine.renderer.Open(path)
		if err != nil {
			counts[i] = -1
			r.total++
			continue
		}
		counts[i] = doc.NumPages()
		r.total += counts[i]
		_ = doc.Close()
	}
	return counts, false
}

// openErr re-derives the open failure for the item record.
func (r *rasterization) openErr(path string) error {
	doc, err := r.engine.renderer.Open(path)
	if err == nil {
		_ = doc.Close()
		return fmt.Errorf("%w: %s: page count unavailable", ErrDocument, path)
	}
	if !errors.Is(err, ErrDocument) {
		err = fmt.Errorf("%w: %v", ErrDocument, err)
	}
	r.log.Warn("document skipped", "source", path, "error", err)
	return err
}

// renderDocument writes each page of path and reports whether ctx was
// cancelled along the way.
func (r *rasterization) renderDocument(ctx context.Context, path string, pages int) bool {
	doc, err := r.engine.renderer.Open(path)
	if err != nil {
		if !errors.Is(err, ErrDocument) {
			err = fmt.Errorf("%w: %v", ErrDocument, err)
		}
		r.record(ItemResult{Source: path, Err: err})
		return false
	}
	defer func() { _ = doc.Close() }()

	stem := fileutil.UniqueName(r.used, fileutil.Stem(path), "")
	for page := 1; page <= pages; page++ {
		if ctx.Err() != nil {
			for p := page; p <= pages; p++ {
				r.result.Items = append(r.result.Items, ItemResult{
					Index: len(r.result.Items), Source: path, Page: p, Err: ErrCancelled,
				})
			}
			return true
		}
		r.record(r.renderPage(doc, path, stem, page))
	}
	return false
}

func (r *rasterization) renderPage(doc RenderedDocument, path, stem string, page int) ItemResult {
	start := r.engine.now()
	item := ItemResult{Source: path, Page: page}

	img, err := doc.RenderPage(page-1, r.job.DPI)
	if err != nil {
		item.Err = fmt.Errorf("%w: %s page %d: %v", ErrRender, path, page, err)
		item.Duration = r.engine.now().Sub(start)
		r.log.Warn("page skipped", "source", path, "page", page, "error", err)
		return item
	}

	data, err := encodeRaster(img, r.job.Format, r.job.quality())
	if err != nil {
		item.Err = fmt.Errorf("%w: %s page %d: encoding: %v", ErrRender, path, page, err)
		item.Duration = r.engine.now().Sub(start)
		return item
	}

	out := filepath.Join(r.job.OutputDir, pageName(stem, page, r.job.Format))
	err = fileutil.WriteAtomic(out, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		item.Err = fmt.Errorf("%w: %v", ErrIO, err)
		item.Duration = r.engine.now().Sub(start)
		r.log.Warn("page not written", "source", path, "page", page, "error", err)
		return item
	}

	item.Output = out
	item.Duration = r.engine.now().Sub(start)
	r.result.Outputs = append(r.result.Outputs, out)
	r.log.Debug("page written", "source", path, "page", page, "output", out)
	return item
}

// skipDocument records not-yet-started pages of a document after cancellation.
func (r *rasterization) skipDocument(path string, pages int) {
	if pages <= 0 {
		r.result.Items = append(r.result.Items, ItemResult{
			Index: len(r.result.Items), Source: path, Err: ErrCancelled,
		})
		return
	}
	for p := 1; p <= pages; p++ {
		r.result.Items = append(r.result.Items, ItemResult{
			Index: len(r.result.Items), Source: path, Page: p, Err: ErrCancelled,
		})
	}
}

// record appends a processed item and reports progress.
func (r *rasterization) record(item ItemResult) {
	item.Index = len(r.result.Items)
	r.result.Items = append(r.result.Items, item)
	r.done++
	if r.progress != nil {
		r.progress(Progress{Index: r.done, Total: r.total, Item: item})
	}
}

// encodeRaster flattens transparency onto white and encodes the page.
func encodeRaster(img image.Image, format RasterFormat, quality int) ([]byte, error) {
	flat := flatten(img)
	var buf bytes.Buffer
	var err error
	switch format {
	case RasterJPEG:
		err = imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		err = imaging.Encode(&buf, flat, imaging.PNG)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
