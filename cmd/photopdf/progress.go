package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/alnah/photopdf"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressReporter draws a progress bar on a terminal. It is inert when the
// writer is not a terminal or output is quiet, so logs and pipes stay clean.
type progressReporter struct {
	w     io.Writer
	label string
	bar   *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer, label string, enabled bool) *progressReporter {
	if !enabled || !isTerminal(w) {
		return &progressReporter{}
	}
	return &progressReporter{w: w, label: label}
}

// Update is a photopdf.ProgressFunc. The bar is created on the first call,
// once the total is known.
func (p *progressReporter) Update(pr photopdf.Progress) {
	if p.w == nil {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(pr.Total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(p.label),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(pr.Index)
}

// Finish clears the bar before the summary is printed.
func (p *progressReporter) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
