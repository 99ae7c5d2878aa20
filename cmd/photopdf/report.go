package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/fileutil"
	"github.com/alnah/photopdf/internal/hints"
)

// ErrPartial is returned when a job completed but some items failed.
var ErrPartial = errors.New("some items failed")

// reportOptions controls how much of a result is printed.
type reportOptions struct {
	quiet        bool
	verbose      bool
	degradedHint string // appended to the degraded warning
}

// printResult writes failures and warnings to stderr and outputs to stdout.
// Items skipped by cancellation are summarized in one line.
func printResult(env *Environment, res *photopdf.Result, opts reportOptions) {
	skipped := 0
	for _, it := range res.Items {
		switch {
		case it.OK():
		case errors.Is(it.Err, photopdf.ErrCancelled):
			skipped++
		default:
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", itemLabel(it), it.Err)
		}
	}
	if skipped > 0 {
		fmt.Fprintf(env.Stderr, "interrupted: %d item(s) not processed\n", skipped)
	}

	if opts.quiet {
		return
	}

	for _, w := range res.AllWarnings() {
		fmt.Fprintf(env.Stderr, "warning: %s\n", w)
		if errors.Is(w.Err(), photopdf.ErrCapabilityDegraded) && opts.degradedHint != "" {
			fmt.Fprintln(env.Stderr, strings.TrimPrefix(opts.degradedHint, "\n"))
		}
	}

	if opts.verbose && len(res.Items) > 0 {
		fmt.Fprintln(env.Stdout, renderItems(res.Items))
	}

	for _, out := range res.Outputs {
		fmt.Fprintf(env.Stdout, "Created %s%s\n", out, sizeSuffix(out))
	}

	if len(res.Items) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", res.Succeeded(), res.Failed())
	}
}

// renderItems lays out per-item outcomes as a table.
func renderItems(items []photopdf.ItemResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Source", "Page", "Output", "Status", "Time"})

	for _, it := range items {
		status := "ok"
		if !it.OK() {
			status = "failed"
		}
		out := ""
		if it.Output != "" {
			out = filepath.Base(it.Output)
		}
		tw.AppendRow(table.Row{
			it.Index + 1,
			filepath.Base(it.Source),
			pageCell(it),
			out,
			status,
			it.Duration.Round(time.Millisecond).String(),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tw.Render()
}

// pageCell shows the PDF page for rasterization or the resolved page size.
func pageCell(it photopdf.ItemResult) string {
	switch {
	case it.Page > 0:
		return fmt.Sprintf("p%d", it.Page)
	case it.Spec != nil:
		cell := fmt.Sprintf("%.0fx%.0f pt", it.Spec.Width, it.Spec.Height)
		if note := it.Spec.Note(); note != "" {
			cell += ", " + note
		}
		return cell
	default:
		return ""
	}
}

func itemLabel(it photopdf.ItemResult) string {
	if it.Page > 0 {
		return fmt.Sprintf("%s (page %d)", it.Source, it.Page)
	}
	return it.Source
}

// sizeSuffix returns " (1.2 MB)" for an existing file, "" otherwise.
func sizeSuffix(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return " (" + fileutil.FormatBytes(info.Size()) + ")"
}

// resultError turns a finished result into the command's error.
// A completed job with failed items is partial; a failed job carries the
// first item error so the exit code reflects the actual cause.
func resultError(res *photopdf.Result) error {
	switch res.Status {
	case photopdf.StatusCompleted:
		if n := res.Failed(); n > 0 {
			return fmt.Errorf("%w: %d of %d", ErrPartial, n, len(res.Items))
		}
		return nil
	case photopdf.StatusCancelled:
		return fmt.Errorf("interrupted: %w", res.Err)
	}

	first := firstItemErr(res.Items)
	if first == nil || errors.Is(res.Err, first) {
		return fmt.Errorf("%w%s", res.Err, hintFor(res.Err))
	}
	return fmt.Errorf("%w: %w%s", res.Err, first, hintFor(first))
}

func firstItemErr(items []photopdf.ItemResult) error {
	for _, it := range items {
		if it.Err != nil && !errors.Is(it.Err, photopdf.ErrCancelled) {
			return it.Err
		}
	}
	return nil
}

// hintFor picks the hint matching a failure class.
func hintFor(err error) string {
	switch {
	case errors.Is(err, photopdf.ErrDocument):
		return hints.ForDocument()
	case errors.Is(err, photopdf.ErrIO):
		return hints.ForOutputDirectory()
	case errors.Is(err, photopdf.ErrInput):
		return hints.ForUnsupportedImage(photopdf.SupportedExtensions)
	default:
		return ""
	}
}

// printError writes err to w in the CLI's format.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
