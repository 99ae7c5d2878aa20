package main

// Notes:
// - This file contains test helpers shared by the command tests.
// - The PDF renderer is faked: go-fitz needs the MuPDF runtime, which the
//   unit tests must not depend on. Composition uses the real document writer.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/config"
)

// ---------------------------------------------------------------------------
// Fake Renderer - PDFs keyed by base name
// ---------------------------------------------------------------------------

// stubRenderer opens any PDF whose base name is listed in pages.
type stubRenderer struct {
	pages map[string]int
}

func (r stubRenderer) Open(path string) (photopdf.RenderedDocument, error) {
	n, ok := r.pages[filepath.Base(path)]
	if !ok {
		return nil, errors.New("not a PDF document")
	}
	return stubDocument{pages: n}, nil
}

type stubDocument struct {
	pages int
}

func (d stubDocument) NumPages() int { return d.pages }

// RenderPage returns a page whose size depends on dpi, like a real renderer.
func (d stubDocument) RenderPage(index int, dpi float64) (image.Image, error) {
	if index < 0 || index >= d.pages {
		return nil, errors.New("page out of range")
	}
	return imaging.New(int(dpi/4), int(dpi/2), color.NRGBA{R: 240, G: 240, B: 240, A: 255}), nil
}

func (d stubDocument) Close() error { return nil }

// ---------------------------------------------------------------------------
// Test Environment
// ---------------------------------------------------------------------------

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an environment whose engines use caps (reduced to the
// generic set when direct JPEG is switched off) and renderer.
func newTestEnv(caps photopdf.CapabilitySet, renderer photopdf.Renderer) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return testNow },
		Stdout: stdout,
		Stderr: stderr,
		Config: config.DefaultConfig(),
		NewEngine: func(o engineOptions) *photopdf.Engine {
			c := caps
			if !o.directJPEG {
				c = photopdf.CapabilitySet{}
			}
			opts := []photopdf.Option{photopdf.WithLogger(o.logger), photopdf.WithClock(o.now)}
			if renderer != nil {
				opts = append(opts, photopdf.WithRenderer(renderer))
			}
			return photopdf.NewEngine(c, opts...)
		},
	}
	return &testEnv{Environment: env, stdout: stdout, stderr: stderr}
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// writeImage saves a w x h image at dir/name; the format follows the extension.
func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("saving %s: %v", name, err)
	}
	return path
}

// writeFile writes raw bytes at dir/name.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// assertExists fails the test when path is missing.
func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

// assertMissing fails the test when path exists.
func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected %s to be absent, stat err = %v", path, err)
	}
}
