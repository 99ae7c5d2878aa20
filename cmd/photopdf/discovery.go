package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/fileutil"
	"github.com/alnah/photopdf/internal/hints"
)

// Sentinel errors for input discovery.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrNoFilesFound = errors.New("no matching files found")
)

// discoverImages expands args into the ordered image list.
func discoverImages(args []string) ([]string, error) {
	return discover(args, photopdf.IsSupportedImage, photopdf.SupportedExtensions)
}

// discoverPDFs expands args into the ordered PDF list.
func discoverPDFs(args []string) ([]string, error) {
	return discover(args, isPDF, []string{".pdf"})
}

// discover keeps explicit files in command-line order, even with an unknown
// extension, so the engine reports them as failed items. Directories expand
// to their accepted files, sorted by name, without recursion.
func discover(args []string, accept func(string) bool, exts []string) ([]string, error) {
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		// os.ReadDir returns entries sorted by filename.
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") || !accept(name) {
				continue
			}
			files = append(files, filepath.Join(arg, name))
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s%s", ErrNoFilesFound, strings.Join(args, ", "), hints.ForUnsupportedImage(exts))
	}
	return files, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// resolveConvertTarget picks the output PDF (single) or directory (per photo).
// Precedence: --output, then the configured default directory, then the
// directory of the first image. A single document is named after the first
// image unless --output already names a .pdf file.
func resolveConvertTarget(images []string, output, defaultDir string, perPhoto bool) string {
	dir := output
	if dir == "" {
		dir = defaultDir
	}
	if dir == "" {
		dir = filepath.Dir(images[0])
	}

	if perPhoto {
		return dir
	}
	if strings.EqualFold(filepath.Ext(dir), ".pdf") {
		return dir
	}
	return filepath.Join(dir, fileutil.Stem(images[0])+".pdf")
}

// resolveRasterDir picks the directory receiving rendered pages.
func resolveRasterDir(pdfs []string, output, defaultDir string) string {
	switch {
	case output != "":
		return output
	case defaultDir != "":
		return defaultDir
	default:
		return filepath.Dir(pdfs[0])
	}
}
