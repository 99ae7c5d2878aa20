package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/disintegration/imaging"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/fileutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status       string         `json:"status"` // "ready", "warnings", "errors"
	Capabilities capabilityInfo `json:"capabilities"`
	Renderer     rendererInfo   `json:"renderer"`
	Env          envInfo        `json:"environment"`
	System       systemInfo     `json:"system"`
	Warnings     []string       `json:"warnings,omitempty"`
	Errors       []string       `json:"errors,omitempty"`
}

// capabilityInfo holds the document writer probe result.
type capabilityInfo struct {
	DirectJPEG bool   `json:"direct_jpeg"`
	Mode       string `json:"mode"`
}

// rendererInfo holds the compose-then-rasterize round trip result.
type rendererInfo struct {
	OK    bool   `json:"ok"`
	Pages int    `json:"pages"`
	Error string `json:"error,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	CPUs          int    `json:"cpus"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable    bool   `json:"temp_writable"`
	ConfigDir       string `json:"config_dir,omitempty"`
	ConfigDirExists bool   `json:"config_dir_exists"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
			CPUs: runtime.GOMAXPROCS(0),
		},
	}

	factory := env.NewEngine
	if factory == nil {
		factory = newEngine
	}
	engine := factory(engineOptions{
		directJPEG: true,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        env.Now,
	})

	checkCapabilities(result, engine)
	checkSystem(result)
	if result.System.TempWritable {
		checkRenderer(result, engine)
	}
	checkEnvironment(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkCapabilities reports whether JPEG data can be inserted verbatim.
func checkCapabilities(result *doctorResult, engine *photopdf.Engine) {
	caps := engine.Capabilities()
	result.Capabilities = capabilityInfo{DirectJPEG: caps.DirectJPEG, Mode: caps.String()}
	if !caps.DirectJPEG {
		result.Warnings = append(result.Warnings,
			"Direct JPEG insertion unavailable: JPEG pages are recompressed. Use --embed png for lossless output")
	}
}

// checkRenderer composes a one-page PDF from a generated image and renders
// it back, which exercises both the document writer and MuPDF.
func checkRenderer(result *doctorResult, engine *photopdf.Engine) {
	dir, err := os.MkdirTemp("", "photopdf-doctor-")
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot create temp directory: %v", err))
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	fail := func(err error) {
		result.Renderer.Error = err.Error()
		result.Errors = append(result.Errors, fmt.Sprintf("PDF round trip failed: %v", err))
	}

	probe := filepath.Join(dir, "probe.png")
	if err := imaging.Save(imaging.New(16, 8, color.White), probe); err != nil {
		fail(err)
		return
	}

	ctx := context.Background()
	pdfPath := filepath.Join(dir, "probe.pdf")
	res, err := engine.Compose(ctx, photopdf.Job{
		Images:    []string{probe},
		Sizing:    photopdf.MatchPixels{},
		Embedding: photopdf.LosslessPNG{},
		Output:    photopdf.OutputSingle,
		Target:    pdfPath,
	}, nil)
	if err == nil && res.Status != photopdf.StatusCompleted {
		err = res.Err
	}
	if err != nil {
		fail(err)
		return
	}

	res, err = engine.Rasterize(ctx, photopdf.RasterJob{
		PDFs:      []string{pdfPath},
		OutputDir: dir,
		DPI:       72,
		Format:    photopdf.RasterPNG,
	}, nil)
	if err == nil && res.Status != photopdf.StatusCompleted {
		err = firstItemErr(res.Items)
		if err == nil {
			err = res.Err
		}
	}
	if err != nil {
		fail(err)
		return
	}

	result.Renderer.OK = true
	result.Renderer.Pages = len(res.Outputs)
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Env.Container && !result.Renderer.OK && result.Renderer.Error != "" {
		result.Warnings = append(result.Warnings,
			"Container detected: make sure the image ships the MuPDF runtime libraries")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("PHOTOPDF_CONTAINER") == "1" {
		return true, "PHOTOPDF_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory and locates the user config directory.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "photopdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}

	if dir, err := os.UserConfigDir(); err == nil {
		result.System.ConfigDir = filepath.Join(dir, "photopdf")
		result.System.ConfigDirExists = fileutil.DirExists(result.System.ConfigDir)
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "photopdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Document writer")
	if r.Capabilities.DirectJPEG {
		fmt.Fprintln(w, "  [OK] Direct JPEG insertion: available")
	} else {
		fmt.Fprintln(w, "  [WARN] Direct JPEG insertion: unavailable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Renderer (MuPDF)")
	switch {
	case r.Renderer.OK:
		fmt.Fprintf(w, "  [OK] Round trip: %d page(s) rendered\n", r.Renderer.Pages)
	case r.Renderer.Error != "":
		fmt.Fprintf(w, "  [ERROR] Round trip: %s\n", r.Renderer.Error)
	default:
		fmt.Fprintln(w, "  [SKIP] Round trip: not run")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s (%d CPUs)\n", r.Env.OS, r.Env.Arch, r.Env.CPUs)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	switch {
	case r.System.ConfigDirExists:
		fmt.Fprintf(w, "  [OK] Config directory: %s\n", r.System.ConfigDir)
	case r.System.ConfigDir != "":
		fmt.Fprintf(w, "  [OK] Config directory: %s (not created)\n", r.System.ConfigDir)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
