package main

// Notes:
// - runConvertCmd: we drive it through runMain with real images and the real
//   document writer, checking exit codes, created files and printed output.
//   Page sizes are read back from the verbose table rather than the PDF.
// - mergeConvertFlags, buildJob: we test precedence and defaults directly.
// - Environment overrides: these tests call t.Setenv and cannot be parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"github.com/alnah/photopdf"
	"github.com/alnah/photopdf/internal/config"
)

// convert runs "photopdf convert args..." in env.
func convert(env *testEnv, args ...string) int {
	return runMain(context.Background(), append([]string{"photopdf", "convert"}, args...), env.Environment)
}

// ---------------------------------------------------------------------------
// TestRunConvertCmd - End to end through runMain
// ---------------------------------------------------------------------------

func TestRunConvertCmd_SingleDocument(t *testing.T) {
	t.Parallel()

	src, out := t.TempDir(), t.TempDir()
	writeImage(t, src, "b.png", 40, 20)
	writeImage(t, src, "a.png", 40, 20)
	target := filepath.Join(out, "album.pdf")

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, src, "-o", target, "--sizing", "match_pixels", "--embed", "png")

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitSuccess, env.stderr)
	}
	assertExists(t, target)
	assertMissing(t, lockPath(target, false))

	stdout := env.stdout.String()
	if !strings.Contains(stdout, "Created "+target) {
		t.Errorf("stdout should report the created file, got %q", stdout)
	}
	if !strings.Contains(stdout, "2 succeeded, 0 failed") {
		t.Errorf("stdout should summarize both items, got %q", stdout)
	}
}

func TestRunConvertCmd_DefaultTargetNamedAfterFirstImage(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeImage(t, src, "harbor.jpg", 30, 30)
	writeImage(t, src, "sunset.jpg", 30, 30)

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, src, "-q")

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitSuccess, env.stderr)
	}
	assertExists(t, filepath.Join(src, "harbor.pdf"))
	if env.stdout.Len() != 0 {
		t.Errorf("quiet run should print nothing, got %q", env.stdout)
	}
}

func TestRunConvertCmd_PerPhoto(t *testing.T) {
	t.Parallel()

	src, out := t.TempDir(), t.TempDir()
	first := writeImage(t, src, "one.png", 24, 16)
	second := writeImage(t, src, "two.jpg", 16, 24)

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, first, second, "--per-photo", "-o", out)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitSuccess, env.stderr)
	}
	assertExists(t, filepath.Join(out, "one.pdf"))
	assertExists(t, filepath.Join(out, "two.pdf"))
	assertMissing(t, lockPath(out, true))
}

func TestRunConvertCmd_PartialFailure(t *testing.T) {
	t.Parallel()

	src, out := t.TempDir(), t.TempDir()
	writeImage(t, src, "a.png", 20, 20)
	writeFile(t, src, "b.jpg", "not really a jpeg")
	target := filepath.Join(out, "mixed.pdf")

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, src, "-o", target)

	if code != ExitPartial {
		t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitPartial, env.stderr)
	}
	assertExists(t, target)

	stderr := env.stderr.String()
	if !strings.Contains(stderr, "FAILED") || !strings.Contains(stderr, "b.jpg") {
		t.Errorf("stderr should name the failed image, got %q", stderr)
	}
	if !strings.Contains(env.stdout.String(), "1 succeeded, 1 failed") {
		t.Errorf("stdout should summarize the partial result, got %q", env.stdout)
	}
}

func TestRunConvertCmd_AllItemsFail(t *testing.T) {
	t.Parallel()

	src, out := t.TempDir(), t.TempDir()
	bad := writeFile(t, src, "broken.png", "garbage")
	target := filepath.Join(out, "broken.pdf")

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, bad, "-o", target)

	if code != ExitIO {
		t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitIO, env.stderr)
	}
	assertMissing(t, target)
	if !strings.Contains(env.stderr.String(), "supported formats") {
		t.Errorf("stderr should carry the supported formats hint, got %q", env.stderr)
	}
}

func TestRunConvertCmd_DegradedCapability(t *testing.T) {
	t.Parallel()

	src, out := t.TempDir(), t.TempDir()
	writeImage(t, src, "a.jpg", 20, 20)
	writeImage(t, src, "b.jpg", 20, 20)

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, src, "-o", filepath.Join(out, "album.pdf"), "--no-direct-jpeg")

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d; stderr: %s", code, ExitSuccess, env.stderr)
	}
	stderr := env.stderr.String()
	if n := strings.Count(stderr, "capability_degraded"); n != 1 {
		t.Errorf("expected exactly one degraded warning, got %d in %q", n, stderr)
	}
	if !strings.Contains(stderr, "--no-direct-jpeg") {
		t.Errorf("stderr should hint at dropping --no-direct-jpeg, got %q", stderr)
	}
}

func TestRunConvertCmd_VerboseTableShowsPageSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"match pixels", []string{"--sizing", "match_pixels"}, "40x20 pt"},
		{"match pixels with margin", []string{"--sizing", "pixels", "--margin", "10"}, "60x40 pt"},
		{"a4", []string{"--sizing", "a4"}, "595x842 pt"},
		{"letter", []string{"--sizing", "letter"}, "612x792 pt"},
		{"manual dpi", []string{"--sizing", "manual_dpi", "--dpi", "72"}, "40x20 pt, DPI: 72 (manual)"},
		{"auto dpi fallback", []string{"--dpi", "144"}, "20x10 pt, DPI: 144 (fallback)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, out := t.TempDir(), t.TempDir()
			img := writeImage(t, src, "wide.png", 40, 20)

			env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
			args := append([]string{img, "-o", filepath.Join(out, "wide.pdf"), "-v"}, tt.args...)
			if code := convert(env, args...); code != ExitSuccess {
				t.Fatalf("exit code = %d; stderr: %s", code, env.stderr)
			}
			if !strings.Contains(env.stdout.String(), tt.want) {
				t.Errorf("table should contain %q, got:\n%s", tt.want, env.stdout)
			}
		})
	}
}

func TestRunConvertCmd_ConfigFile(t *testing.T) {
	t.Parallel()

	src, out := t.TempDir(), t.TempDir()
	img := writeImage(t, src, "a.png", 40, 20)
	cfgPath := writeFile(t, src, "album.yaml", `
convert:
  sizing: match_pixels
  margin: 5
output:
  defaultDir: `+out+`
`)

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, img, "-c", cfgPath, "-v")

	if code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr: %s", code, env.stderr)
	}
	assertExists(t, filepath.Join(out, "a.pdf"))
	if !strings.Contains(env.stdout.String(), "50x30 pt") {
		t.Errorf("config margin should apply, got:\n%s", env.stdout)
	}
}

func TestRunConvertCmd_Errors(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	img := writeImage(t, src, "a.png", 10, 10)
	writeFile(t, src, "notes.txt", "hello")
	txtOnly := t.TempDir()
	writeFile(t, txtOnly, "notes.txt", "hello")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no input", nil, ExitIO, "no input specified"},
		{"missing file", []string{filepath.Join(src, "nope.png")}, ExitIO, "reading input"},
		{"directory without images", []string{txtOnly}, ExitIO, "no matching files found"},
		{"unknown flag", []string{img, "--bogus"}, ExitUsage, "invalid usage"},
		{"unknown sizing", []string{img, "--sizing", "tabloid"}, ExitUsage, "convert.sizing"},
		{"unknown embed", []string{img, "--embed", "webp"}, ExitUsage, "convert.embed"},
		{"negative margin", []string{img, "--margin", "-1"}, ExitUsage, "convert.margin"},
		{"quality out of range", []string{img, "--quality", "101"}, ExitUsage, "convert.quality"},
		{"missing config", []string{img, "-c", filepath.Join(src, "missing.yaml")}, ExitUsage, "config file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
			code := convert(env, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d; stderr: %s", code, tt.wantCode, env.stderr)
			}
			if !strings.Contains(env.stderr.String(), tt.wantErr) {
				t.Errorf("stderr should contain %q, got %q", tt.wantErr, env.stderr)
			}
		})
	}
}

func TestRunConvertCmd_TargetLocked(t *testing.T) {
	t.Parallel()

	src, out := t.TempDir(), t.TempDir()
	img := writeImage(t, src, "a.png", 10, 10)
	target := filepath.Join(out, "busy.pdf")

	held := flock.New(lockPath(target, false))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("taking lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	code := convert(env, img, "-o", target)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(env.stderr.String(), "another photopdf run") {
		t.Errorf("stderr should carry the lock hint, got %q", env.stderr)
	}
	assertMissing(t, target)
}

func TestRunConvertCmd_HelpFlag(t *testing.T) {
	t.Parallel()

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	if code := convert(env, "--help"); code != ExitSuccess {
		t.Errorf("--help exit code = %d, want %d", code, ExitSuccess)
	}
}

// ---------------------------------------------------------------------------
// Environment Overrides - Not parallel (t.Setenv)
// ---------------------------------------------------------------------------

func TestRunConvertCmd_EnvOverrides(t *testing.T) {
	t.Setenv("PHOTOPDF_SIZING", "a4")
	t.Setenv("PHOTOPDF_TITLE", "Holiday")

	src, out := t.TempDir(), t.TempDir()
	img := writeImage(t, src, "a.png", 40, 20)

	t.Run("env applies", func(t *testing.T) {
		env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
		if code := convert(env, img, "-o", filepath.Join(out, "env.pdf"), "-v"); code != ExitSuccess {
			t.Fatalf("exit code = %d; stderr: %s", code, env.stderr)
		}
		if !strings.Contains(env.stdout.String(), "595x842 pt") {
			t.Errorf("PHOTOPDF_SIZING should select A4, got:\n%s", env.stdout)
		}
	})

	t.Run("flag wins over env", func(t *testing.T) {
		env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
		if code := convert(env, img, "-o", filepath.Join(out, "flag.pdf"), "-v", "-s", "match_pixels"); code != ExitSuccess {
			t.Fatalf("exit code = %d; stderr: %s", code, env.stderr)
		}
		if !strings.Contains(env.stdout.String(), "40x20 pt") {
			t.Errorf("--sizing should override PHOTOPDF_SIZING, got:\n%s", env.stdout)
		}
	})
}

func TestRunConvertCmd_UnknownEnvVarWarning(t *testing.T) {
	t.Setenv("PHOTOPDF_SIZNG", "a4")

	src := t.TempDir()
	img := writeImage(t, src, "a.png", 10, 10)

	env := newTestEnv(photopdf.CapabilitySet{DirectJPEG: true}, nil)
	if code := convert(env, img); code != ExitSuccess {
		t.Fatalf("exit code = %d; stderr: %s", code, env.stderr)
	}
	if !strings.Contains(env.stderr.String(), "PHOTOPDF_SIZNG") {
		t.Errorf("stderr should warn about the typo, got %q", env.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestMergeConvertFlags - CLI flags override config
// ---------------------------------------------------------------------------

func TestMergeConvertFlags(t *testing.T) {
	t.Parallel()

	on := true

	t.Run("flags override config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Convert: config.ConvertConfig{
				Sizing: "a4", DPI: 150, Margin: 12, Embed: "png", Quality: 80,
				AutoRotate: &on, DirectJPEG: &on,
			},
			Metadata: config.MetadataConfig{Title: "Old", Author: "Old"},
		}
		flags := &convertFlags{
			perPhoto: true,
			sizing:   sizingFlags{policy: "letter", dpi: 600, margin: 0, marginSet: true},
			embed:    embedFlags{mode: "jpeg", quality: 90, noRotate: true, noDirectJPEG: true},
			metadata: metadataFlags{title: "New", author: "Sam"},
		}

		mergeConvertFlags(flags, cfg)

		c := cfg.Convert
		if c.Sizing != "letter" || c.DPI != 600 || c.Margin != 0 || c.Embed != "jpeg" || c.Quality != 90 {
			t.Errorf("convert config not overridden: %+v", c)
		}
		if config.Bool(c.AutoRotate, true) || config.Bool(c.DirectJPEG, true) {
			t.Error("--no-rotate and --no-direct-jpeg should switch both off")
		}
		if !cfg.Output.PerPhoto {
			t.Error("--per-photo should set output.perPhoto")
		}
		if cfg.Metadata.Title != "New" || cfg.Metadata.Author != "Sam" {
			t.Errorf("metadata not overridden: %+v", cfg.Metadata)
		}
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Convert: config.ConvertConfig{Sizing: "a4", Margin: 12, Quality: 80},
			Output:  config.OutputConfig{PerPhoto: true},
		}
		mergeConvertFlags(&convertFlags{}, cfg)

		if cfg.Convert.Sizing != "a4" || cfg.Convert.Margin != 12 || cfg.Convert.Quality != 80 {
			t.Errorf("config should be untouched: %+v", cfg.Convert)
		}
		if cfg.Convert.AutoRotate != nil || cfg.Convert.DirectJPEG != nil {
			t.Error("unset bool flags should leave pointers nil")
		}
		if !cfg.Output.PerPhoto {
			t.Error("per-photo from config should survive")
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildJob - Config to job translation
// ---------------------------------------------------------------------------

func TestBuildJob(t *testing.T) {
	t.Parallel()

	off := false
	images := []string{filepath.Join("photos", "a.jpg")}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		job, err := buildJob(images, "", config.DefaultConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, ok := job.Sizing.(photopdf.AutoDPI); !ok || got.Fallback != photopdf.DefaultFallbackDPI {
			t.Errorf("sizing = %v, want auto_dpi with fallback 300", job.Sizing)
		}
		if got, ok := job.Embedding.(photopdf.HighQualityJPEG); !ok || got.Quality != photopdf.DefaultJPEGQuality {
			t.Errorf("embedding = %v, want jpeg at default quality", job.Embedding)
		}
		if job.Output != photopdf.OutputSingle {
			t.Errorf("output = %v, want single", job.Output)
		}
		if want := filepath.Join("photos", "a.pdf"); job.Target != want {
			t.Errorf("target = %q, want %q", job.Target, want)
		}
		if job.IgnoreOrientation {
			t.Error("orientation should be applied by default")
		}
		if job.Metadata != nil {
			t.Errorf("metadata should be nil when unset, got %+v", job.Metadata)
		}
	})

	t.Run("manual dpi without value uses 300", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Convert: config.ConvertConfig{Sizing: "manual_dpi"}}
		job, err := buildJob(images, "", cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got, ok := job.Sizing.(photopdf.ManualDPI); !ok || got.DPI != 300 {
			t.Errorf("sizing = %v, want manual_dpi(300)", job.Sizing)
		}
	})

	t.Run("per photo with metadata and no rotation", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			Convert:  config.ConvertConfig{Embed: "original", AutoRotate: &off},
			Output:   config.OutputConfig{PerPhoto: true},
			Metadata: config.MetadataConfig{Author: "Sam"},
		}
		job, err := buildJob(images, "out", cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := job.Embedding.(photopdf.KeepOriginal); !ok {
			t.Errorf("embedding = %v, want original", job.Embedding)
		}
		if job.Output != photopdf.OutputPerImage || job.Target != "out" {
			t.Errorf("output = %v target = %q, want per-image into out", job.Output, job.Target)
		}
		if !job.IgnoreOrientation {
			t.Error("autoRotate=false should ignore orientation")
		}
		if job.Metadata == nil || job.Metadata.Author != "Sam" {
			t.Errorf("metadata = %+v, want author Sam", job.Metadata)
		}
	})

	t.Run("invalid embedding", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{Convert: config.ConvertConfig{Embed: "webp"}}
		_, err := buildJob(images, "", cfg)
		if !errors.Is(err, photopdf.ErrInvalidEmbedding) {
			t.Errorf("error = %v, want ErrInvalidEmbedding", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestParseError - Flag errors
// ---------------------------------------------------------------------------

func TestParseError(t *testing.T) {
	t.Parallel()

	_, _, err := parseConvertFlags([]string{"--dpi", "lots"})
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if got := parseError(err); !errors.Is(got, ErrUsage) {
		t.Errorf("parseError = %v, want ErrUsage", got)
	}

	_, _, err = parseConvertFlags([]string{"--help"})
	if got := parseError(err); got != nil {
		t.Errorf("--help should not be an error, got %v", got)
	}
}
