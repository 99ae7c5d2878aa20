package config

// Notes:
// - LoadConfig tests that change the working directory or environment do not
//   run in parallel.
// - The permission test is skipped when running as root, where chmod 0000
//   does not prevent reading.

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Convert.Sizing != "" || cfg.Convert.Embed != "" || cfg.Convert.Quality != 0 {
		t.Errorf("Convert = %+v, want zero", cfg.Convert)
	}
	if cfg.Output.PerPhoto {
		t.Error("Output.PerPhoto = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestBool(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	if !Bool(nil, true) || Bool(nil, false) {
		t.Error("Bool(nil, def) did not return def")
	}
	if !Bool(&yes, false) || Bool(&no, true) {
		t.Error("Bool(p, def) did not dereference p")
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test", tt.value, tt.maxLength)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Names, ranges and lengths
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"empty", Config{}, nil},
		{"full", Config{
			Convert:   ConvertConfig{Sizing: "manual_dpi", DPI: 300, Margin: 18, Embed: "jpeg", Quality: 92},
			Rasterize: RasterizeConfig{DPI: 150, Format: "jpg", Quality: 90},
			Output:    OutputConfig{DefaultDir: "/tmp/out", PerPhoto: true},
			Metadata:  MetadataConfig{Title: "Trip", Author: "Sam"},
		}, nil},
		{"sizing alias, mixed case", Config{Convert: ConvertConfig{Sizing: "A4"}}, nil},
		{"unknown sizing", Config{Convert: ConvertConfig{Sizing: "tabloid"}}, ErrInvalidValue},
		{"unknown embed", Config{Convert: ConvertConfig{Embed: "webp"}}, ErrInvalidValue},
		{"negative dpi", Config{Convert: ConvertConfig{DPI: -1}}, ErrInvalidValue},
		{"nan margin", Config{Convert: ConvertConfig{Margin: math.NaN()}}, ErrInvalidValue},
		{"negative margin", Config{Convert: ConvertConfig{Margin: -3}}, ErrInvalidValue},
		{"quality too high", Config{Convert: ConvertConfig{Quality: 101}}, ErrInvalidValue},
		{"raster dpi too low", Config{Rasterize: RasterizeConfig{DPI: 20}}, ErrInvalidValue},
		{"raster format", Config{Rasterize: RasterizeConfig{Format: "gif"}}, ErrInvalidValue},
		{"raster quality", Config{Rasterize: RasterizeConfig{Quality: -1}}, ErrInvalidValue},
		{"name too long", Config{Convert: ConvertConfig{Sizing: strings.Repeat("a", MaxNameLength+1)}}, ErrFieldTooLong},
		{"title too long", Config{Metadata: MetadataConfig{Title: strings.Repeat("t", MaxTitleLength+1)}}, ErrFieldTooLong},
		{"author too long", Config{Metadata: MetadataConfig{Author: strings.Repeat("a", MaxAuthorLength+1)}}, ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File lookup and parsing
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "photos.yaml", `convert:
  sizing: a4
  margin: 36
  embed: original
  autoRotate: false
rasterize:
  dpi: 200
  format: jpg
output:
  defaultDir: "/srv/pdf"
  perPhoto: true
metadata:
  author: "Sam"
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Convert.Sizing != "a4" || cfg.Convert.Margin != 36 || cfg.Convert.Embed != "original" {
			t.Errorf("Convert = %+v", cfg.Convert)
		}
		if Bool(cfg.Convert.AutoRotate, true) {
			t.Error("AutoRotate = true, want false")
		}
		if cfg.Convert.DirectJPEG != nil {
			t.Error("DirectJPEG set, want unset")
		}
		if cfg.Rasterize.DPI != 200 || cfg.Rasterize.Format != "jpg" {
			t.Errorf("Rasterize = %+v", cfg.Rasterize)
		}
		if cfg.Output.DefaultDir != "/srv/pdf" || !cfg.Output.PerPhoto {
			t.Errorf("Output = %+v", cfg.Output)
		}
		if cfg.Metadata.Author != "Sam" {
			t.Errorf("Metadata.Author = %q", cfg.Metadata.Author)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "invalid.yaml", "convert: [unclosed")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "unknown.yaml", "convert:\n  resolution: 300\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value is rejected after parsing", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "bad.yaml", "convert:\n  quality: 500\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("empty file returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "empty.yaml", "")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unreadable file returns read error not ErrConfigNotFound", func(t *testing.T) {
		if os.Geteuid() == 0 || runtime.GOOS == "windows" {
			t.Skip("permissions not enforced")
		}
		path := writeConfig(t, t.TempDir(), "unreadable.yaml", "convert:\n  sizing: a4\n")
		if err := os.Chmod(path, 0o000); err != nil {
			t.Fatalf("setup chmod: %v", err)
		}
		defer func() { _ = os.Chmod(path, 0o600) }()

		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("expected error for unreadable file")
		}
		if errors.Is(err, ErrConfigNotFound) {
			t.Error("error should not be ErrConfigNotFound for permission error")
		}
	})

	t.Run("config name resolves yaml in current directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "album.yaml", "convert:\n  sizing: letter\n")

		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer func() { _ = os.Chdir(originalWd) }()
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		cfg, err := LoadConfig("album")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Convert.Sizing != "letter" {
			t.Errorf("Sizing = %q, want letter", cfg.Convert.Sizing)
		}
	})

	t.Run("config name falls back to .yml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "scans.yml", "rasterize:\n  format: png\n")

		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer func() { _ = os.Chdir(originalWd) }()
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		cfg, err := LoadConfig("scans")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Rasterize.Format != "png" {
			t.Errorf("Format = %q, want png", cfg.Rasterize.Format)
		}
	})

	t.Run("config name resolves in user config dir", func(t *testing.T) {
		if runtime.GOOS != "linux" {
			t.Skip("XDG_CONFIG_HOME only drives os.UserConfigDir on Linux")
		}
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		appConfig := filepath.Join(home, appDir)
		if err := os.MkdirAll(appConfig, 0o750); err != nil {
			t.Fatal(err)
		}
		writeConfig(t, appConfig, "global.yaml", "metadata:\n  author: \"Global\"\n")

		cfg, err := LoadConfig("global")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Metadata.Author != "Global" {
			t.Errorf("Author = %q, want Global", cfg.Metadata.Author)
		}
	})

	t.Run("unknown name lists tried paths", func(t *testing.T) {
		_, err := LoadConfig("definitely-not-a-config-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "definitely-not-a-config-name.yaml") {
			t.Errorf("error should list tried paths, got: %v", err)
		}
	})
}
