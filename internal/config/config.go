package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/photopdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDir is the directory under os.UserConfigDir searched for named configs.
const appDir = "photopdf"

// Field length limits.
const (
	MaxTitleLength  = 200  // Document title
	MaxAuthorLength = 100  // Document author
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxNameLength   = 20   // Policy, mode and format names
)

// Raster DPI floor; pages below it are unreadable.
const minRasterDPI = 36

// Accepted names, including the aliases the CLI accepts.
var (
	sizingNames = []string{"auto_dpi", "auto", "manual_dpi", "manual", "dpi", "match_pixels", "pixels", "a4", "fixed_a4", "letter", "fixed_letter"}
	embedNames  = []string{"jpeg", "jpg", "jpeg_high", "original", "keep_original", "png", "lossless_png", "lossless"}
	formatNames = []string{"png", "jpg", "jpeg"}
)

// Config holds the settings for conversion and rasterization runs.
// Zero values mean "not set"; the CLI applies its own defaults.
type Config struct {
	Convert   ConvertConfig   `yaml:"convert"`
	Rasterize RasterizeConfig `yaml:"rasterize"`
	Output    OutputConfig    `yaml:"output"`
	Metadata  MetadataConfig  `yaml:"metadata"`
}

// ConvertConfig defines photo-to-PDF defaults.
type ConvertConfig struct {
	Sizing     string  `yaml:"sizing"`               // auto_dpi, manual_dpi, match_pixels, a4, letter
	DPI        float64 `yaml:"dpi"`                  // fallback DPI for auto_dpi, chosen DPI for manual_dpi
	Margin     float64 `yaml:"margin"`               // points on every side
	Embed      string  `yaml:"embed"`                // jpeg, original, png
	Quality    int     `yaml:"quality"`              // JPEG quality 1-100
	AutoRotate *bool   `yaml:"autoRotate,omitempty"` // apply EXIF orientation (default: true)
	DirectJPEG *bool   `yaml:"directJPEG,omitempty"` // insert JPEG streams verbatim when supported (default: true)
}

// RasterizeConfig defines PDF-to-image defaults.
type RasterizeConfig struct {
	DPI     float64 `yaml:"dpi"`
	Format  string  `yaml:"format"` // png, jpg
	Quality int     `yaml:"quality"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = next to the first source)
	PerPhoto   bool   `yaml:"perPhoto"`   // One PDF per photo instead of one combined PDF
}

// MetadataConfig defines document info written to every PDF.
type MetadataConfig struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
}

// Validate checks names, ranges and field lengths.
// Called automatically by LoadConfig.
func (c *Config) Validate() error {
	if err := validateName("convert.sizing", c.Convert.Sizing, sizingNames); err != nil {
		return err
	}
	if err := validateName("convert.embed", c.Convert.Embed, embedNames); err != nil {
		return err
	}
	if c.Convert.DPI < 0 || !finite(c.Convert.DPI) {
		return fmt.Errorf("%w: convert.dpi: must be positive, got %g", ErrInvalidValue, c.Convert.DPI)
	}
	if c.Convert.Margin < 0 || !finite(c.Convert.Margin) {
		return fmt.Errorf("%w: convert.margin: must be >= 0, got %g", ErrInvalidValue, c.Convert.Margin)
	}
	if err := validateQuality("convert.quality", c.Convert.Quality); err != nil {
		return err
	}

	if c.Rasterize.DPI != 0 && (c.Rasterize.DPI < minRasterDPI || !finite(c.Rasterize.DPI)) {
		return fmt.Errorf("%w: rasterize.dpi: must be at least %d, got %g", ErrInvalidValue, minRasterDPI, c.Rasterize.DPI)
	}
	if err := validateName("rasterize.format", c.Rasterize.Format, formatNames); err != nil {
		return err
	}
	if err := validateQuality("rasterize.quality", c.Rasterize.Quality); err != nil {
		return err
	}

	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("metadata.title", c.Metadata.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("metadata.author", c.Metadata.Author, MaxAuthorLength); err != nil {
		return err
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateName accepts empty (unset) or one of allowed, case-insensitively.
func validateName(fieldName, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxNameLength); err != nil {
		return err
	}
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q", ErrInvalidValue, fieldName, value)
}

// validateQuality accepts 0 (unset) or 1..100.
func validateQuality(fieldName string, q int) error {
	if q < 0 || q > 100 {
		return fmt.Errorf("%w: %s: must be between 1 and 100, got %d", ErrInvalidValue, fieldName, q)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Bool dereferences p, returning def when p is nil.
func Bool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// DefaultConfig returns a configuration with nothing set.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var cfg Config
	if err := yamlutil.ReadStrict(f, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/photopdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
