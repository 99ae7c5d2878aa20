package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/photopdf/internal/config"
	"github.com/alnah/photopdf/internal/fileutil"
	"github.com/alnah/photopdf/internal/hints"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string  // PHOTOPDF_CONFIG: config file name or path
	OutputDir  string  // PHOTOPDF_OUTPUT: default output directory
	Sizing     string  // PHOTOPDF_SIZING: auto_dpi, manual_dpi, match_pixels, a4, letter
	DPI        float64 // PHOTOPDF_DPI: fallback or manual DPI
	Embed      string  // PHOTOPDF_EMBED: jpeg, original, png
	Quality    int     // PHOTOPDF_QUALITY: JPEG quality 1-100
	Title      string  // PHOTOPDF_TITLE: document title
	Author     string  // PHOTOPDF_AUTHOR: document author
}

// knownEnvVars lists valid PHOTOPDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PHOTOPDF_CONFIG":  true,
	"PHOTOPDF_OUTPUT":  true,
	"PHOTOPDF_SIZING":  true,
	"PHOTOPDF_DPI":     true,
	"PHOTOPDF_EMBED":   true,
	"PHOTOPDF_QUALITY": true,
	"PHOTOPDF_TITLE":   true,
	"PHOTOPDF_AUTHOR":  true,

	"PHOTOPDF_CONTAINER": true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers are ignored rather than reported.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("PHOTOPDF_CONFIG"),
		OutputDir:  os.Getenv("PHOTOPDF_OUTPUT"),
		Sizing:     os.Getenv("PHOTOPDF_SIZING"),
		Embed:      os.Getenv("PHOTOPDF_EMBED"),
		Title:      os.Getenv("PHOTOPDF_TITLE"),
		Author:     os.Getenv("PHOTOPDF_AUTHOR"),
	}

	if dpi := os.Getenv("PHOTOPDF_DPI"); dpi != "" {
		if v, err := strconv.ParseFloat(dpi, 64); err == nil && v > 0 {
			cfg.DPI = v
		}
	}

	if q := os.Getenv("PHOTOPDF_QUALITY"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= 100 {
			cfg.Quality = v
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized PHOTOPDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PHOTOPDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by the command's merge step)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Sizing != "" && cfg.Convert.Sizing == "" {
		cfg.Convert.Sizing = env.Sizing
	}
	if env.DPI > 0 && cfg.Convert.DPI == 0 {
		cfg.Convert.DPI = env.DPI
	}
	if env.Embed != "" && cfg.Convert.Embed == "" {
		cfg.Convert.Embed = env.Embed
	}
	if env.Quality > 0 && cfg.Convert.Quality == 0 {
		cfg.Convert.Quality = env.Quality
	}
	if env.Title != "" && cfg.Metadata.Title == "" {
		cfg.Metadata.Title = env.Title
	}
	if env.Author != "" && cfg.Metadata.Author == "" {
		cfg.Metadata.Author = env.Author
	}
}

// loadCommandConfig resolves the config for a command: the --config flag
// wins over PHOTOPDF_CONFIG; environment values then fill empty fields.
func loadCommandConfig(flagPath string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr)
	ev := loadEnvConfig()

	cfg := config.DefaultConfig()
	path := flagPath
	if path == "" {
		path = ev.ConfigPath
	}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(configCandidates(path)))
		}
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(ev, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	env.Config = cfg
	return cfg, nil
}

// configCandidates lists where LoadConfig looks for nameOrPath.
func configCandidates(nameOrPath string) []string {
	if fileutil.IsFilePath(nameOrPath) {
		return []string{nameOrPath}
	}
	paths := []string{nameOrPath + ".yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "photopdf", nameOrPath+".yaml"))
	}
	return paths
}
