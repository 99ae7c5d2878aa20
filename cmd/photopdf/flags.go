package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// sizingFlags holds page geometry flags.
type sizingFlags struct {
	policy    string
	dpi       float64
	margin    float64
	marginSet bool // --margin was given; 0 is a valid margin
}

// embedFlags holds image embedding flags.
type embedFlags struct {
	mode         string
	quality      int
	noRotate     bool
	noDirectJPEG bool
}

// metadataFlags holds document info flags.
type metadataFlags struct {
	title  string
	author string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	perPhoto bool
	sizing   sizingFlags
	embed    embedFlags
	metadata metadataFlags
}

// rasterizeFlags holds all flags for the rasterize command.
type rasterizeFlags struct {
	common  commonFlags
	output  string
	dpi     float64
	format  string
	quality int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-item details")
}

// addSizingFlags adds page geometry flags to a FlagSet.
func addSizingFlags(fs *flag.FlagSet, f *sizingFlags) {
	fs.StringVarP(&f.policy, "sizing", "s", "", "page sizing: auto_dpi, manual_dpi, match_pixels, a4, letter")
	fs.Float64Var(&f.dpi, "dpi", 0, "fallback DPI for auto_dpi, chosen DPI for manual_dpi (default: 300)")
	fs.Float64Var(&f.margin, "margin", 0, "margin in points on every side")
}

// addEmbedFlags adds embedding flags to a FlagSet.
func addEmbedFlags(fs *flag.FlagSet, f *embedFlags) {
	fs.StringVarP(&f.mode, "embed", "e", "", "embedding: jpeg, original, png")
	fs.IntVar(&f.quality, "quality", 0, "JPEG quality 1-100 (default: 100)")
	fs.BoolVar(&f.noRotate, "no-rotate", false, "ignore EXIF orientation")
	fs.BoolVar(&f.noDirectJPEG, "no-direct-jpeg", false, "never insert JPEG data verbatim")
}

// addMetadataFlags adds document info flags to a FlagSet.
func addMetadataFlags(fs *flag.FlagSet, f *metadataFlags) {
	fs.StringVar(&f.title, "title", "", "document title")
	fs.StringVar(&f.author, "author", "", "document author")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
// Shared by parsing and completion generation.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output PDF, or directory with --per-photo")
	fs.BoolVar(&f.perPhoto, "per-photo", false, "write one PDF per photo")

	addCommonFlags(fs, &f.common)
	addSizingFlags(fs, &f.sizing)
	addEmbedFlags(fs, &f.embed)
	addMetadataFlags(fs, &f.metadata)

	return fs
}

// newRasterizeFlagSet registers every rasterize flag on a fresh FlagSet.
func newRasterizeFlagSet(f *rasterizeFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("rasterize", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.Float64Var(&f.dpi, "dpi", 0, "render resolution (default: 300, minimum 36)")
	fs.StringVarP(&f.format, "format", "f", "", "image format: png, jpg")
	fs.IntVar(&f.quality, "quality", 0, "JPEG quality 1-100 (default: 95)")

	addCommonFlags(fs, &f.common)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.sizing.marginSet = fs.Changed("margin")

	return f, fs.Args(), nil
}

// parseRasterizeFlags parses rasterize command flags and returns positional args.
func parseRasterizeFlags(args []string) (*rasterizeFlags, []string, error) {
	f := &rasterizeFlags{}
	fs := newRasterizeFlagSet(f)
	fs.Usage = func() { printRasterizeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
