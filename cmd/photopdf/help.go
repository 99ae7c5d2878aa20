package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: photopdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert photos to PDF")
	fmt.Fprintln(w, "  rasterize   Render PDF pages to images")
	fmt.Fprintln(w, "  doctor      Check capabilities and environment")
	fmt.Fprintln(w, "  config      Print the effective configuration")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'photopdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: photopdf convert <image|dir>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert photos to one PDF, or one PDF per photo.")
	fmt.Fprintln(w, "Files keep their command-line order; directories add their images A-Z.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF, or directory with --per-photo")
	fmt.Fprintln(w, "      --per-photo           Write one PDF per photo")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -s, --sizing <s>          auto_dpi (default), manual_dpi, match_pixels, a4, letter")
	fmt.Fprintln(w, "      --dpi <f>             Fallback DPI (auto_dpi) or chosen DPI (manual_dpi), default 300")
	fmt.Fprintln(w, "      --margin <f>          Margin in points on every side (default 0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Embedding:")
	fmt.Fprintln(w, "  -e, --embed <s>           jpeg (default), original, png")
	fmt.Fprintln(w, "      --quality <n>         JPEG quality 1-100 (default 100)")
	fmt.Fprintln(w, "      --no-rotate           Ignore EXIF orientation")
	fmt.Fprintln(w, "      --no-direct-jpeg      Never insert JPEG data verbatim")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Document title")
	fmt.Fprintln(w, "      --author <s>          Document author")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-item details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PHOTOPDF_CONFIG, PHOTOPDF_OUTPUT, PHOTOPDF_SIZING, PHOTOPDF_DPI,")
	fmt.Fprintln(w, "  PHOTOPDF_EMBED, PHOTOPDF_QUALITY, PHOTOPDF_TITLE, PHOTOPDF_AUTHOR")
}

// printRasterizeUsage prints usage for the rasterize command.
func printRasterizeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: photopdf rasterize <pdf|dir>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every page of each PDF to <name>_page_NNN.<format>.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to the first PDF)")
	fmt.Fprintln(w, "      --dpi <f>             Render resolution, minimum 36 (default 300)")
	fmt.Fprintln(w, "  -f, --format <s>          png (default), jpg")
	fmt.Fprintln(w, "      --quality <n>         JPEG quality 1-100 (default 95)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-page details")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: photopdf config [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML: the config file")
	fmt.Fprintln(w, "with PHOTOPDF_* environment overrides applied.")
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: photopdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:        eval \"$(photopdf completion bash)\"")
	fmt.Fprintln(w, "  Zsh:         eval \"$(photopdf completion zsh)\"")
	fmt.Fprintln(w, "  Fish:        photopdf completion fish > ~/.config/fish/completions/photopdf.fish")
	fmt.Fprintln(w, "  PowerShell:  photopdf completion powershell | Out-String | Invoke-Expression")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "rasterize":
		printRasterizeUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: photopdf doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the document writer, the PDF renderer and the environment.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: photopdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: photopdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
