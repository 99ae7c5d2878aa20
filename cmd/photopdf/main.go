package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerbose(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, env)
	stop()
	os.Exit(code)
}

// runMain dispatches args[1] and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "convert":
		return finish(env, runConvertCmd(ctx, rest, env))
	case "rasterize":
		return finish(env, runRasterizeCmd(ctx, rest, env))
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		return finish(env, runConfigCmd(rest, env))
	case "completion":
		return finish(env, runCompletion(rest, env))
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "photopdf %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
		return ExitSuccess
	case "help", "--help", "-h":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// finish prints err and maps it to an exit code.
func finish(env *Environment, err error) int {
	if err != nil {
		printError(env.Stderr, err)
	}
	return exitCodeFor(err)
}

// hasVerbose reports whether -v or --verbose appears before "--".
func hasVerbose(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}
