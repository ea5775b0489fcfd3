package main

import (
	"log/slog"
	"os"

	"github.com/cherryrecorder/cherryctl/internal"
	"github.com/cherryrecorder/cherryctl/internal/cli"
)

// The entry point for cherryctl.
//
// Initializes logging, displays startup information, and executes the root
// command. If any error occurs during execution, it exits with a non-zero code.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("cherryctl is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	os.Exit(exitCode(cli.Execute()))
}

// Maps the result of a command to the process exit status, logging a failure.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	slog.Error(err.Error())
	return 1
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is replaced after flag parsing via cli.Execute.
func logger() *slog.Logger {
	return slog.New(cli.NewHandler(os.Stderr, false, internal.IsVerbose()))
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
