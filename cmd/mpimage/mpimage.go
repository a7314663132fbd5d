package main

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/fabricforge/mpimage/internal"
	"github.com/fabricforge/mpimage/internal/cli"
)

// The entry point for the mpimage CLI.
//
// Initializes logging, displays startup information, and executes the root
// command. If any error occurs during execution, it exits with a non-zero
// code.
func main() {
	slog.SetDefault(slog.New(logger()))

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("mpimage is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates a handler seeded from build-time linker flags.
//
// The handler is reconfigured after flag parsing via cli.Execute.
func logger() *charmlog.Logger {
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           logLevel(),
		ReportTimestamp: true,
		Prefix:          internal.Name,
	})
}

// Returns the log level derived from build-time linker flags.
func logLevel() charmlog.Level {
	if internal.IsDebug() {
		return charmlog.DebugLevel
	}
	if internal.IsQuiet() {
		return charmlog.WarnLevel
	}
	return charmlog.InfoLevel
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
