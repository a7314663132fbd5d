package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"

	"github.com/fabricforge/mpimage/internal"
	"github.com/fabricforge/mpimage/internal/runtime"
)

// Represents the root command for the mpimage CLI.
var RootCmd struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Enable verbose output."`
	Debug   bool   `short:"d" help:"Enable debug output."`
	Address string `short:"a" help:"Containerd socket address." placeholder:"PATH" default:"${address}"`

	Namespace string `short:"n" help:"Containerd namespace for images and containers." default:"${namespace}"`

	Build   BuildCmd   `cmd:"" help:"Provision an MPI image from a base image."`
	Verify  VerifyCmd  `cmd:"" help:"Verify a provisioned image's transport set and launch config."`
	Show    ShowCmd    `cmd:"" help:"Print the resolved recipe."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Provisions MPI runtime images.\n\nExecutes an ordered provisioning recipe inside a build container and exports the result as an OCI archive."),
		kong.UsageOnError(),
		kong.Vars{
			"version":   internal.VersionString(),
			"address":   runtime.DefaultAddress,
			"namespace": runtime.DefaultNamespace,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*charmlog.Logger)
	if !ok {
		return // Not a charm handler, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	if debug {
		handler.SetLevel(charmlog.DebugLevel)
	} else if quiet {
		handler.SetLevel(charmlog.WarnLevel)
	} else {
		handler.SetLevel(charmlog.InfoLevel)
	}

	handler.SetReportCaller(verbose)
}
