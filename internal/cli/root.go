package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cherryrecorder/cherryctl/internal"
	"github.com/mattn/go-isatty"
)

// Represents the root command for cherryctl.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Dir     string     `short:"C" help:"Project directory holding the dockerfiles." default:"." type:"existingdir" placeholder:"DIR"`
	Config  string     `help:"Configuration file. Defaults to cherryctl.yaml in the project directory, then the user configuration." type:"existingfile" placeholder:"FILE"`
	Deploy  DeployCmd  `cmd:"" default:"withargs" help:"Build the server image and run, test or push it (default)."`
	Recover RecoverCmd `cmd:"" help:"Restore an ignore file left behind by an interrupted run."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd, options(ctx)...)

	configureLogger()

	return kongCtx.Run()
}

// Returns the parser options shared by Execute and tests.
func options(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("Builds and launches the CherryRecorder server containers.\n\n" +
			"Targets: app runs the server locally, test runs the containerized test suite, " +
			"k8s builds the image for a Kubernetes deployment."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	internal.LogLevel.Set(internal.Level())

	slog.SetDefault(slog.New(NewHandler(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), internal.IsVerbose())))
}

// Creates the process log handler.
//
// Interactive output omits timestamps. Verbose output records the source
// location of each entry. The level follows [internal.LogLevel].
func NewHandler(w io.Writer, interactive, verbose bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     internal.LogLevel,
		AddSource: verbose,
	}
	if interactive {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	}
	return slog.NewTextHandler(w, opts)
}
