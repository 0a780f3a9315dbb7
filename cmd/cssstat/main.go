package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssstat/misc"
	"cssstat/state"
	"cssstat/stats"
)

const sourceHelp = `
SOURCE:
    directory with stylesheets, every file directly in it is processed, names must start with event id digits
    path to zip archive with optional path inside archive: "[path_to_archive]archive.zip[path_in_archive]"
    if absent - input.directory from configuration

CSV report goes to STDOUT unless --output is given, diagnostics go to STDERR.
`

// setup runs after command line is parsed and before any action.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if err := env.Setup(configFile, cmd.Bool("debug")); err != nil {
		return ctx, err
	}

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	if name := env.Rpt.Name(); len(name) > 0 {
		env.Log.Info("Creating debug report", zap.String("location", name))
	}
	return ctx, nil
}

// teardown closes logs and report, after it errors could only go to STDERR.
func teardown(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}
	return env.Close()
}

// keepUsageError leaves reporting to run.
func keepUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

// newApp builds command line interface. onError is called with action errors
// while log is still open.
func newApp(onError cli.ExitErrHandlerFunc) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log everything and collect configuration, logs and inputs into report archive"},
	}
	return &cli.Command{
		Name:                          misc.GetAppName(),
		Usage:                         "collects color and background statistics of stylesheets, reports CSV",
		Version:                       fmt.Sprintf("%s (%s) : %s", misc.GetVersion(), runtime.Version(), misc.GetGitHash()),
		HideHelpCommand:               true,
		Flags:                         append(flags, stats.Flags()...),
		ArgsUsage:                     "[SOURCE]",
		CustomRootCommandHelpTemplate: cli.RootCommandHelpTemplate + sourceHelp,
		Before:                        setup,
		After:                         teardown,
		Action:                        stats.Run,
		OnUsageError:                  keepUsageError,
		ExitErrHandler:                onError,
		Commands:                      []*cli.Command{dumpConfigCommand()},
	}
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logged bool
	app := newApp(func(ctx context.Context, _ *cli.Command, err error) {
		if env := state.EnvFromContext(ctx); env.Log != nil {
			env.Log.Error("Program ended with error", zap.Error(err))
			logged = true
		}
	})

	if err := app.Run(ctx, args); err != nil {
		// log is either not ready (bad arguments, configuration) or closed already
		if !logged {
			fmt.Fprintf(os.Stderr, "%s: %v\n", misc.GetAppName(), err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args))
}
