package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/roachagram/internal/app"
	"github.com/five82/roachagram/internal/config"
	"github.com/five82/roachagram/internal/logging"
	"github.com/five82/roachagram/internal/prefs"
)

const shutdownTimeout = 5 * time.Second

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	prefsPath  string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "roachagram",
		Short:         "Roachagram turns words and names into anagram stories",
		Long:          `Roachagram sends a word or name to the anagram service and renders the reply as styled HTML or in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&opts.prefsPath, "prefs", "", "preferences file (default "+prefs.DefaultPath()+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newSubmitCmd(opts),
		newTUICmd(opts),
		newDeviceIDCmd(opts),
		newVersionCmd(),
	)
	return root
}

// environment is the loaded configuration plus the process logger.
type environment struct {
	cfg     config.Config
	prefs   prefs.Prefs
	logger  *slog.Logger
	logSink io.Closer
}

// load reads config and prefs and builds the logger. quiet discards logs
// unless a log file was requested, for commands that own the terminal.
func (o *globalOptions) load(quiet bool) (*environment, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		if errors.Is(err, config.ErrMissingBaseURL) {
			return nil, printError("API base URL is not configured",
				"roachagram needs the address of the anagram service before it can run.",
				[]string{
					fmt.Sprintf("Set api_base_url in %s", config.DefaultPath()),
					fmt.Sprintf("Export %s=https://your-service/", config.BaseURLEnv),
				})
		}
		return nil, printError("Could not load configuration", err.Error(), nil)
	}

	levelName := cfg.LogLevel
	if o.logLevel != "" {
		levelName = o.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, printError("Invalid log level", err.Error(), nil)
	}

	env := &environment{cfg: cfg, prefs: prefs.Load(o.prefsPath, cfg.Theme)}
	switch {
	case o.logFile != "":
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, printError("Could not open log file", err.Error(), nil)
		}
		env.logger = logging.NewWithWriter(f, level)
		env.logSink = f
	case quiet:
		env.logger = logging.NewNop()
	default:
		env.logger = logging.New(level)
	}
	return env, nil
}

func (e *environment) runtime(opts app.RuntimeOptions) (*app.Runtime, error) {
	opts.Version = version
	if opts.Theme == "" {
		opts.Theme = e.prefs.Theme
	}
	rt, err := app.NewRuntime(e.cfg, e.logger, opts)
	if err != nil {
		return nil, printError("Could not start roachagram", err.Error(), nil)
	}
	rt.ServeMetrics(e.cfg.MetricsAddr)
	return rt, nil
}

// shutdown flushes telemetry with a bounded wait, independent of the
// command context which may already be cancelled.
func (e *environment) shutdown(rt *app.Runtime) {
	if rt != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := rt.Close(ctx); err != nil {
			e.logger.Warn("shutdown incomplete", "error", err)
			printWarning("shutdown incomplete: %v", err)
		}
	}
	if e.logSink != nil {
		_ = e.logSink.Close()
	}
}
