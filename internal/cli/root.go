// Package cli wires the command line: the MCP server, one-shot effect
// application, and the effect listing.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-effects-mcp/internal/config"
	"github.com/ironsheep/image-effects-mcp/internal/logging"
)

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// globals holds the persistent flags and the configuration resolved from
// them before any subcommand runs.
type globals struct {
	build        BuildInfo
	logLevel     string
	workers      int
	historyLimit int
	cfg          config.Config
}

// Execute runs the root command against os.Args.
func Execute(info BuildInfo) error {
	return NewRootCmd(info).Execute()
}

// NewRootCmd builds the command tree. Running the root without a subcommand
// starts the MCP server.
func NewRootCmd(info BuildInfo) *cobra.Command {
	g := &globals{build: info}

	rootCmd := &cobra.Command{
		Use:   "image-effects-mcp",
		Short: "Raster effects engine with undo history, served over MCP",
		Long: `image-effects-mcp applies image adjustments and effects (sepia,
auto level, brightness/contrast, posterize, pixelate, invert colors) to a
layered canvas and records every edit in an undoable history.

Without a subcommand it serves the Model Context Protocol over stdin/stdout.
Logs go to stderr.

Environment variables:
  ` + config.EnvLogLevel + `       debug, info, warn or error (default info)
  ` + config.EnvWorkers + `         render goroutines, 0 = one per CPU
  ` + config.EnvHistoryLimit + `   max history entries, 0 = unlimited (default 50)`,
		Version:           info.Version,
		SilenceUsage:      true,
		PersistentPreRunE: g.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides "+config.EnvLogLevel+")")
	flags.IntVarP(&g.workers, "workers", "w", 0, "render goroutines, 0 = NumCPU (overrides "+config.EnvWorkers+")")
	flags.IntVar(&g.historyLimit, "history-limit", 0, "max history entries, 0 = unlimited (overrides "+config.EnvHistoryLimit+")")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"image-effects-mcp %s (%s/%s, %s)\n  Build time: %s\n  Git commit: %s\n",
		info.Version, runtime.GOOS, runtime.GOARCH, runtime.Version(), info.BuildTime, info.GitCommit,
	))

	rootCmd.AddCommand(
		newServeCmd(g),
		newApplyCmd(g),
		newEffectsCmd(),
	)
	return rootCmd
}

// setup resolves configuration from the environment and any flags that
// were set, then installs the stderr logger.
func (g *globals) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("workers") {
		cfg.Workers = g.workers
	}
	if flags.Changed("history-limit") {
		cfg.HistoryLimit = g.historyLimit
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLogger(logging.NewTextLogger(cmd.ErrOrStderr(), level))

	g.cfg = cfg
	logging.Logger().Debug("configuration",
		"version", g.build.Version,
		"log_level", cfg.LogLevel,
		"workers", cfg.Workers,
		"history_limit", cfg.HistoryLimit,
	)
	return nil
}
