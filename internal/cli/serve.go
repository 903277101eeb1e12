package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-effects-mcp/internal/logging"
	"github.com/ironsheep/image-effects-mcp/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g)
		},
	}
}

func runServe(cmd *cobra.Command, g *globals) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logging.Logger()
	log.Info("server starting",
		"version", g.build.Version,
		"build_time", g.build.BuildTime,
		"commit", g.build.GitCommit,
	)

	srv := server.New(g.cfg, g.build.Version)
	err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info("server stopped")
	return err
}
