package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	kgserver "github.com/HendryAvila/knowgraph/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var syncAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server on stdin/stdout. Logs go to stderr.

With --sync-addr (or KNOWGRAPH_SYNC_ADDR) the sync endpoint runs alongside
it in the same process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if cmd.Flags().Changed("sync-addr") {
				cfg.Sync.Addr = syncAddr
			}

			store, cleanup, err := kgserver.OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			eg, ctx := errgroup.WithContext(ctx)

			if cfg.Sync.Addr != "" {
				syncSrv := kgserver.NewSync(cfg, store, logger)
				eg.Go(func() error { return syncSrv.ListenAndServe(ctx, cfg.Sync.Addr) })
			}

			stdio := server.NewStdioServer(kgserver.New(store))
			stdio.SetErrorLogger(zap.NewStdLog(logger.Named("mcp")))
			eg.Go(func() error {
				// The client closing stdin ends the session and the sync endpoint with it.
				defer cancel()
				logger.Info("MCP server ready on stdio", zap.String("version", kgserver.Version))
				if err := stdio.Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && ctx.Err() == nil {
					return fmt.Errorf("stdio: %w", err)
				}
				return nil
			})

			return eg.Wait()
		},
	}

	cmd.Flags().StringVar(&syncAddr, "sync-addr", "", "Also serve the sync endpoint on this address, e.g. 127.0.0.1:8765")
	return cmd
}
