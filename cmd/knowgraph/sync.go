package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	kgserver "github.com/HendryAvila/knowgraph/internal/server"
)

// defaultSyncAddr matches the default viewer URL.
const defaultSyncAddr = "127.0.0.1:8765"

func newSyncCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Serve the read-only sync endpoint",
		Long: `Serve the graph snapshot at /api/graph and, for the file backend,
change notifications at /api/graph/events. Metrics are at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			listen := cfg.Sync.Addr
			if cmd.Flags().Changed("addr") || listen == "" {
				listen = addr
			}

			store, cleanup, err := kgserver.OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Debug("Starting sync endpoint", zap.String("addr", listen))
			return kgserver.NewSync(cfg, store, logger).ListenAndServe(cmd.Context(), listen)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultSyncAddr, "Listen address")
	return cmd
}
