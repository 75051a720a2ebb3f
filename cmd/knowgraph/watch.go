package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	kgserver "github.com/HendryAvila/knowgraph/internal/server"
	"github.com/HendryAvila/knowgraph/internal/viewer"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	var (
		url      string
		interval time.Duration
		noEvents bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a sync endpoint and log every change",
		Long: `Poll a sync endpoint and reconcile each snapshot into a local view,
logging what was added, removed or updated. Change events from the endpoint
trigger an early poll unless --no-events is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("url") {
				cfg.Viewer.URL = url
			}
			if cmd.Flags().Changed("interval") {
				cfg.Viewer.PollInterval = interval
			}

			poller := viewer.NewPoller(viewer.PollerConfig{
				BaseURL:   cfg.Viewer.URL,
				Interval:  cfg.Viewer.PollInterval,
				Renderer:  viewer.NewLogRenderer(logger),
				Logger:    logger,
				Options:   viewer.Options{Jitter: cfg.Viewer.Jitter},
				UserAgent: "knowgraph/" + kgserver.Version,
			})

			logger.Info("Watching graph",
				zap.String("url", cfg.Viewer.URL),
				zap.Duration("interval", cfg.Viewer.PollInterval),
			)

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.Go(func() error { return poller.Run(ctx) })
			if !noEvents {
				eg.Go(func() error { return poller.Listen(ctx, viewer.EventsURL(cfg.Viewer.URL)) })
			}
			return eg.Wait()
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Base URL of the sync endpoint (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", viewer.DefaultInterval, "Poll interval")
	cmd.Flags().BoolVar(&noEvents, "no-events", false, "Poll only; ignore change events")
	return cmd
}
