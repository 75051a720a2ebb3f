package syncapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful shutdown once ctx is canceled.
const shutdownTimeout = 5 * time.Second

// Server runs the sync endpoint and, when a storage file is configured, the
// watcher that feeds its change hub.
type Server struct {
	handler http.Handler
	hub     *Hub
	watcher *Watcher
	logger  *zap.Logger
}

// ServerOptions configures NewServer.
type ServerOptions struct {
	Store          GraphReader
	Logger         *zap.Logger
	AllowedOrigins []string

	// WatchPath, when set, enables the change-event channel driven by
	// filesystem notifications on that file.
	WatchPath     string
	WatchDebounce time.Duration
}

// NewServer creates a Server.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("sync")

	var hub *Hub
	var watcher *Watcher
	if opts.WatchPath != "" {
		hub = NewHub(logger)
		watcher = NewWatcher(opts.WatchPath, opts.WatchDebounce, hub.NotifyChanged, logger)
	}

	return &Server{
		handler: NewRouter(RouterOptions{
			Store:          opts.Store,
			Logger:         logger,
			Hub:            hub,
			AllowedOrigins: opts.AllowedOrigins,
		}),
		hub:     hub,
		watcher: watcher,
		logger:  logger,
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("syncapi: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	if s.watcher != nil {
		g.Go(func() error { return s.watcher.Run(ctx) })
	}
	g.Go(func() error {
		s.logger.Info("Sync endpoint listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("syncapi: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		// Shutdown does not track hijacked websocket connections.
		if s.hub != nil {
			s.hub.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
