// Package syncapi serves the Live Sync Protocol: the whole-graph snapshot a
// viewer polls, an optional websocket of change hints, health and metrics.
package syncapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// RouterOptions wires the router's dependencies.
type RouterOptions struct {
	Store  GraphReader
	Logger *zap.Logger

	// Hub enables GET /api/graph/events when non-nil.
	Hub *Hub

	// AllowedOrigins for CORS. Empty means any origin.
	AllowedOrigins []string
}

// NewRouter builds the sync endpoint's HTTP handler.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(requestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(accessLog(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "If-None-Match", RequestIDHeader},
		ExposedHeaders: []string{"ETag", RequestIDHeader},
		MaxAge:         300,
	}))

	router.Get("/healthz", healthCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Method(http.MethodGet, syncproto.GraphPath, NewGraphHandler(opts.Store, logger))
	if opts.Hub != nil {
		router.Method(http.MethodGet, syncproto.EventsPath, NewEventsHandler(opts.Hub, originChecker(opts.AllowedOrigins), logger))
	}

	return router
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// originChecker admits websocket upgrades from the configured origins. No
// origins, or "*", admits everything.
func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = struct{}{}
	}
	if len(allowed) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
