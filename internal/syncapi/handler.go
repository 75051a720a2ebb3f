package syncapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// GraphReader is the part of the graph store the endpoint needs.
type GraphReader interface {
	ReadGraph(ctx context.Context) (graph.Graph, error)
}

// GraphHandler serves GET /api/graph. Each request is answered from a
// reload that started after the request arrived. Requests arriving together
// share one reload.
type GraphHandler struct {
	store  GraphReader
	logger *zap.Logger
	group  singleflight.Group

	// gen names the reload that the next arrival joins. A reload bumps it
	// before reading, so later arrivals start a fresh one.
	gen atomic.Uint64
}

// NewGraphHandler creates a GraphHandler.
func NewGraphHandler(store GraphReader, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{store: store, logger: logger}
}

type snapshotBody struct {
	data []byte
	etag string
}

func (h *GraphHandler) load(ctx context.Context) (snapshotBody, error) {
	key := strconv.FormatUint(h.gen.Load(), 10)
	v, err, _ := h.group.Do(key, func() (interface{}, error) {
		h.gen.Add(1)
		g, err := h.store.ReadGraph(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(Project(g))
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(data)
		return snapshotBody{data: data, etag: `"` + hex.EncodeToString(sum[:]) + `"`}, nil
	})
	if err != nil {
		return snapshotBody{}, err
	}
	return v.(snapshotBody), nil
}

// ServeHTTP implements http.Handler.
func (h *GraphHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// A shared reload must not die with whichever caller started it.
	body, err := h.load(context.WithoutCancel(r.Context()))
	if err != nil {
		h.logger.Error("Failed to reload graph", zap.Error(err))
		syncRequests.WithLabelValues("error").Inc()
		respondJSON(w, h.logger, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("ETag", body.etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == body.etag {
		syncRequests.WithLabelValues("not_modified").Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	syncRequests.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body.data); err != nil {
		h.logger.Debug("Failed to write snapshot", zap.Error(err))
	}
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
