package syncapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// countingReader wraps a reader and counts reloads.
type countingReader struct {
	inner GraphReader
	calls atomic.Int32
	err   error
}

func (c *countingReader) ReadGraph(ctx context.Context) (graph.Graph, error) {
	c.calls.Add(1)
	if c.err != nil {
		return graph.Graph{}, c.err
	}
	return c.inner.ReadGraph(ctx)
}

func newTestStore(t *testing.T) (*graph.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.jsonl")
	return graph.NewStore(graph.NewFileBackend(path), graph.StoreOptions{}), path
}

func get(t *testing.T, h http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGraphEndpoint_ServesProjection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	_, err := store.CreateEntities(ctx, []graph.Entity{{Name: "A", EntityType: "person", Observations: []string{"x"}}})
	require.NoError(t, err)
	_, err = store.CreateRelations(ctx, []graph.Relation{{From: "A", To: "ghost", RelationType: "knows"}})
	require.NoError(t, err)

	h := NewRouter(RouterOptions{Store: store, Logger: zap.NewNop()})
	rec := get(t, h, syncproto.GraphPath, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	var snap syncproto.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, []syncproto.Node{{ID: "A", Type: "person", Observations: []string{"x"}}}, snap.Nodes)
	assert.Equal(t, []syncproto.Link{{Source: "A", Target: "ghost", Type: "knows"}}, snap.Links,
		"links are projected even when an endpoint is missing")
}

func TestGraphEndpoint_EmptyGraph(t *testing.T) {
	store, _ := newTestStore(t)
	rec := get(t, NewRouter(RouterOptions{Store: store}), syncproto.GraphPath, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"nodes":[],"links":[]}`, rec.Body.String())
}

func TestGraphEndpoint_ReloadsEveryRequest(t *testing.T) {
	store, path := newTestStore(t)
	reader := &countingReader{inner: store}
	h := NewRouter(RouterOptions{Store: reader})

	first := get(t, h, syncproto.GraphPath, nil)
	require.Equal(t, http.StatusOK, first.Code)

	// Another process writes the file between polls.
	other := graph.NewStore(graph.NewFileBackend(path), graph.StoreOptions{})
	_, err := other.CreateEntities(context.Background(), []graph.Entity{{Name: "B", EntityType: "t"}})
	require.NoError(t, err)

	second := get(t, h, syncproto.GraphPath, nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"id":"B"`)
	assert.NotEqual(t, first.Header().Get("ETag"), second.Header().Get("ETag"))
	assert.Equal(t, int32(2), reader.calls.Load())
}

// gatedReader blocks its first reload until release is closed.
type gatedReader struct {
	inner   GraphReader
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (g *gatedReader) ReadGraph(ctx context.Context) (graph.Graph, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
		<-g.release
	}
	return g.inner.ReadGraph(ctx)
}

func TestGraphEndpoint_LateArrivalStartsFreshReload(t *testing.T) {
	store, _ := newTestStore(t)
	reader := &gatedReader{inner: store, started: make(chan struct{}), release: make(chan struct{})}
	h := NewRouter(RouterOptions{Store: reader})

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() { firstDone <- get(t, h, syncproto.GraphPath, nil) }()
	<-reader.started

	// Saved while the first reload is stuck; the next request must see it.
	_, err := store.CreateEntities(context.Background(), []graph.Entity{{Name: "late", EntityType: "t"}})
	require.NoError(t, err)

	second := get(t, h, syncproto.GraphPath, nil)
	close(reader.release)

	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"id":"late"`)
	assert.Equal(t, int32(2), reader.calls.Load())
	assert.Equal(t, http.StatusOK, (<-firstDone).Code)
}

func TestGraphEndpoint_NotModified(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewRouter(RouterOptions{Store: store})

	first := get(t, h, syncproto.GraphPath, nil)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec := get(t, h, syncproto.GraphPath, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = get(t, h, syncproto.GraphPath, map[string]string{"If-None-Match": `"stale"`})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGraphEndpoint_ReloadFailure(t *testing.T) {
	reader := &countingReader{err: errors.New("disk on fire")}
	rec := get(t, NewRouter(RouterOptions{Store: reader}), syncproto.GraphPath, nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "disk on fire", body["error"])
	assert.Empty(t, rec.Header().Get("ETag"))
}

func TestRouter_Health(t *testing.T) {
	rec := get(t, NewRouter(RouterOptions{Store: &countingReader{}}), "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	rec := get(t, NewRouter(RouterOptions{Store: &countingReader{}}), "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_OnlyGet(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewRouter(RouterOptions{Store: store})

	req := httptest.NewRequest(http.MethodPost, syncproto.GraphPath, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_RequestID(t *testing.T) {
	h := NewRouter(RouterOptions{Store: &countingReader{}})

	rec := get(t, h, "/healthz", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = get(t, h, "/healthz", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRouter_CORS(t *testing.T) {
	store, _ := newTestStore(t)
	h := NewRouter(RouterOptions{Store: store, AllowedOrigins: []string{"http://viewer.local"}})

	rec := get(t, h, syncproto.GraphPath, map[string]string{"Origin": "http://viewer.local"})
	assert.Equal(t, "http://viewer.local", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(t, h, syncproto.GraphPath, map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_EventsDisabledWithoutHub(t *testing.T) {
	rec := get(t, NewRouter(RouterOptions{Store: &countingReader{}}), syncproto.EventsPath, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
