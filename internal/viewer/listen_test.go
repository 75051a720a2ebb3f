package viewer

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/syncapi"
)

func TestListen_ChangeEventTriggersEarlyPoll(t *testing.T) {
	store := graph.NewStore(graph.NewFileBackend(filepath.Join(t.TempDir(), "memory.jsonl")), graph.StoreOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := store.CreateEntities(ctx, []graph.Entity{{Name: "A", EntityType: "t"}})
	require.NoError(t, err)

	hub := syncapi.NewHub(zap.NewNop())
	srv := httptest.NewServer(syncapi.NewRouter(syncapi.RouterOptions{Store: store, Hub: hub}))
	defer srv.Close()

	rec := &frameRecorder{}
	p := NewPoller(PollerConfig{BaseURL: srv.URL, Interval: time.Hour, Renderer: rec})
	go func() { _ = p.Run(ctx) }()
	go func() { _ = p.Listen(ctx, EventsURL(srv.URL)) }()

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = store.CreateEntities(ctx, []graph.Entity{{Name: "B", EntityType: "t"}})
	require.NoError(t, err)
	hub.NotifyChanged()

	require.Eventually(t, func() bool { return rec.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"B"}, rec.last().Patch.AddedNodes)
}

func TestListen_ReturnsOnCancel(t *testing.T) {
	p := NewPoller(PollerConfig{BaseURL: "http://127.0.0.1:1"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Listen(ctx, "ws://127.0.0.1:1/api/graph/events") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}
