package server

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/config"
	"github.com/HendryAvila/knowgraph/internal/graph"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.HomeDir = dir
	cfg.MemoryFile = filepath.Join(dir, "memory.jsonl")
	cfg.SQLitePath = filepath.Join(dir, "memory.db")
	return cfg
}

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		want    any
		wantErr bool
	}{
		{"file", func(c *config.Config) { c.Backend = config.BackendFile }, &graph.FileBackend{}, false},
		{"sqlite", func(c *config.Config) { c.Backend = config.BackendSQLite }, &graph.SQLiteBackend{}, false},
		{"s3", func(c *config.Config) {
			c.Backend = config.BackendS3
			c.S3.Bucket = "kg"
			c.S3.AccessKeyID = "test"
			c.S3.SecretAccessKey = "test"
			c.S3.SessionToken = "test"
		}, &graph.S3Backend{}, false},
		{"s3 without bucket", func(c *config.Config) { c.Backend = config.BackendS3 }, nil, true},
		{"unknown", func(c *config.Config) { c.Backend = "tape" }, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)

			b, cleanup, err := OpenBackend(context.Background(), cfg, zap.NewNop())
			require.NotNil(t, cleanup)
			defer cleanup()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, b)
		})
	}
}

func TestOpenStore_UsesMemoryFile(t *testing.T) {
	cfg := testConfig(t)
	store, cleanup, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, cfg.MemoryFile, store.Location())
}

func TestNew_ListsToolsPromptsResources(t *testing.T) {
	cfg := testConfig(t)
	store, cleanup, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	s := New(store)

	count := func(method, field string) int {
		t.Helper()
		msg := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"`+method+`"}`))
		data, err := json.Marshal(msg)
		require.NoError(t, err)
		var resp struct {
			Result map[string]json.RawMessage `json:"result"`
		}
		require.NoError(t, json.Unmarshal(data, &resp))
		var items []json.RawMessage
		require.NoError(t, json.Unmarshal(resp.Result[field], &items))
		return len(items)
	}

	assert.Equal(t, 10, count("tools/list", "tools"))
	assert.Equal(t, 2, count("prompts/list", "prompts"))
	assert.Equal(t, 2, count("resources/list", "resources"))
}

func TestNewSync_WatchesFileBackendOnly(t *testing.T) {
	cfg := testConfig(t)
	store, cleanup, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, NewSync(cfg, store, zap.NewNop()).Handler())
}

func TestServerInstructions(t *testing.T) {
	assert.Contains(t, serverInstructions(), "search_nodes")
}
