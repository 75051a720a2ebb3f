//go:build unix

package graph_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

func TestFileBackend_LockWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.jsonl")
	a := graph.NewFileBackend(path)
	b := graph.NewFileBackend(path)

	unlock, err := a.Lock(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = b.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock())

	unlock2, err := b.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, unlock2())
}
