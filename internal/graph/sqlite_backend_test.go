package graph

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("NewSQLiteBackend() error: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSQLiteBackend_EmptyIsNotExist(t *testing.T) {
	b := newTestSQLite(t)
	_, err := b.Read(context.Background())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Read() on empty table = %v, want fs.ErrNotExist", err)
	}
}

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	b := newTestSQLite(t)
	ctx := context.Background()

	if err := b.Write(ctx, []byte("a\n\nb\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := b.Write(ctx, []byte("c\nd\n")); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}
	data, err := b.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if string(data) != "c\nd\n" {
		t.Errorf("Read() = %q, want %q", data, "c\nd\n")
	}
	if !strings.HasPrefix(b.Location(), "sqlite://") {
		t.Errorf("Location() = %q", b.Location())
	}
}

func TestSQLiteBackend_WithStore(t *testing.T) {
	s := NewStore(newTestSQLite(t), StoreOptions{})
	ctx := context.Background()

	if _, err := s.CreateEntities(ctx, []Entity{{Name: "A", EntityType: "t", Observations: []string{"x"}}}); err != nil {
		t.Fatalf("CreateEntities() error: %v", err)
	}
	if _, err := s.CreateRelations(ctx, []Relation{{From: "A", To: "A", RelationType: "self"}}); err != nil {
		t.Fatalf("CreateRelations() error: %v", err)
	}
	g, err := s.ReadGraph(ctx)
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}
	if len(g.Entities) != 1 || len(g.Relations) != 1 {
		t.Errorf("got %d entities, %d relations", len(g.Entities), len(g.Relations))
	}

	// Deleting everything leaves an empty table, which reads as a fresh graph.
	if err := s.DeleteEntities(ctx, []string{"A"}); err != nil {
		t.Fatalf("DeleteEntities() error: %v", err)
	}
	g, err = s.ReadGraph(ctx)
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}
	if len(g.Entities) != 0 || len(g.Relations) != 0 {
		t.Errorf("expected empty graph, got %+v", g)
	}
}

func TestNewSQLiteBackend_OpenFailure(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errors.New("boom")
	}

	_, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "graph.db"))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected open failure, got %v", err)
	}
}
