// Package resources implements MCP resource handlers for the knowledge graph.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (graph://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/syncapi"
)

// Resource URIs.
const (
	SnapshotURI = "graph://snapshot"
	StatsURI    = "graph://stats"
)

// GraphReader is the read side of graph.Store.
type GraphReader interface {
	ReadGraph(ctx context.Context) (graph.Graph, error)
	Location() string
}

// Handler manages graph resource endpoints.
type Handler struct {
	store GraphReader
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store GraphReader) *Handler {
	return &Handler{store: store}
}

// SnapshotResource returns the MCP resource definition for the graph snapshot.
func (h *Handler) SnapshotResource() mcp.Resource {
	return mcp.NewResource(
		SnapshotURI,
		"Knowledge Graph Snapshot",
		mcp.WithResourceDescription("The whole graph as nodes and links, the same document the sync endpoint serves"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSnapshot returns the current graph projected to nodes and links.
func (h *Handler) HandleSnapshot(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g, err := h.store.ReadGraph(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, syncapi.Project(g))
}

// Stats summarizes the graph for the stats resource.
type Stats struct {
	Location    string         `json:"location"`
	Entities    int            `json:"entities"`
	Relations   int            `json:"relations"`
	EntityTypes map[string]int `json:"entityTypes"`
}

// StatsResource returns the MCP resource definition for graph statistics.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Knowledge Graph Stats",
		mcp.WithResourceDescription("Where the graph is stored and how many entities and relations it holds, by entity type"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStats returns entity and relation counts.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g, err := h.store.ReadGraph(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	stats := Stats{
		Location:    h.store.Location(),
		Entities:    len(g.Entities),
		Relations:   len(g.Relations),
		EntityTypes: make(map[string]int),
	}
	for _, e := range g.Entities {
		stats.EntityTypes[e.EntityType]++
	}
	return jsonResource(req.Params.URI, stats)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
