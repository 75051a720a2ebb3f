package graphtools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// ─── ReadGraphTool ───────────────────────────────────────────────────────────

// ReadGraphTool handles the read_graph MCP tool.
type ReadGraphTool struct {
	store *graph.Store
}

// NewReadGraphTool creates a ReadGraphTool with the given store.
func NewReadGraphTool(store *graph.Store) *ReadGraphTool {
	return &ReadGraphTool{store: store}
}

// Definition returns the MCP tool definition for read_graph.
func (t *ReadGraphTool) Definition() mcp.Tool {
	return mcp.NewTool("read_graph",
		mcp.WithDescription("Read the entire knowledge graph: every entity and every relation."),
	)
}

// Handle processes the read_graph tool call.
func (t *ReadGraphTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := t.store.ReadGraph(ctx)
	if err != nil {
		return storeError("read graph", err), nil
	}
	return jsonResult(g)
}

// ─── SearchNodesTool ─────────────────────────────────────────────────────────

// SearchNodesTool handles the search_nodes MCP tool.
type SearchNodesTool struct {
	store *graph.Store
}

// NewSearchNodesTool creates a SearchNodesTool with the given store.
func NewSearchNodesTool(store *graph.Store) *SearchNodesTool {
	return &SearchNodesTool{store: store}
}

// Definition returns the MCP tool definition for search_nodes.
func (t *SearchNodesTool) Definition() mcp.Tool {
	return mcp.NewTool("search_nodes",
		mcp.WithDescription(
			"Search for entities whose name, type or observation contents contain the query "+
				"(case-insensitive). Returns the matching entities and the relations between them.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for in entity names, types and observations"),
		),
	)
}

// Handle processes the search_nodes tool call.
func (t *SearchNodesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := req.GetArguments()["query"].(string)
	if !ok {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	g, err := t.store.SearchNodes(ctx, query)
	if err != nil {
		return storeError("search nodes", err), nil
	}
	return jsonResult(g)
}

// ─── OpenNodesTool ───────────────────────────────────────────────────────────

// OpenNodesTool handles the open_nodes MCP tool.
type OpenNodesTool struct {
	store *graph.Store
}

// NewOpenNodesTool creates an OpenNodesTool with the given store.
func NewOpenNodesTool(store *graph.Store) *OpenNodesTool {
	return &OpenNodesTool{store: store}
}

// Definition returns the MCP tool definition for open_nodes.
func (t *OpenNodesTool) Definition() mcp.Tool {
	return mcp.NewTool("open_nodes",
		mcp.WithDescription(
			"Open specific entities by name. Returns those entities and the relations between them; "+
				"unknown names are ignored.",
		),
		mcp.WithArray("names",
			mcp.Required(),
			mcp.Description("Entity names to retrieve"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the open_nodes tool call.
func (t *OpenNodesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := decodeArg[[]string](req, "names")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g, err := t.store.OpenNodes(ctx, names)
	if err != nil {
		return storeError("open nodes", err), nil
	}
	return jsonResult(g)
}

// ─── SearchObservationsTool ──────────────────────────────────────────────────

// SearchObservationsTool handles the search_observations MCP tool.
type SearchObservationsTool struct {
	store *graph.Store
}

// NewSearchObservationsTool creates a SearchObservationsTool with the given store.
func NewSearchObservationsTool(store *graph.Store) *SearchObservationsTool {
	return &SearchObservationsTool{store: store}
}

// Definition returns the MCP tool definition for search_observations.
func (t *SearchObservationsTool) Definition() mcp.Tool {
	return mcp.NewTool("search_observations",
		mcp.WithDescription(
			"Search the observations of one entity for the query (case-insensitive). "+
				"Fails if the entity does not exist.",
		),
		mcp.WithString("entityName",
			mcp.Required(),
			mcp.Description("The entity whose observations to search"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to look for"),
		),
	)
}

// Handle processes the search_observations tool call.
func (t *SearchObservationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityName := req.GetString("entityName", "")
	if entityName == "" {
		return mcp.NewToolResultError("'entityName' is required"), nil
	}
	query, ok := req.GetArguments()["query"].(string)
	if !ok {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	matches, err := t.store.SearchObservations(ctx, entityName, query)
	if err != nil {
		return storeError("search observations", err), nil
	}
	return jsonResult(map[string]any{
		"entityName":   entityName,
		"observations": matches,
	})
}
