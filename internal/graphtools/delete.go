package graphtools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// ─── DeleteEntitiesTool ──────────────────────────────────────────────────────

// DeleteEntitiesTool handles the delete_entities MCP tool.
type DeleteEntitiesTool struct {
	store *graph.Store
}

// NewDeleteEntitiesTool creates a DeleteEntitiesTool with the given store.
func NewDeleteEntitiesTool(store *graph.Store) *DeleteEntitiesTool {
	return &DeleteEntitiesTool{store: store}
}

// Definition returns the MCP tool definition for delete_entities.
func (t *DeleteEntitiesTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_entities",
		mcp.WithDescription(
			"Delete entities and every relation that starts or ends at them. Unknown names are ignored.",
		),
		mcp.WithArray("entityNames",
			mcp.Required(),
			mcp.Description("Names of the entities to delete"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the delete_entities tool call.
func (t *DeleteEntitiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := decodeArg[[]string](req, "entityNames")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.store.DeleteEntities(ctx, names); err != nil {
		return storeError("delete entities", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Entities deleted successfully (%d requested)", len(names))), nil
}

// ─── DeleteObservationsTool ──────────────────────────────────────────────────

// DeleteObservationsTool handles the delete_observations MCP tool.
type DeleteObservationsTool struct {
	store *graph.Store
}

// NewDeleteObservationsTool creates a DeleteObservationsTool with the given store.
func NewDeleteObservationsTool(store *graph.Store) *DeleteObservationsTool {
	return &DeleteObservationsTool{store: store}
}

// Definition returns the MCP tool definition for delete_observations.
func (t *DeleteObservationsTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_observations",
		mcp.WithDescription(
			"Delete specific observations from entities. Observations an entity does not hold are ignored; "+
				"fails without changing anything if any named entity does not exist.",
		),
		mcp.WithArray("deletions",
			mcp.Required(),
			mcp.Description("Observations to delete, grouped by entity"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entityName":   map[string]any{"type": "string", "description": "The name of the entity holding the observations"},
					"observations": stringArray("Observation contents to delete"),
				},
				"required": []string{"entityName", "observations"},
			}),
		),
	)
}

// Handle processes the delete_observations tool call.
func (t *DeleteObservationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deletions, err := decodeArg[[]graph.ObservationDeletion](req, "deletions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.store.DeleteObservations(ctx, deletions); err != nil {
		return storeError("delete observations", err), nil
	}
	return mcp.NewToolResultText("Observations deleted successfully"), nil
}

// ─── DeleteRelationsTool ─────────────────────────────────────────────────────

// DeleteRelationsTool handles the delete_relations MCP tool.
type DeleteRelationsTool struct {
	store *graph.Store
}

// NewDeleteRelationsTool creates a DeleteRelationsTool with the given store.
func NewDeleteRelationsTool(store *graph.Store) *DeleteRelationsTool {
	return &DeleteRelationsTool{store: store}
}

// Definition returns the MCP tool definition for delete_relations.
func (t *DeleteRelationsTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_relations",
		mcp.WithDescription(
			"Delete relations matching from, to and relationType exactly. Relations that do not exist are ignored.",
		),
		mcp.WithArray("relations",
			mcp.Required(),
			mcp.Description("Relations to delete"),
			mcp.Items(relationSchema),
		),
	)
}

// Handle processes the delete_relations tool call.
func (t *DeleteRelationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	relations, err := decodeArg[[]graph.Relation](req, "relations")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.store.DeleteRelations(ctx, relations); err != nil {
		return storeError("delete relations", err), nil
	}
	return mcp.NewToolResultText("Relations deleted successfully"), nil
}
