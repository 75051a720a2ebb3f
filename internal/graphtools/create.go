package graphtools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// ─── CreateEntitiesTool ──────────────────────────────────────────────────────

// CreateEntitiesTool handles the create_entities MCP tool.
type CreateEntitiesTool struct {
	store *graph.Store
}

// NewCreateEntitiesTool creates a CreateEntitiesTool with the given store.
func NewCreateEntitiesTool(store *graph.Store) *CreateEntitiesTool {
	return &CreateEntitiesTool{store: store}
}

// Definition returns the MCP tool definition for create_entities.
func (t *CreateEntitiesTool) Definition() mcp.Tool {
	return mcp.NewTool("create_entities",
		mcp.WithDescription(
			"Create multiple new entities in the knowledge graph. "+
				"Entities whose name already exists are skipped; the result lists only the entities actually created.",
		),
		mcp.WithArray("entities",
			mcp.Required(),
			mcp.Description("Entities to create"),
			mcp.Items(entitySchema),
		),
	)
}

// Handle processes the create_entities tool call.
func (t *CreateEntitiesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entities, err := decodeArg[[]graph.Entity](req, "entities")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := t.store.CreateEntities(ctx, entities)
	if err != nil {
		return storeError("create entities", err), nil
	}
	return jsonResult(created)
}

// ─── CreateRelationsTool ─────────────────────────────────────────────────────

// CreateRelationsTool handles the create_relations MCP tool.
type CreateRelationsTool struct {
	store *graph.Store
}

// NewCreateRelationsTool creates a CreateRelationsTool with the given store.
func NewCreateRelationsTool(store *graph.Store) *CreateRelationsTool {
	return &CreateRelationsTool{store: store}
}

// Definition returns the MCP tool definition for create_relations.
func (t *CreateRelationsTool) Definition() mcp.Tool {
	return mcp.NewTool("create_relations",
		mcp.WithDescription(
			"Create multiple new relations between entities. Relations should be in active voice "+
				"(e.g. 'works_at', 'depends_on'). A relation identical to an existing one in from, to and "+
				"relationType is skipped; the result lists only the relations actually created.",
		),
		mcp.WithArray("relations",
			mcp.Required(),
			mcp.Description("Relations to create"),
			mcp.Items(relationSchema),
		),
	)
}

// Handle processes the create_relations tool call.
func (t *CreateRelationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	relations, err := decodeArg[[]graph.Relation](req, "relations")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := t.store.CreateRelations(ctx, relations)
	if err != nil {
		return storeError("create relations", err), nil
	}
	return jsonResult(created)
}

// ─── AddObservationsTool ─────────────────────────────────────────────────────

// AddObservationsTool handles the add_observations MCP tool.
type AddObservationsTool struct {
	store *graph.Store
}

// NewAddObservationsTool creates an AddObservationsTool with the given store.
func NewAddObservationsTool(store *graph.Store) *AddObservationsTool {
	return &AddObservationsTool{store: store}
}

// Definition returns the MCP tool definition for add_observations.
func (t *AddObservationsTool) Definition() mcp.Tool {
	return mcp.NewTool("add_observations",
		mcp.WithDescription(
			"Add new observations to existing entities. Contents the entity already holds are skipped. "+
				"Fails without changing anything if any named entity does not exist.",
		),
		mcp.WithArray("observations",
			mcp.Required(),
			mcp.Description("Observations to add, grouped by entity"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entityName": map[string]any{"type": "string", "description": "The name of the entity to add the observations to"},
					"contents":   stringArray("Observation contents to add"),
				},
				"required": []string{"entityName", "contents"},
			}),
		),
	)
}

// Handle processes the add_observations tool call.
func (t *AddObservationsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	additions, err := decodeArg[[]graph.ObservationAddition](req, "observations")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	added, err := t.store.AddObservations(ctx, additions)
	if err != nil {
		return storeError("add observations", err), nil
	}
	return jsonResult(added)
}
