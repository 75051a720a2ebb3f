// Package graphtools provides the MCP tool handlers for the knowledge graph.
//
// Each tool follows the same shape:
//   - A struct with the graph.Store injected via constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() decodes the arguments, calls the store and returns the
//     store's result as pretty-printed JSON text
//
// Domain failures (missing arguments, unknown entities, storage errors) are
// returned as tool errors, never as Go errors.
package graphtools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// errMissingArg reports an absent or null required argument.
var errMissingArg = errors.New("is required")

// decodeArg converts the raw JSON argument key into T. MCP clients deliver
// arrays of objects as []any of map[string]any, so the value is re-encoded
// and decoded into the typed shape.
func decodeArg[T any](req mcp.CallToolRequest, key string) (T, error) {
	var out T
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return out, fmt.Errorf("'%s' %w", key, errMissingArg)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("'%s': %w", key, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("'%s' has the wrong shape: %w", key, err)
	}
	return out, nil
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// storeError turns a store failure into a tool error. Missing entities are
// reported in the store's own words so callers see which name failed.
func storeError(action string, err error) *mcp.CallToolResult {
	var nf *graph.NotFoundError
	if errors.As(err, &nf) {
		return mcp.NewToolResultError(nf.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
}

// ─── Schemas ─────────────────────────────────────────────────────────────────

func stringArray(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

var entitySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":         map[string]any{"type": "string", "description": "The name of the entity"},
		"entityType":   map[string]any{"type": "string", "description": "The type of the entity"},
		"observations": stringArray("Observation contents associated with the entity"),
	},
	"required": []string{"name", "entityType", "observations"},
}

var relationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"from":         map[string]any{"type": "string", "description": "The name of the entity where the relation starts"},
		"to":           map[string]any{"type": "string", "description": "The name of the entity where the relation ends"},
		"relationType": map[string]any{"type": "string", "description": "The type of the relation, in active voice"},
	},
	"required": []string{"from", "to", "relationType"},
}
