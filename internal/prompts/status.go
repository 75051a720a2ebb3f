// Package prompts implements MCP prompt handlers for the knowledge graph.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the assistant to run a specific sequence of tool calls.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the graph-status MCP prompt.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("graph-status",
		mcp.WithPromptDescription(
			"Summarize what the knowledge graph currently remembers: "+
				"entity types, the most connected entities and any dangling relations.",
		),
	)
}

// Handle processes the graph-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Knowledge Graph Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `read_graph` and summarize the knowledge graph.\n\n" +
						"Then:\n" +
						"1. Group the entities by entityType and give a count for each\n" +
						"2. List the entities with the most relations\n" +
						"3. Point out relations whose from or to names no entity\n" +
						"4. Suggest observations that look stale or duplicated",
				),
			},
		},
	}, nil
}
