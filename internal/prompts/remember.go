package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RememberPrompt handles the graph-remember MCP prompt. It asks the
// assistant to recall what the graph knows about a topic before adding to it.
type RememberPrompt struct{}

// NewRememberPrompt creates a RememberPrompt.
func NewRememberPrompt() *RememberPrompt {
	return &RememberPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RememberPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("graph-remember",
		mcp.WithPromptDescription(
			"Recall what the knowledge graph knows about a topic and record anything new "+
				"from the conversation as entities, relations and observations.",
		),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Person, project or concept to look up"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the graph-remember prompt request.
func (p *RememberPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	if topic == "" {
		return nil, fmt.Errorf("argument 'topic' is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Remember: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Run `search_nodes` with the query %q and then `open_nodes` on the names it returns.\n\n"+
						"Tell me what you already know about %s. Then, for anything new in this conversation:\n"+
						"- create missing entities with `create_entities`\n"+
						"- attach facts with `add_observations`, one fact per observation\n"+
						"- link entities with `create_relations`, using active voice for relationType\n\n"+
						"Do not repeat observations that already exist.",
					topic, topic,
				)),
			},
		},
	}, nil
}
