package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, r *mcp.GetPromptResult) string {
	t.Helper()
	if len(r.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(r.Messages))
	}
	tc, ok := r.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", r.Messages[0].Content)
	}
	return tc.Text
}

func TestStatusPrompt(t *testing.T) {
	p := NewStatusPrompt()
	if got := p.Definition().Name; got != "graph-status" {
		t.Errorf("name = %s", got)
	}

	r, err := p.Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !strings.Contains(promptText(t, r), "read_graph") {
		t.Error("status prompt should ask for read_graph")
	}
}

func TestRememberPrompt(t *testing.T) {
	p := NewRememberPrompt()
	def := p.Definition()
	if def.Name != "graph-remember" {
		t.Errorf("name = %s", def.Name)
	}
	if len(def.Arguments) != 1 || def.Arguments[0].Name != "topic" || !def.Arguments[0].Required {
		t.Errorf("arguments = %+v", def.Arguments)
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"topic": "Ada Lovelace"}
	r, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	text := promptText(t, r)
	if !strings.Contains(text, `"Ada Lovelace"`) || !strings.Contains(text, "create_entities") {
		t.Errorf("unexpected prompt text:\n%s", text)
	}
}

func TestRememberPrompt_RequiresTopic(t *testing.T) {
	if _, err := NewRememberPrompt().Handle(context.Background(), mcp.GetPromptRequest{}); err == nil {
		t.Fatal("expected error without topic")
	}
}
