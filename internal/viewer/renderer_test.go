package viewer

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

func TestLogRenderer_Apply(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewLogRenderer(zap.New(core))

	sel := node("A", "person", "x")
	r.Apply(Frame{
		Patch:        Patch{AddedNodes: []string{"A"}, AddedLinks: []syncproto.LinkKey{link("A", "self", "A").Key()}},
		Nodes:        []syncproto.Node{sel},
		Links:        []syncproto.Link{link("A", "self", "A")},
		Selected:     "A",
		SelectedNode: &sel,
	})

	if got := logs.FilterMessage("Graph updated").Len(); got != 1 {
		t.Errorf("Graph updated logged %d times, want 1", got)
	}
	if got := logs.FilterMessage("Link added").Len(); got != 1 {
		t.Errorf("Link added logged %d times, want 1", got)
	}
	if got := logs.FilterMessage("Selected node").Len(); got != 1 {
		t.Errorf("Selected node logged %d times, want 1", got)
	}
}
