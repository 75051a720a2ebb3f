package syncapi

import (
	"testing"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

func TestProject_NeverNull(t *testing.T) {
	s := Project(graph.Graph{})
	if s.Nodes == nil || s.Links == nil {
		t.Fatalf("Project() of empty graph = %+v, want empty non-nil slices", s)
	}
}

func TestProject_CopiesObservations(t *testing.T) {
	g := graph.Graph{Entities: []graph.Entity{{Name: "A", EntityType: "t", Observations: []string{"x"}}}}
	s := Project(g)
	s.Nodes[0].Observations[0] = "changed"
	if g.Entities[0].Observations[0] != "x" {
		t.Error("projection must not alias the graph's observations")
	}
}
