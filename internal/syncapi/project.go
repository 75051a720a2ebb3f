package syncapi

import (
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// Project maps a graph onto the sync wire shape. Every entity becomes a node
// keyed by name and every relation a link between names; links whose
// endpoints are missing are kept, the client drops them.
func Project(g graph.Graph) syncproto.Snapshot {
	s := syncproto.Snapshot{
		Nodes: make([]syncproto.Node, 0, len(g.Entities)),
		Links: make([]syncproto.Link, 0, len(g.Relations)),
	}
	for _, e := range g.Entities {
		obs := make([]string, len(e.Observations))
		copy(obs, e.Observations)
		s.Nodes = append(s.Nodes, syncproto.Node{ID: e.Name, Type: e.EntityType, Observations: obs})
	}
	for _, r := range g.Relations {
		s.Links = append(s.Links, syncproto.Link{Source: r.From, Target: r.To, Type: r.RelationType})
	}
	return s
}
