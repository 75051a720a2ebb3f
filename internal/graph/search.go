package graph

import (
	"context"
	"strings"
)

// ─── Queries ─────────────────────────────────────────────────────────────────

// ReadGraph returns the whole graph.
func (s *Store) ReadGraph(ctx context.Context) (Graph, error) {
	var out Graph
	err := s.view(ctx, "read_graph", func(g Graph) error {
		out = g.normalized()
		return nil
	})
	return out, err
}

// SearchNodes returns the entities whose name, type or any observation
// contains query (case-insensitive), plus the relations between them.
func (s *Store) SearchNodes(ctx context.Context, query string) (Graph, error) {
	var out Graph
	err := s.view(ctx, "search_nodes", func(g Graph) error {
		q := strings.ToLower(query)
		out = subgraph(g, func(e Entity) bool { return entityMatches(e, q) })
		return nil
	})
	return out, err
}

// OpenNodes returns the named entities plus the relations between them.
// Names that do not exist are ignored.
func (s *Store) OpenNodes(ctx context.Context, names []string) (Graph, error) {
	var out Graph
	err := s.view(ctx, "open_nodes", func(g Graph) error {
		wanted := make(map[string]struct{}, len(names))
		for _, n := range names {
			wanted[n] = struct{}{}
		}
		out = subgraph(g, func(e Entity) bool {
			_, ok := wanted[e.Name]
			return ok
		})
		return nil
	})
	return out, err
}

// SearchObservations returns the observations of one entity containing query
// (case-insensitive). A missing entity is a NotFoundError.
func (s *Store) SearchObservations(ctx context.Context, entityName, query string) ([]string, error) {
	var out []string
	err := s.view(ctx, "search_observations", func(g Graph) error {
		idx := g.entityIndex(entityName)
		if idx < 0 {
			return &NotFoundError{Name: entityName}
		}
		q := strings.ToLower(query)
		out = []string{}
		for _, o := range g.Entities[idx].Observations {
			if strings.Contains(strings.ToLower(o), q) {
				out = append(out, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// subgraph keeps the entities accepted by keep and the relations whose both
// endpoints were kept. Relations are never matched on their own fields.
func subgraph(g Graph, keep func(Entity) bool) Graph {
	out := Graph{Entities: []Entity{}, Relations: []Relation{}}
	names := make(map[string]struct{})
	for _, e := range g.Entities {
		if keep(e) {
			out.Entities = append(out.Entities, e.clone())
			names[e.Name] = struct{}{}
		}
	}
	for _, r := range g.Relations {
		_, from := names[r.From]
		_, to := names[r.To]
		if from && to {
			out.Relations = append(out.Relations, r)
		}
	}
	return out
}

// entityMatches reports whether lowerQuery occurs in the entity's name, type
// or any observation, ignoring case.
func entityMatches(e Entity, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(e.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(e.EntityType), lowerQuery) {
		return true
	}
	for _, o := range e.Observations {
		if strings.Contains(strings.ToLower(o), lowerQuery) {
			return true
		}
	}
	return false
}
