// Package graph implements the knowledge graph store: entities carrying
// observation strings, typed directed relations between entity names, and
// the line-oriented durable record format they are persisted in.
//
// Every Store operation is a self-contained transaction: the full graph is
// loaded from the backend, the operation is applied in memory and, for
// mutations, the full graph is written back. Nothing is cached across calls.
package graph

// ─── Types ───────────────────────────────────────────────────────────────────

// Entity is a named, typed node carrying an ordered list of observations.
// Names are unique within a graph; observations are unique within an entity.
type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

// Relation is a directed, typed edge between two entity names. The endpoints
// are not required to exist (see StoreOptions.StrictRelations).
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// Graph is the aggregate root: every entity and relation of one store.
type Graph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// ObservationAddition asks for contents to be appended to an entity.
type ObservationAddition struct {
	EntityName string   `json:"entityName"`
	Contents   []string `json:"contents"`
}

// AddedObservations reports which contents were actually appended to an
// entity after deduplication.
type AddedObservations struct {
	EntityName        string   `json:"entityName"`
	AddedObservations []string `json:"addedObservations"`
}

// ObservationDeletion asks for observation strings to be removed from an entity.
type ObservationDeletion struct {
	EntityName   string   `json:"entityName"`
	Observations []string `json:"observations"`
}

// key identifies a relation by its full triple.
type relationKey struct {
	from, to, relationType string
}

func (r Relation) key() relationKey {
	return relationKey{from: r.From, to: r.To, relationType: r.RelationType}
}

// normalized returns a copy of g whose slices are non-nil, so JSON output
// always carries [] rather than null.
func (g Graph) normalized() Graph {
	out := Graph{
		Entities:  make([]Entity, 0, len(g.Entities)),
		Relations: make([]Relation, 0, len(g.Relations)),
	}
	for _, e := range g.Entities {
		out.Entities = append(out.Entities, e.clone())
	}
	out.Relations = append(out.Relations, g.Relations...)
	return out
}

func (e Entity) clone() Entity {
	obs := make([]string, len(e.Observations))
	copy(obs, e.Observations)
	e.Observations = obs
	return e
}

// entityIndex returns the position of the named entity, or -1.
func (g *Graph) entityIndex(name string) int {
	for i := range g.Entities {
		if g.Entities[i].Name == name {
			return i
		}
	}
	return -1
}

// uniqueStrings returns values with later duplicates removed, order kept.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
