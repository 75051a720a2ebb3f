package graph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// Logger receives debug output about loads and saves. Nil disables it.
	Logger *zap.Logger

	// StrictRelations rejects relations whose endpoints are not existing
	// entities. Off by default: relations may dangle.
	StrictRelations bool
}

// Store is the graph's single source of truth. Each public method loads the
// whole graph from the backend, applies the operation and (for mutations)
// writes the whole graph back.
//
// Mutations are serialized: an in-process mutex plus, when the backend is a
// Locker, a cross-process lock cover the entire load-mutate-save span so
// concurrent callers never overwrite each other's effect.
type Store struct {
	backend Backend
	log     *zap.Logger
	strict  bool

	mu sync.Mutex
}

// NewStore creates a Store over the given backend.
func NewStore(backend Backend, opts StoreOptions) *Store {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		log:     log.Named("graph"),
		strict:  opts.StrictRelations,
	}
}

// Location describes where the graph is persisted.
func (s *Store) Location() string {
	return s.backend.Location()
}

// ─── Transactions ────────────────────────────────────────────────────────────

// load reads and decodes the full graph. A backend with nothing stored yields
// an empty graph.
func (s *Store) load(ctx context.Context) (Graph, error) {
	data, err := s.backend.Read(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Graph{Entities: []Entity{}, Relations: []Relation{}}, nil
		}
		return Graph{}, fmt.Errorf("graph: load: %w", err)
	}

	g, err := DecodeGraph(data)
	if err != nil {
		return Graph{}, fmt.Errorf("graph: load %s: %w", s.backend.Location(), err)
	}

	storeRecords.WithLabelValues("entity").Set(float64(len(g.Entities)))
	storeRecords.WithLabelValues("relation").Set(float64(len(g.Relations)))
	return g, nil
}

// save encodes g and replaces the stored content.
func (s *Store) save(ctx context.Context, g Graph) error {
	data, err := EncodeGraph(g)
	if err != nil {
		return fmt.Errorf("graph: encode: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("graph: save: %w", err)
	}
	s.log.Debug("graph saved",
		zap.String("location", s.backend.Location()),
		zap.Int("entities", len(g.Entities)),
		zap.Int("relations", len(g.Relations)),
	)
	return nil
}

// update runs fn inside the critical section and saves only if fn succeeds.
func (s *Store) update(ctx context.Context, op string, fn func(g *Graph) error) (retErr error) {
	start := time.Now()
	defer func() { observe(op, start, retErr) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.backend.(Locker); ok {
		unlock, err := l.Lock(ctx)
		if err != nil {
			return fmt.Errorf("graph: lock: %w", err)
		}
		defer func() {
			if err := unlock(); err != nil {
				s.log.Warn("releasing graph lock", zap.Error(err))
			}
		}()
	}

	g, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&g); err != nil {
		return err
	}
	return s.save(ctx, g)
}

// view loads the graph and hands it to fn. Reads take no lock: writes replace
// the stored content atomically.
func (s *Store) view(ctx context.Context, op string, fn func(g Graph) error) (retErr error) {
	start := time.Now()
	defer func() { observe(op, start, retErr) }()

	g, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(g)
}

func observe(op string, start time.Time, err error) {
	storeOperations.WithLabelValues(op, resultLabel(err)).Inc()
	storeOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func isNotFound(err error) bool { return errors.Is(err, ErrEntityNotFound) }

func isMalformed(err error) bool { return errors.Is(err, ErrMalformedRecord) }

// ─── Mutations ───────────────────────────────────────────────────────────────

// CreateEntities adds every entity whose name is not already taken and
// returns exactly the ones added. Within one call the first occurrence of a
// name wins, and duplicate observations inside a new entity are dropped.
func (s *Store) CreateEntities(ctx context.Context, entities []Entity) ([]Entity, error) {
	created := []Entity{}
	err := s.update(ctx, "create_entities", func(g *Graph) error {
		taken := make(map[string]struct{}, len(g.Entities)+len(entities))
		for _, e := range g.Entities {
			taken[e.Name] = struct{}{}
		}
		for _, e := range entities {
			if _, ok := taken[e.Name]; ok {
				continue
			}
			taken[e.Name] = struct{}{}
			ne := Entity{
				Name:         e.Name,
				EntityType:   e.EntityType,
				Observations: uniqueStrings(e.Observations),
			}
			g.Entities = append(g.Entities, ne)
			created = append(created, ne.clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateRelations adds every relation whose (from, to, relationType) triple
// is not already stored and returns exactly the ones added.
func (s *Store) CreateRelations(ctx context.Context, relations []Relation) ([]Relation, error) {
	created := []Relation{}
	err := s.update(ctx, "create_relations", func(g *Graph) error {
		if s.strict {
			for _, r := range relations {
				for _, name := range []string{r.From, r.To} {
					if g.entityIndex(name) < 0 {
						return &NotFoundError{Name: name}
					}
				}
			}
		}

		seen := make(map[relationKey]struct{}, len(g.Relations)+len(relations))
		for _, r := range g.Relations {
			seen[r.key()] = struct{}{}
		}
		for _, r := range relations {
			if _, ok := seen[r.key()]; ok {
				continue
			}
			seen[r.key()] = struct{}{}
			g.Relations = append(g.Relations, r)
			created = append(created, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddObservations appends contents to existing entities, skipping strings the
// entity already holds. If any named entity is missing the call fails with a
// NotFoundError and nothing is written.
func (s *Store) AddObservations(ctx context.Context, additions []ObservationAddition) ([]AddedObservations, error) {
	var results []AddedObservations
	err := s.update(ctx, "add_observations", func(g *Graph) error {
		results = make([]AddedObservations, 0, len(additions))
		for _, a := range additions {
			idx := g.entityIndex(a.EntityName)
			if idx < 0 {
				return &NotFoundError{Name: a.EntityName}
			}
			e := &g.Entities[idx]

			have := make(map[string]struct{}, len(e.Observations))
			for _, o := range e.Observations {
				have[o] = struct{}{}
			}
			added := []string{}
			for _, c := range a.Contents {
				if _, ok := have[c]; ok {
					continue
				}
				have[c] = struct{}{}
				e.Observations = append(e.Observations, c)
				added = append(added, c)
			}
			results = append(results, AddedObservations{EntityName: a.EntityName, AddedObservations: added})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteEntities removes the named entities and every relation that starts
// or ends at one of them. Unknown names are ignored.
func (s *Store) DeleteEntities(ctx context.Context, names []string) error {
	return s.update(ctx, "delete_entities", func(g *Graph) error {
		doomed := make(map[string]struct{}, len(names))
		for _, n := range names {
			doomed[n] = struct{}{}
		}

		entities := g.Entities[:0]
		for _, e := range g.Entities {
			if _, ok := doomed[e.Name]; !ok {
				entities = append(entities, e)
			}
		}
		g.Entities = entities

		relations := g.Relations[:0]
		for _, r := range g.Relations {
			_, fromGone := doomed[r.From]
			_, toGone := doomed[r.To]
			if !fromGone && !toGone {
				relations = append(relations, r)
			}
		}
		g.Relations = relations
		return nil
	})
}

// DeleteObservations removes the listed observation strings from each named
// entity. Like AddObservations, a missing entity fails the whole call.
func (s *Store) DeleteObservations(ctx context.Context, deletions []ObservationDeletion) error {
	return s.update(ctx, "delete_observations", func(g *Graph) error {
		for _, d := range deletions {
			idx := g.entityIndex(d.EntityName)
			if idx < 0 {
				return &NotFoundError{Name: d.EntityName}
			}
			drop := make(map[string]struct{}, len(d.Observations))
			for _, o := range d.Observations {
				drop[o] = struct{}{}
			}
			e := &g.Entities[idx]
			kept := make([]string, 0, len(e.Observations))
			for _, o := range e.Observations {
				if _, ok := drop[o]; !ok {
					kept = append(kept, o)
				}
			}
			e.Observations = kept
		}
		return nil
	})
}

// DeleteRelations removes stored relations matching any of the given triples.
// Triples that match nothing are ignored.
func (s *Store) DeleteRelations(ctx context.Context, relations []Relation) error {
	return s.update(ctx, "delete_relations", func(g *Graph) error {
		doomed := make(map[relationKey]struct{}, len(relations))
		for _, r := range relations {
			doomed[r.key()] = struct{}{}
		}
		kept := g.Relations[:0]
		for _, r := range g.Relations {
			if _, ok := doomed[r.key()]; !ok {
				kept = append(kept, r)
			}
		}
		g.Relations = kept
		return nil
	})
}
