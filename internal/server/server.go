// Package server wires all components and creates the server instances.
//
// This is the composition root: it opens the configured storage backend,
// builds the graph store and injects it into the MCP tools, prompts,
// resources and the sync endpoint. No business logic lives here.
package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/config"
	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/graphtools"
	"github.com/HendryAvila/knowgraph/internal/prompts"
	"github.com/HendryAvila/knowgraph/internal/resources"
	"github.com/HendryAvila/knowgraph/internal/syncapi"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the MCP server name advertised to clients.
const Name = "knowgraph"

// OpenBackend opens the storage backend selected by cfg.Backend.
//
// The returned cleanup function releases the backend's resources and must
// be called on shutdown. It is always non-nil and safe to call.
func OpenBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (graph.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return graph.NewFileBackend(cfg.MemoryFile), noop, nil

	case config.BackendSQLite:
		b, err := graph.NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return b, func() {
			if err := b.Close(); err != nil {
				logger.Warn("Closing sqlite backend", zap.Error(err))
			}
		}, nil

	case config.BackendS3:
		b, err := graph.NewS3Backend(ctx, graph.S3Config{
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
		})
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// OpenStore opens the configured backend and wraps it in a graph.Store.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*graph.Store, func(), error) {
	backend, cleanup, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	store := graph.NewStore(backend, graph.StoreOptions{
		Logger:          logger,
		StrictRelations: cfg.StrictRelations,
	})
	logger.Info("Knowledge graph opened",
		zap.String("backend", cfg.Backend),
		zap.String("location", store.Location()),
		zap.Bool("strict_relations", cfg.StrictRelations),
	)
	return store, cleanup, nil
}

// New creates the MCP server with all tools, prompts and resources
// registered against store.
func New(store *graph.Store) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register graph tools ---

	graphtools.Register(s, store)

	// --- Register prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	rememberPrompt := prompts.NewRememberPrompt()
	s.AddPrompt(rememberPrompt.Definition(), rememberPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(store)
	s.AddResource(resourceHandler.SnapshotResource(), resourceHandler.HandleSnapshot)
	s.AddResource(resourceHandler.StatsResource(), resourceHandler.HandleStats)

	return s
}

// NewSync creates the sync endpoint for store. Change events are only
// available for the file backend, whose file can be watched.
func NewSync(cfg config.Config, store *graph.Store, logger *zap.Logger) *syncapi.Server {
	opts := syncapi.ServerOptions{
		Store:          store,
		Logger:         logger,
		AllowedOrigins: cfg.Sync.AllowedOrigins,
		WatchDebounce:  cfg.Sync.WatchDebounce,
	}
	if cfg.Backend == config.BackendFile || cfg.Backend == "" {
		opts.WatchPath = cfg.MemoryFile
	}
	return syncapi.NewServer(opts)
}

// noop is the cleanup used when a backend holds no resources.
func noop() {}

// serverInstructions returns the system instructions that tell the
// assistant how to use the knowledge graph.
func serverInstructions() string {
	return `You have access to knowgraph, a persistent knowledge graph memory.

## MODEL

- Entities are nodes with a unique name, an entityType and a list of observations.
- Observations are short atomic facts, one fact per string.
- Relations are directed edges (from, to, relationType). Use active voice for relationType, e.g. "works_at", "depends_on".

## HOW TO USE IT

1. At the start of a conversation, call search_nodes or open_nodes for the people,
   projects and concepts the user mentions. Refer to what you find as "your memory".
2. While talking, notice new durable facts: identities, preferences, goals, relationships.
3. Record them:
   - create_entities for anything new (existing names are left untouched)
   - add_observations for new facts about known entities
   - create_relations to connect entities
4. Correct memory with delete_observations, delete_relations and delete_entities.
   Deleting an entity also deletes every relation that touches it.

## NOTES

- All creates are idempotent: repeating a call adds nothing twice.
- read_graph returns everything; prefer search_nodes on large graphs.
- search_observations looks inside a single entity's observations.`
}
