package graphtools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/knowgraph/internal/graph"
)

// Register adds every graph tool to s.
func Register(s *server.MCPServer, store *graph.Store) {
	createEntities := NewCreateEntitiesTool(store)
	s.AddTool(createEntities.Definition(), createEntities.Handle)

	createRelations := NewCreateRelationsTool(store)
	s.AddTool(createRelations.Definition(), createRelations.Handle)

	addObservations := NewAddObservationsTool(store)
	s.AddTool(addObservations.Definition(), addObservations.Handle)

	deleteEntities := NewDeleteEntitiesTool(store)
	s.AddTool(deleteEntities.Definition(), deleteEntities.Handle)

	deleteObservations := NewDeleteObservationsTool(store)
	s.AddTool(deleteObservations.Definition(), deleteObservations.Handle)

	deleteRelations := NewDeleteRelationsTool(store)
	s.AddTool(deleteRelations.Definition(), deleteRelations.Handle)

	readGraph := NewReadGraphTool(store)
	s.AddTool(readGraph.Definition(), readGraph.Handle)

	searchNodes := NewSearchNodesTool(store)
	s.AddTool(searchNodes.Definition(), searchNodes.Handle)

	openNodes := NewOpenNodesTool(store)
	s.AddTool(openNodes.Definition(), openNodes.Handle)

	searchObservations := NewSearchObservationsTool(store)
	s.AddTool(searchObservations.Definition(), searchObservations.Handle)
}
