package viewer

import (
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// Frame is what a renderer receives after a snapshot changed the view.
type Frame struct {
	Patch  Patch
	Nodes  []syncproto.Node
	Links  []syncproto.Link // resolved only
	Layout Layout

	Selected     string
	SelectedNode *syncproto.Node
}

// Renderer draws frames. Apply is called from the poller goroutine.
type Renderer interface {
	Apply(Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

// Apply implements Renderer.
func (f RendererFunc) Apply(fr Frame) { f(fr) }

// LogRenderer writes each frame to a zap logger. It backs `knowgraph watch`.
type LogRenderer struct {
	logger *zap.Logger
}

// NewLogRenderer creates a LogRenderer.
func NewLogRenderer(logger *zap.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

// Apply implements Renderer.
func (r *LogRenderer) Apply(f Frame) {
	r.logger.Info("Graph updated",
		zap.Int("nodes", len(f.Nodes)),
		zap.Int("links", len(f.Links)),
		zap.Strings("addedNodes", f.Patch.AddedNodes),
		zap.Strings("removedNodes", f.Patch.RemovedNodes),
		zap.Strings("updatedNodes", f.Patch.UpdatedNodes),
		zap.Int("addedLinks", len(f.Patch.AddedLinks)),
		zap.Int("removedLinks", len(f.Patch.RemovedLinks)),
	)
	for _, key := range f.Patch.AddedLinks {
		r.logger.Debug("Link added", zap.Stringer("link", key))
	}
	for _, key := range f.Patch.RemovedLinks {
		r.logger.Debug("Link removed", zap.Stringer("link", key))
	}
	if f.SelectedNode != nil {
		r.logger.Info("Selected node",
			zap.String("id", f.SelectedNode.ID),
			zap.String("type", f.SelectedNode.Type),
			zap.Strings("observations", f.SelectedNode.Observations),
		)
	}
}
