// Package viewer is the client side of the Live Sync Protocol: it polls the
// sync endpoint and reconciles each snapshot into a stable layout so that a
// renderer can update in place instead of redrawing from scratch.
package viewer

import (
	"math/rand/v2"
	"reflect"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// Position is a point in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Velocity is a node's current movement in a force layout.
type Velocity struct {
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// NodeState is the layout state carried across snapshots for one node.
type NodeState struct {
	Position
	Velocity
}

// Layout maps node ids to their layout state.
type Layout map[string]NodeState

// Clone returns an independent copy.
func (l Layout) Clone() Layout {
	out := make(Layout, len(l))
	for id, st := range l {
		out[id] = st
	}
	return out
}

// Options tunes placement of nodes that appear for the first time.
type Options struct {
	// Center of the viewport.
	Center Position

	// Jitter is the maximum offset from Center, per axis, for new nodes.
	Jitter float64

	// Rand, when set, makes placement deterministic.
	Rand *rand.Rand
}

// Patch lists what changed between two snapshots, keyed by stable ids.
// Link entries are Link.Key values.
type Patch struct {
	AddedNodes   []string `json:"addedNodes"`
	RemovedNodes []string `json:"removedNodes"`
	UpdatedNodes []string `json:"updatedNodes"`
	AddedLinks   []syncproto.LinkKey `json:"addedLinks"`
	RemovedLinks []syncproto.LinkKey `json:"removedLinks"`
}

// Empty reports whether the patch carries no change.
func (p Patch) Empty() bool {
	return len(p.AddedNodes)+len(p.RemovedNodes)+len(p.UpdatedNodes)+len(p.AddedLinks)+len(p.RemovedLinks) == 0
}

// Result is the outcome of one reconciliation.
type Result struct {
	// Changed is false when the snapshot carried nothing new; every other
	// field then reflects the previous state.
	Changed bool

	// Snapshot is the snapshot to pass as prev next time.
	Snapshot syncproto.Snapshot

	// Links are the snapshot's links whose endpoints both exist.
	Links []syncproto.Link

	Layout Layout
	Patch  Patch

	// Selected is the surviving selection, or "" if it was cleared.
	Selected string

	// SelectedNode is the fresh copy of the selected node for an in-place
	// detail refresh; nil when nothing is selected.
	SelectedNode *syncproto.Node
}

// Reconcile merges next into the state built from prev. Nodes that survive
// keep their position and velocity, new nodes are placed near the viewport
// center and removed nodes drop their layout state. Links that reference a
// missing node are dropped. The selection survives if its node does.
//
// Reconcile does not modify its arguments.
func Reconcile(prev, next syncproto.Snapshot, layout Layout, selected string, opts Options) Result {
	if !changed(prev, next) {
		return Result{
			Changed:      false,
			Snapshot:     prev,
			Links:        resolveLinks(prev),
			Layout:       layout.Clone(),
			Selected:     selected,
			SelectedNode: findNode(prev, selected),
		}
	}

	prevNodes := indexNodes(prev.Nodes)
	nextNodes := indexNodes(next.Nodes)

	out := Result{
		Changed:  true,
		Snapshot: next,
		Links:    resolveLinks(next),
		Layout:   make(Layout, len(next.Nodes)),
	}

	for _, n := range next.Nodes {
		if st, ok := layout[n.ID]; ok {
			out.Layout[n.ID] = st
		} else {
			out.Layout[n.ID] = NodeState{Position: place(opts)}
		}

		old, existed := prevNodes[n.ID]
		switch {
		case !existed:
			out.Patch.AddedNodes = append(out.Patch.AddedNodes, n.ID)
		case nodeDiffers(old, n):
			out.Patch.UpdatedNodes = append(out.Patch.UpdatedNodes, n.ID)
		}
	}
	for _, n := range prev.Nodes {
		if _, ok := nextNodes[n.ID]; !ok {
			out.Patch.RemovedNodes = append(out.Patch.RemovedNodes, n.ID)
		}
	}

	prevLinks := linkKeys(resolveLinks(prev))
	nextLinks := linkKeys(out.Links)
	for _, l := range out.Links {
		if _, ok := prevLinks[l.Key()]; !ok {
			out.Patch.AddedLinks = append(out.Patch.AddedLinks, l.Key())
		}
	}
	for _, l := range resolveLinks(prev) {
		if _, ok := nextLinks[l.Key()]; !ok {
			out.Patch.RemovedLinks = append(out.Patch.RemovedLinks, l.Key())
		}
	}

	if n := findNode(next, selected); n != nil {
		out.Selected = selected
		out.SelectedNode = n
	}
	return out
}

// changed is the change signal: different counts, a new node id, an existing
// node whose type or observations differ, or a link key not seen before.
func changed(prev, next syncproto.Snapshot) bool {
	if len(prev.Nodes) != len(next.Nodes) || len(prev.Links) != len(next.Links) {
		return true
	}

	prevNodes := indexNodes(prev.Nodes)
	for _, n := range next.Nodes {
		old, ok := prevNodes[n.ID]
		if !ok || nodeDiffers(old, n) {
			return true
		}
	}

	prevLinks := linkKeys(prev.Links)
	for _, l := range next.Links {
		if _, ok := prevLinks[l.Key()]; !ok {
			return true
		}
	}
	return false
}

func nodeDiffers(a, b syncproto.Node) bool {
	if a.Type != b.Type || len(a.Observations) != len(b.Observations) {
		return true
	}
	return !reflect.DeepEqual(nonNil(a.Observations), nonNil(b.Observations))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func indexNodes(nodes []syncproto.Node) map[string]syncproto.Node {
	m := make(map[string]syncproto.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

func linkKeys(links []syncproto.Link) map[syncproto.LinkKey]struct{} {
	m := make(map[syncproto.LinkKey]struct{}, len(links))
	for _, l := range links {
		m[l.Key()] = struct{}{}
	}
	return m
}

// resolveLinks keeps the links whose endpoints are both nodes of s.
func resolveLinks(s syncproto.Snapshot) []syncproto.Link {
	ids := make(map[string]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		ids[n.ID] = struct{}{}
	}
	out := make([]syncproto.Link, 0, len(s.Links))
	for _, l := range s.Links {
		_, src := ids[l.Source]
		_, dst := ids[l.Target]
		if src && dst {
			out = append(out, l)
		}
	}
	return out
}

func findNode(s syncproto.Snapshot, id string) *syncproto.Node {
	if id == "" {
		return nil
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			n := s.Nodes[i]
			return &n
		}
	}
	return nil
}

func place(opts Options) Position {
	f := rand.Float64
	if opts.Rand != nil {
		f = opts.Rand.Float64
	}
	return Position{
		X: opts.Center.X + (f()*2-1)*opts.Jitter,
		Y: opts.Center.Y + (f()*2-1)*opts.Jitter,
	}
}
