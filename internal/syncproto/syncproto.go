// Package syncproto defines the JSON shapes exchanged between the sync
// endpoint and the reconciliation client.
package syncproto

import (
	"encoding/json"
	"time"
)

// Snapshot is the full graph as served by GET /api/graph.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node is one entity. ID is the entity name.
type Node struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Observations []string `json:"observations"`
}

// Link is one relation. Source and Target are entity names.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// LinkKey identifies a link across snapshots. It is comparable, so it can
// key maps directly; names may contain any character.
type LinkKey struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Target string `json:"target"`
}

// String renders the key as a JSON array, ["source","type","target"].
func (k LinkKey) String() string {
	data, err := json.Marshal([3]string{k.Source, k.Type, k.Target})
	if err != nil {
		return k.Source + " " + k.Type + " " + k.Target
	}
	return string(data)
}

// Key identifies the link across snapshots.
func (l Link) Key() LinkKey {
	return LinkKey{Source: l.Source, Type: l.Type, Target: l.Target}
}

// EventGraphChanged is the only ChangeEvent type.
const EventGraphChanged = "graph_changed"

// ChangeEvent is pushed over the events websocket when the stored graph may
// have changed. It carries no data; clients re-poll.
type ChangeEvent struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// Paths served by the sync endpoint.
const (
	GraphPath  = "/api/graph"
	EventsPath = "/api/graph/events"
)
