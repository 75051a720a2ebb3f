package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ─── Durable records ─────────────────────────────────────────────────────────
//
// One record per line:
//
//	{"type":"entity","name":"A","entityType":"person","observations":["x"]}
//	{"type":"relation","from":"A","to":"B","relationType":"knows"}

// RecordKind is the value of a record's "type" tag.
type RecordKind string

const (
	KindEntity   RecordKind = "entity"
	KindRelation RecordKind = "relation"
)

// Record is a durable record: either an Entity or a Relation.
type Record interface {
	Kind() RecordKind
	isRecord()
}

// Kind implements Record.
func (Entity) Kind() RecordKind { return KindEntity }
func (Entity) isRecord()        {}

// Kind implements Record.
func (Relation) Kind() RecordKind { return KindRelation }
func (Relation) isRecord()        {}

type entityLine struct {
	Type         RecordKind `json:"type"`
	Name         string     `json:"name"`
	EntityType   string     `json:"entityType"`
	Observations []string   `json:"observations"`
}

type relationLine struct {
	Type         RecordKind `json:"type"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	RelationType string     `json:"relationType"`
}

// MarshalRecord encodes r as a single line of JSON without a trailing newline.
func MarshalRecord(r Record) ([]byte, error) {
	switch v := r.(type) {
	case Entity:
		obs := v.Observations
		if obs == nil {
			obs = []string{}
		}
		return json.Marshal(entityLine{
			Type:         KindEntity,
			Name:         v.Name,
			EntityType:   v.EntityType,
			Observations: obs,
		})
	case Relation:
		return json.Marshal(relationLine{
			Type:         KindRelation,
			From:         v.From,
			To:           v.To,
			RelationType: v.RelationType,
		})
	default:
		return nil, fmt.Errorf("graph: unsupported record %T", r)
	}
}

// ParseRecord decodes one durable record line. Unknown or missing type tags
// are rejected rather than skipped.
func ParseRecord(line []byte) (Record, error) {
	var head struct {
		Type RecordKind `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, &MalformedRecordError{Err: err}
	}

	switch head.Type {
	case KindEntity:
		var l entityLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, &MalformedRecordError{Err: err}
		}
		obs := l.Observations
		if obs == nil {
			obs = []string{}
		}
		return Entity{Name: l.Name, EntityType: l.EntityType, Observations: obs}, nil
	case KindRelation:
		var l relationLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, &MalformedRecordError{Err: err}
		}
		return Relation{From: l.From, To: l.To, RelationType: l.RelationType}, nil
	case "":
		return nil, &MalformedRecordError{Err: errors.New("missing type tag")}
	default:
		return nil, &MalformedRecordError{Err: fmt.Errorf("unknown type tag %q", head.Type)}
	}
}

// DecodeGraph parses newline-delimited records. Blank lines are ignored; the
// first malformed line aborts decoding.
func DecodeGraph(data []byte) (Graph, error) {
	g := Graph{Entities: []Entity{}, Relations: []Relation{}}
	for i, raw := range bytes.Split(data, []byte("\n")) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			var mre *MalformedRecordError
			if errors.As(err, &mre) {
				mre.Line = i + 1
			}
			return Graph{}, err
		}
		switch v := rec.(type) {
		case Entity:
			g.Entities = append(g.Entities, v)
		case Relation:
			g.Relations = append(g.Relations, v)
		}
	}
	return g, nil
}

// EncodeGraph writes every entity then every relation, one newline-terminated
// record per line.
func EncodeGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range g.Entities {
		line, err := MarshalRecord(e)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	for _, r := range g.Relations {
		line, err := MarshalRecord(r)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
