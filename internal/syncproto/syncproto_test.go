package syncproto

import (
	"encoding/json"
	"testing"
)

func TestLinkKey(t *testing.T) {
	l := Link{Source: "A", Target: "B", Type: "knows"}
	if got := l.Key(); got != (LinkKey{Source: "A", Type: "knows", Target: "B"}) {
		t.Errorf("Key() = %+v", got)
	}
	if got := l.Key().String(); got != `["A","knows","B"]` {
		t.Errorf("String() = %s", got)
	}
	if l.Key() == (Link{Source: "B", Target: "A", Type: "knows"}).Key() {
		t.Error("reversed link must have a different key")
	}
}

func TestLinkKey_SeparatorInNames(t *testing.T) {
	a := Link{Source: "A|x", Target: "B", Type: "y"}
	b := Link{Source: "A", Target: "B", Type: "x|y"}
	if a.Key() == b.Key() {
		t.Error("links with different fields must have different keys")
	}
	if a.Key().String() == b.Key().String() {
		t.Errorf("string forms collide: %s", a.Key())
	}
}

func TestSnapshotJSONFieldNames(t *testing.T) {
	s := Snapshot{
		Nodes: []Node{{ID: "A", Type: "person", Observations: []string{"x"}}},
		Links: []Link{{Source: "A", Target: "A", Type: "self"}},
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"nodes":[{"id":"A","type":"person","observations":["x"]}],"links":[{"source":"A","target":"A","type":"self"}]}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}
