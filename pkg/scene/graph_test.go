package scene

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
)

func newTestGraph(t *testing.T, nodes []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range nodes {
		if err := g.AddNode(Node{ID: id, Kind: KindGeneric, Title: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		id := e[0] + "->" + e[1]
		if err := g.AddEdge(Edge{ID: id, Source: e[0], Target: e[1], Kind: EdgeStraight}); err != nil {
			t.Fatalf("AddEdge(%s): %v", id, err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("empty id: got %v, want ErrInvalidID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate: got %v, want ErrDuplicateID", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g.NodeCount())
	}
}

func TestAddEdgeDanglingReference(t *testing.T) {
	g := newTestGraph(t, []string{"a"}, nil)

	err := g.AddEdge(Edge{ID: "e1", Source: "a", Target: "missing"})
	var dr *cferrors.DanglingReferenceError
	if !errors.As(err, &dr) {
		t.Fatalf("got %v, want DanglingReferenceError", err)
	}
	if dr.NodeID != "missing" || dr.EdgeID != "e1" {
		t.Errorf("got %+v", dr)
	}
	if !cferrors.Is(err, cferrors.ErrCodeDanglingReference) {
		t.Error("error should carry DANGLING_REFERENCE code")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}
}

func TestAddEdgeIDSharedWithNode(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, nil)
	if err := g.AddEdge(Edge{ID: "a", Source: "a", Target: "b"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("got %v, want ErrDuplicateID", err)
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})
	g.Select("b")

	removed, ok := g.RemoveNode("b")
	if !ok {
		t.Fatal("RemoveNode reported missing node")
	}
	if len(removed) != 2 {
		t.Errorf("removed %d edges, want 2", len(removed))
	}
	if g.EdgeCount() != 1 || g.Edges()[0].ID != "a->c" {
		t.Errorf("edges = %+v, want only a->c", g.Edges())
	}
	if g.Selected() != "" {
		t.Errorf("selection = %q, want cleared", g.Selected())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if _, ok := g.RemoveNode("b"); ok {
		t.Error("second RemoveNode should report missing")
	}
}

func TestKnownRetiresRemovedIDs(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.RemoveNode("a")

	for _, id := range []string{"a", "a->b", "b"} {
		if !g.Known(id) {
			t.Errorf("Known(%q) = false, want true", id)
		}
	}
	if g.Known("c") {
		t.Error("Known(c) = true, want false")
	}
	if g.HasNode("a") {
		t.Error("HasNode(a) after removal")
	}
}

func TestSelection(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, nil)

	if g.Select("missing") {
		t.Error("Select(missing) should fail")
	}
	if g.Selected() != "" {
		t.Errorf("Selected = %q, want none", g.Selected())
	}

	g.Select("a")
	g.Select("b")
	if g.Selected() != "b" {
		t.Errorf("Selected = %q, want b", g.Selected())
	}

	g.ClearSelection()
	if g.Selected() != "" {
		t.Errorf("Selected = %q, want none", g.Selected())
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	ids := []string{"z", "a", "m", "b"}
	g := newTestGraph(t, ids, nil)

	nodes := g.Nodes()
	for i, n := range nodes {
		if n.ID != ids[i] {
			t.Errorf("Nodes()[%d] = %s, want %s", i, n.ID, ids[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.UpdateNode("a", func(n *Node) { n.Payload.Items = []string{"x"} })

	c := g.Clone()
	c.RemoveNode("a")
	c.UpdateNode("b", func(n *Node) { n.Title = "changed" })

	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("original mutated: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := g.Node("b"); n.Title != "b" {
		t.Errorf("original title = %q", n.Title)
	}

	n, _ := g.Node("a")
	n.Payload.Items[0] = "y"
	if n2, _ := g.Node("a"); n2.Payload.Items[0] != "x" {
		t.Error("Node() should return a deep copy")
	}
}

func TestUpdateNodeKeepsID(t *testing.T) {
	g := newTestGraph(t, []string{"a"}, nil)
	ok := g.UpdateNode("a", func(n *Node) {
		n.ID = "b"
		n.Title = "renamed"
	})
	if !ok {
		t.Fatal("UpdateNode reported missing node")
	}
	n, ok := g.Node("a")
	if !ok || n.Title != "renamed" || n.ID != "a" {
		t.Errorf("got %+v", n)
	}
	if g.UpdateNode("missing", func(*Node) {}) {
		t.Error("UpdateNode(missing) should return false")
	}
}

func TestFindLink(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	if _, ok := g.FindLink(Edge{ID: "other", Source: "a", Target: "b", Kind: EdgeStraight}); !ok {
		t.Error("FindLink should match on endpoints and kind")
	}
	if _, ok := g.FindLink(Edge{Source: "a", Target: "b", Kind: EdgeCurved}); ok {
		t.Error("FindLink should not match a different kind")
	}
	if _, ok := g.FindLink(Edge{Source: "b", Target: "a", Kind: EdgeStraight}); ok {
		t.Error("FindLink should respect direction")
	}
}

func TestClear(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.Select("a")
	g.Clear()

	if g.NodeCount() != 0 || g.EdgeCount() != 0 || g.Selected() != "" {
		t.Errorf("not cleared: %d nodes, %d edges, selected %q", g.NodeCount(), g.EdgeCount(), g.Selected())
	}
	if !g.Known("a") || !g.Known("a->b") {
		t.Error("cleared ids should be retired")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := newTestGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.Select("b")

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Graph
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.NodeCount() != 2 || got.EdgeCount() != 1 || got.Selected() != "b" {
		t.Errorf("round trip lost data: %s", data)
	}
}

func TestUnmarshalRejectsDanglingEdge(t *testing.T) {
	data := `{"nodes":[{"id":"a","kind":"generic","title":"a"}],"edges":[{"id":"e","source":"a","target":"x","kind":"straight"}]}`
	var g Graph
	err := json.Unmarshal([]byte(data), &g)
	if err == nil || !strings.Contains(err.Error(), "DANGLING_REFERENCE") {
		t.Errorf("got %v, want dangling reference error", err)
	}
}

func TestIDSourceUnique(t *testing.T) {
	ids := NewIDSourceWithSalt("s")
	seen := make(map[string]bool)
	for range 1000 {
		id := ids.Next("node")
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if got := NewIDSourceWithSalt("s").Next("edge"); got != "edge-s-1" {
		t.Errorf("Next = %q, want edge-s-1", got)
	}
	if NewIDSource().Salt() == NewIDSource().Salt() {
		t.Error("random salts should differ")
	}
}

func TestCanonicalData(t *testing.T) {
	a := Node{ID: "1", Title: "T", Position: Position{X: 1}, Payload: Payload{Ref: "r"}}
	b := Node{ID: "2", Title: "T", Position: Position{X: 9}, Payload: Payload{Ref: "r"}}
	c := Node{ID: "3", Title: "U", Payload: Payload{Ref: "r"}}

	if string(a.CanonicalData()) != string(b.CanonicalData()) {
		t.Error("identity and placement must not affect canonical data")
	}
	if string(a.CanonicalData()) == string(c.CanonicalData()) {
		t.Error("different titles must produce different canonical data")
	}
}

func TestParseFreeformShape(t *testing.T) {
	tests := []struct {
		in   string
		want Shape
	}{
		{"circle", ShapeCircle},
		{"hexagon", ShapeHexagon},
		{"chart", ShapeRectangle},
		{"blob", ShapeRectangle},
		{"", ShapeRectangle},
	}
	for _, tt := range tests {
		if got := ParseFreeformShape(tt.in); got != tt.want {
			t.Errorf("ParseFreeformShape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
