package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
)

var (
	// ErrInvalidID is returned by [Graph.AddNode] and [Graph.AddEdge] when
	// the ID is empty.
	ErrInvalidID = errors.New("id must not be empty")

	// ErrDuplicateID is returned by [Graph.AddNode] and [Graph.AddEdge] when
	// the ID is already present, and by [Graph.Validate] when two elements
	// share an ID.
	ErrDuplicateID = errors.New("duplicate id")
)

// Graph is the mutable aggregate of a canvas: nodes in insertion order,
// edges in insertion order, and the current selection.
//
// The zero value is not usable; use New. Graph is not safe for concurrent use.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	edgeIDs  map[string]struct{}
	retired  map[string]struct{}
	selected string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edgeIDs: make(map[string]struct{}),
		retired: make(map[string]struct{}),
	}
}

// AddNode appends a node. Returns ErrInvalidID for an empty ID and
// ErrDuplicateID if a node or edge with the same ID exists.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidID
	}
	if g.hasID(n.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	n = n.Clone()
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge appends an edge. It fails with a *errors.DanglingReferenceError if
// either endpoint is not in the graph, ErrInvalidID for an empty ID and
// ErrDuplicateID for a taken ID.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidID
	}
	if g.hasID(e.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	for _, id := range []string{e.Source, e.Target} {
		if _, ok := g.nodes[id]; !ok {
			return &cferrors.DanglingReferenceError{EdgeID: e.ID, NodeID: id}
		}
	}
	g.edges = append(g.edges, e)
	g.edgeIDs[e.ID] = struct{}{}
	return nil
}

// RemoveNode removes a node and every edge incident to it in one step.
// It returns the removed edges and whether the node existed. If the node
// was selected, the selection is cleared.
func (g *Graph) RemoveNode(id string) ([]Edge, bool) {
	if _, ok := g.nodes[id]; !ok {
		return nil, false
	}

	var removed []Edge
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		if e.Touches(id) {
			removed = append(removed, e)
			delete(g.edgeIDs, e.ID)
			g.retired[e.ID] = struct{}{}
			return true
		}
		return false
	})

	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(o string) bool { return o == id })
	g.retired[id] = struct{}{}
	if g.selected == id {
		g.selected = ""
	}
	return removed, true
}

// RemoveEdge removes an edge by ID and reports whether it existed.
func (g *Graph) RemoveEdge(id string) bool {
	if _, ok := g.edgeIDs[id]; !ok {
		return false
	}
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.ID == id })
	delete(g.edgeIDs, id)
	g.retired[id] = struct{}{}
	return true
}

// UpdateNode applies fn to the node with the given ID. The node's ID cannot
// be changed. Returns false if the node does not exist.
func (g *Graph) UpdateNode(id string, fn func(*Node)) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	fn(n)
	n.ID = id
	return true
}

// Clear removes all nodes and edges and clears the selection. Removed IDs
// are retired.
func (g *Graph) Clear() {
	for _, id := range g.order {
		g.retired[id] = struct{}{}
	}
	for id := range g.edgeIDs {
		g.retired[id] = struct{}{}
	}
	g.nodes = make(map[string]*Node)
	g.order = nil
	g.edges = nil
	g.edgeIDs = make(map[string]struct{})
	g.selected = ""
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether an edge with the given ID exists.
func (g *Graph) HasEdge(id string) bool {
	_, ok := g.edgeIDs[id]
	return ok
}

// FindLink returns the first edge that is the same link as e (see
// [Edge.SameLink]).
func (g *Graph) FindLink(e Edge) (Edge, bool) {
	for _, o := range g.edges {
		if o.SameLink(e) {
			return o, true
		}
	}
	return Edge{}, false
}

// Known reports whether id is used by a current node or edge, or was used by
// one that has since been removed.
func (g *Graph) Known(id string) bool {
	if g.hasID(id) {
		return true
	}
	_, ok := g.retired[id]
	return ok
}

func (g *Graph) hasID(id string) bool {
	if _, ok := g.nodes[id]; ok {
		return true
	}
	_, ok := g.edgeIDs[id]
	return ok
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].Clone())
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// IncidentEdges returns the edges touching the node with the given ID.
func (g *Graph) IncidentEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Selected returns the selected node ID, or "" when nothing is selected.
func (g *Graph) Selected() string { return g.selected }

// Select marks the node with the given ID as selected, replacing any
// previous selection. Selecting a missing node is a no-op that returns false.
func (g *Graph) Select(id string) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	g.selected = id
	return true
}

// ClearSelection deselects any selected node.
func (g *Graph) ClearSelection() { g.selected = "" }

// Clone returns a deep copy of the graph, including selection and retired IDs.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    make(map[string]*Node, len(g.nodes)),
		order:    slices.Clone(g.order),
		edges:    slices.Clone(g.edges),
		edgeIDs:  make(map[string]struct{}, len(g.edgeIDs)),
		retired:  make(map[string]struct{}, len(g.retired)),
		selected: g.selected,
	}
	for id, n := range g.nodes {
		cp := n.Clone()
		c.nodes[id] = &cp
	}
	for id := range g.edgeIDs {
		c.edgeIDs[id] = struct{}{}
	}
	for id := range g.retired {
		c.retired[id] = struct{}{}
	}
	return c
}

// Validate checks the graph's invariants: unique IDs across nodes and edges,
// no dangling edge endpoints, and a selection that references a present node.
func (g *Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.order)+len(g.edges))
	for _, id := range g.order {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	for _, e := range g.edges {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := g.nodes[id]; !ok {
				return &cferrors.DanglingReferenceError{EdgeID: e.ID, NodeID: id}
			}
		}
	}
	if g.selected != "" && !g.HasNode(g.selected) {
		return fmt.Errorf("selected node %q not in graph", g.selected)
	}
	return nil
}

// wireGraph is the JSON form of a Graph.
type wireGraph struct {
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Selected string `json:"selected,omitempty"`
}

// MarshalJSON encodes the graph's nodes, edges and selection.
func (g *Graph) MarshalJSON() ([]byte, error) {
	w := wireGraph{Nodes: g.Nodes(), Edges: g.Edges(), Selected: g.selected}
	if w.Edges == nil {
		w.Edges = []Edge{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a graph and validates it. Retired IDs are not
// encoded, so a decoded graph starts with none.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ng := New()
	for _, n := range w.Nodes {
		if err := ng.AddNode(n); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range w.Edges {
		if err := ng.AddEdge(e); err != nil {
			return fmt.Errorf("edge %q: %w", e.ID, err)
		}
	}
	if w.Selected != "" && !ng.Select(w.Selected) {
		return fmt.Errorf("selected node %q not in graph", w.Selected)
	}
	*g = *ng
	return nil
}
