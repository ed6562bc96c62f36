package canvas

import (
	"github.com/matzehuels/canvasflow/pkg/observability"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Styling of hand-placed nodes and edges.
const (
	freeformWidth  = 150.0
	freeformHeight = 80.0
	freeformFill   = "#ffffff"
	freeformStroke = "#1f2937"
	connectColor   = "#b1b1b7"
	markerSize     = 20.0
)

// Mutation lists the IDs an interactive edit added or removed. It reflects
// the scene immediately after the edit. A soft no-op returns an empty
// Mutation.
type Mutation struct {
	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`
	AddedEdges   []string `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
	UpdatedNodes []string `json:"updated_nodes,omitempty"`
}

// Empty reports whether the edit changed nothing.
func (m Mutation) Empty() bool {
	return len(m.AddedNodes) == 0 && len(m.RemovedNodes) == 0 &&
		len(m.AddedEdges) == 0 && len(m.RemovedEdges) == 0 && len(m.UpdatedNodes) == 0
}

func (c *Canvas) record(op string, m Mutation) {
	observability.Scene().OnMutation(op, !m.Empty())
	if !m.Empty() {
		c.logger.Debug("scene edited", "op", op,
			"nodes", c.graph.NodeCount(), "edges", c.graph.EdgeCount())
	}
}

// AddNode places a freeform node with the given shape at pos. Unknown shapes
// fall back to a rectangle. It always succeeds.
func (c *Canvas) AddNode(shape string, pos scene.Position) Mutation {
	s := scene.ParseFreeformShape(shape)
	n := scene.NewNode(c.ids, scene.KindGeneric, "", "", pos)
	n.ID = c.freshIDFor(n.ID, "node")
	n.Size = scene.Size{Width: freeformWidth, Height: freeformHeight}
	n.Style = scene.Style{Shape: s, Fill: freeformFill, Stroke: freeformStroke, StrokeWidth: 1, TextColor: freeformStroke}
	if s == scene.ShapeText {
		n.Style.Fill, n.Style.Stroke = "", ""
	}
	n.Payload = scene.Payload{Shape: s}

	var m Mutation
	if err := c.graph.AddNode(n); err == nil {
		m.AddedNodes = []string{n.ID}
	}
	c.record("add_node", m)
	return m
}

// DeleteSelectedNode removes the selected node together with every edge
// touching it, and clears the selection. Without a selection it does
// nothing.
func (c *Canvas) DeleteSelectedNode() Mutation {
	var m Mutation
	if id := c.graph.Selected(); id != "" {
		m = c.deleteNode(id)
	}
	c.record("delete_node", m)
	return m
}

// DeleteNode removes the node with the given ID and its edges. A missing ID
// is a no-op.
func (c *Canvas) DeleteNode(id string) Mutation {
	m := c.deleteNode(id)
	c.record("delete_node", m)
	return m
}

func (c *Canvas) deleteNode(id string) Mutation {
	removed, ok := c.graph.RemoveNode(id)
	if !ok {
		return Mutation{}
	}
	m := Mutation{RemovedNodes: []string{id}}
	for _, e := range removed {
		m.RemovedEdges = append(m.RemovedEdges, e.ID)
	}
	return m
}

// Connect adds a smoothstep arrow edge from source to target. If either node
// is missing it does nothing.
func (c *Canvas) Connect(source, target string) Mutation {
	var m Mutation
	if c.graph.HasNode(source) && c.graph.HasNode(target) {
		e := scene.NewEdge(c.ids, source, target, "", scene.EdgeSmoothStep)
		e.ID = c.freshIDFor(e.ID, "edge")
		e.Marker = scene.Marker{Type: scene.MarkerArrowClosed, Width: markerSize, Height: markerSize, Color: connectColor}
		e.Style = scene.EdgeStyle{Stroke: connectColor, StrokeWidth: 2}
		if err := c.graph.AddEdge(e); err == nil {
			m.AddedEdges = []string{e.ID}
		}
	}
	c.record("connect", m)
	return m
}

// Disconnect removes the edge with the given ID. A missing ID is a no-op.
func (c *Canvas) Disconnect(edgeID string) Mutation {
	var m Mutation
	if c.graph.RemoveEdge(edgeID) {
		m.RemovedEdges = []string{edgeID}
	}
	c.record("disconnect", m)
	return m
}

// SelectNode selects the node with the given ID, replacing any previous
// selection. Selecting a missing node does nothing and reports false.
func (c *Canvas) SelectNode(id string) bool {
	ok := c.graph.Select(id)
	observability.Scene().OnMutation("select", ok)
	return ok
}

// ClearSelection deselects any selected node.
func (c *Canvas) ClearSelection() {
	c.graph.ClearSelection()
	observability.Scene().OnMutation("clear_selection", true)
}

// SetTitle replaces a node's title. A missing ID is a no-op.
func (c *Canvas) SetTitle(id, title string) Mutation {
	var m Mutation
	if c.graph.UpdateNode(id, func(n *scene.Node) { n.Title = title }) {
		m.UpdatedNodes = []string{id}
	}
	c.record("set_title", m)
	return m
}

// MoveNode moves a node's top-left corner to pos. A missing ID is a no-op.
func (c *Canvas) MoveNode(id string, pos scene.Position) Mutation {
	var m Mutation
	if c.graph.UpdateNode(id, func(n *scene.Node) { n.Position = pos }) {
		m.UpdatedNodes = []string{id}
	}
	c.record("move_node", m)
	return m
}

// freshIDFor returns id unless the scene already knows it.
func (c *Canvas) freshIDFor(id, prefix string) string {
	if c.graph.Known(id) {
		return c.freshID(c.graph, prefix)
	}
	return id
}
