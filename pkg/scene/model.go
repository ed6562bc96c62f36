package scene

import (
	"encoding/json"
	"slices"
)

// NodeKind classifies a node for styling and rendering.
type NodeKind string

const (
	KindStart    NodeKind = "start"
	KindProcess  NodeKind = "process"
	KindDecision NodeKind = "decision"
	KindEnd      NodeKind = "end"
	KindRoot     NodeKind = "root"
	KindBranch   NodeKind = "branch"
	KindLeaf     NodeKind = "leaf"
	KindCircle   NodeKind = "circle"
	KindGeneric  NodeKind = "generic"
)

// NodeKinds lists every valid node kind.
var NodeKinds = []NodeKind{
	KindStart, KindProcess, KindDecision, KindEnd,
	KindRoot, KindBranch, KindLeaf, KindCircle, KindGeneric,
}

// Valid reports whether k is a known node kind.
func (k NodeKind) Valid() bool { return slices.Contains(NodeKinds, k) }

// EdgeKind selects how an edge path is drawn.
type EdgeKind string

const (
	EdgeStraight   EdgeKind = "straight"
	EdgeSmoothStep EdgeKind = "smoothstep"
	EdgeCurved     EdgeKind = "curved"
	EdgeDashed     EdgeKind = "dashed"
)

// EdgeKinds lists every valid edge kind.
var EdgeKinds = []EdgeKind{EdgeStraight, EdgeSmoothStep, EdgeCurved, EdgeDashed}

// Valid reports whether k is a known edge kind.
func (k EdgeKind) Valid() bool { return slices.Contains(EdgeKinds, k) }

// Shape is the outline a renderer draws for a node.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeCircle    Shape = "circle"
	ShapeDiamond   Shape = "diamond"
	ShapeHexagon   Shape = "hexagon"
	ShapeTriangle  Shape = "triangle"
	ShapeText      Shape = "text"
	ShapeImage     Shape = "image"
	ShapeChart     Shape = "chart"
)

// FreeformShapes are the shapes a user can place by hand.
var FreeformShapes = []Shape{
	ShapeRectangle, ShapeCircle, ShapeDiamond, ShapeHexagon,
	ShapeTriangle, ShapeText, ShapeImage,
}

// ParseFreeformShape returns s as a Shape, falling back to ShapeRectangle
// for anything that is not a freeform shape.
func ParseFreeformShape(s string) Shape {
	if slices.Contains(FreeformShapes, Shape(s)) {
		return Shape(s)
	}
	return ShapeRectangle
}

// Position is a point in canvas coordinates. Y grows downward.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's bounding box.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style holds the resolved visual attributes of a node.
// Empty colors mean "renderer default".
type Style struct {
	Shape       Shape   `json:"shape"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	TextColor   string  `json:"text_color,omitempty"`
	ZIndex      int     `json:"z_index,omitempty"`
}

// ChartData is the full data set of a bar chart. Rendering of the bars is
// delegated; layout only places the chart.
type ChartData struct {
	Categories []string  `json:"categories"`
	Values     []float64 `json:"values"`
	Colors     []string  `json:"colors"`
}

// Payload is the visualization-specific data a node carries to the renderer.
// Only the fields relevant to the producing visualization are set.
type Payload struct {
	Visualization string     `json:"visualization,omitempty"` // producing visualization kind
	Ref           string     `json:"ref,omitempty"`           // caller-supplied id
	Path          string     `json:"path,omitempty"`          // mind map tree path, e.g. "0.2.1"
	Depth         int        `json:"depth,omitempty"`
	Level         int        `json:"level,omitempty"`
	Chart         *ChartData `json:"chart,omitempty"`
	Items         []string   `json:"items,omitempty"`
	Sets          []string   `json:"sets,omitempty"`
	Radius        float64    `json:"radius,omitempty"`
	Shape         Shape      `json:"shape,omitempty"` // freeform nodes
}

func (p Payload) clone() Payload {
	if p.Chart != nil {
		c := *p.Chart
		c.Categories = slices.Clone(c.Categories)
		c.Values = slices.Clone(c.Values)
		c.Colors = slices.Clone(c.Colors)
		p.Chart = &c
	}
	p.Items = slices.Clone(p.Items)
	p.Sets = slices.Clone(p.Sets)
	return p
}

// Node is a positioned, styled vertex of the scene.
//
// Position is the top-left corner of the node's bounding box. Nodes are
// values; callers must not change ID after creation.
type Node struct {
	ID          string   `json:"id"`
	Kind        NodeKind `json:"kind"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Position    Position `json:"position"`
	Size        Size     `json:"size"`
	Style       Style    `json:"style"`
	Payload     Payload  `json:"payload"`
}

// Center returns the center of the node's bounding box.
func (n Node) Center() Position {
	return Position{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.Payload = n.Payload.clone()
	return n
}

// data is the part of a node that identifies its content, independent of
// identity and placement.
type data struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Payload     Payload `json:"payload"`
}

// CanonicalData returns the canonical JSON encoding of the node's content:
// title, description and payload. Two nodes with byte-identical canonical
// data carry the same content regardless of ID and position.
func (n Node) CanonicalData() []byte {
	// Marshal of plain structs cannot fail.
	b, _ := json.Marshal(data{Title: n.Title, Description: n.Description, Payload: n.Payload})
	return b
}

// MarkerType is the arrowhead drawn at an edge end.
type MarkerType string

const (
	MarkerNone        MarkerType = ""
	MarkerArrowClosed MarkerType = "arrowclosed"
	MarkerArrow       MarkerType = "arrow"
)

// Marker describes an edge's end marker.
type Marker struct {
	Type   MarkerType `json:"type,omitempty"`
	Width  float64    `json:"width,omitempty"`
	Height float64    `json:"height,omitempty"`
	Color  string     `json:"color,omitempty"`
}

// EdgeStyle holds the resolved visual attributes of an edge.
type EdgeStyle struct {
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
}

// Edge is a connection between two nodes.
type Edge struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Label    string    `json:"label,omitempty"`
	Kind     EdgeKind  `json:"kind"`
	Animated bool      `json:"animated,omitempty"`
	Marker   Marker    `json:"marker,omitzero"`
	Style    EdgeStyle `json:"style,omitzero"`
}

// SameLink reports whether e and o connect the same endpoints with the same
// label and kind. IDs and styling are ignored.
func (e Edge) SameLink(o Edge) bool {
	return e.Source == o.Source && e.Target == o.Target && e.Label == o.Label && e.Kind == o.Kind
}

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}
