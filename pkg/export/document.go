// Package export flattens a scene into a self-contained [Document] and encodes
// it as JSON, SVG, HTML, Graphviz DOT or PNG.
//
// A Document carries everything a renderer needs: absolute coordinates,
// resolved colors and shape names. It never refers back to the live scene.
// [Snapshot] is deterministic: the same scene always yields the same
// Document, and the same Document always encodes to the same bytes.
package export

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Version is the Document format version.
const Version = 1

// dashPattern is the stroke-dasharray of dashed connectors.
const dashPattern = "5,5"

// Point is an absolute canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is a node resolved for drawing.
type Shape struct {
	ID          string           `json:"id"`
	Kind        scene.NodeKind   `json:"kind"`
	Shape       scene.Shape      `json:"shape"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	X           float64          `json:"x"`
	Y           float64          `json:"y"`
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	Fill        string           `json:"fill,omitempty"`
	Stroke      string           `json:"stroke,omitempty"`
	StrokeWidth float64          `json:"stroke_width,omitempty"`
	TextColor   string           `json:"text_color,omitempty"`
	ZIndex      int              `json:"z_index,omitempty"`
	Items       []string         `json:"items,omitempty"`
	Chart       *scene.ChartData `json:"chart,omitempty"`
}

// Center returns the center of the shape's bounding box.
func (s Shape) Center() Point {
	return Point{X: s.X + s.Width/2, Y: s.Y + s.Height/2}
}

// Connector is an edge resolved for drawing. From and To are the centers of
// the source and target shapes.
type Connector struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Target      string         `json:"target"`
	From        Point          `json:"from"`
	To          Point          `json:"to"`
	Kind        scene.EdgeKind `json:"kind"`
	Label       string         `json:"label,omitempty"`
	Color       string         `json:"color,omitempty"`
	StrokeWidth float64        `json:"stroke_width,omitempty"`
	Dash        string         `json:"dash,omitempty"`
	Animated    bool           `json:"animated,omitempty"`
	Marker      scene.Marker   `json:"marker,omitzero"`
}

// Bounds is the bounding box of all shapes.
type Bounds struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is a portable snapshot of a scene.
type Document struct {
	Version    int         `json:"version"`
	Shapes     []Shape     `json:"shapes"`
	Connectors []Connector `json:"connectors"`
	Bounds     Bounds      `json:"bounds"`
}

// Shape returns the shape with the given ID.
func (d Document) Shape(id string) (Shape, bool) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

// Snapshot flattens g. Shapes are ordered by z-index, then by insertion
// order; connectors keep insertion order. Edges whose endpoints are missing
// are left out.
func Snapshot(g *scene.Graph) Document {
	nodes := g.Nodes()
	doc := Document{
		Version:    Version,
		Shapes:     make([]Shape, 0, len(nodes)),
		Connectors: []Connector{},
	}

	centers := make(map[string]Point, len(nodes))
	for _, n := range nodes {
		s := Shape{
			ID:          n.ID,
			Kind:        n.Kind,
			Shape:       shapeOf(n),
			Title:       n.Title,
			Description: n.Description,
			X:           n.Position.X,
			Y:           n.Position.Y,
			Width:       n.Size.Width,
			Height:      n.Size.Height,
			Fill:        n.Style.Fill,
			Stroke:      n.Style.Stroke,
			StrokeWidth: n.Style.StrokeWidth,
			TextColor:   n.Style.TextColor,
			ZIndex:      n.Style.ZIndex,
			Items:       n.Payload.Items,
			Chart:       n.Payload.Chart,
		}
		doc.Shapes = append(doc.Shapes, s)
		centers[n.ID] = s.Center()
	}
	slices.SortStableFunc(doc.Shapes, func(a, b Shape) int { return cmp.Compare(a.ZIndex, b.ZIndex) })

	for _, e := range g.Edges() {
		from, okFrom := centers[e.Source]
		to, okTo := centers[e.Target]
		if !okFrom || !okTo {
			continue
		}
		c := Connector{
			ID:          e.ID,
			Source:      e.Source,
			Target:      e.Target,
			From:        from,
			To:          to,
			Kind:        e.Kind,
			Label:       e.Label,
			Color:       e.Style.Stroke,
			StrokeWidth: e.Style.StrokeWidth,
			Animated:    e.Animated,
			Marker:      e.Marker,
		}
		if e.Kind == scene.EdgeDashed {
			c.Dash = dashPattern
		}
		doc.Connectors = append(doc.Connectors, c)
	}

	doc.Bounds = boundsOf(doc.Shapes)
	return doc
}

func shapeOf(n scene.Node) scene.Shape {
	if n.Style.Shape != "" {
		return n.Style.Shape
	}
	if n.Payload.Shape != "" {
		return n.Payload.Shape
	}
	return scene.ShapeRectangle
}

func boundsOf(shapes []Shape) Bounds {
	if len(shapes) == 0 {
		return Bounds{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range shapes {
		minX = math.Min(minX, s.X)
		minY = math.Min(minY, s.Y)
		maxX = math.Max(maxX, s.X+s.Width)
		maxY = math.Max(maxY, s.Y+s.Height)
	}
	return Bounds{MinX: minX, MinY: minY, Width: maxX - minX, Height: maxY - minY}
}
