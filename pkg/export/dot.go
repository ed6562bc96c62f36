package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

const pointsPerInch = 72.0

// ToDOT converts doc to Graphviz DOT. Every node is pinned at its canvas
// position, so neato reproduces the drawing instead of laying it out again.
// Graphviz's y axis points up, hence the negated y.
func ToDOT(doc Document) string {
	var buf bytes.Buffer
	buf.WriteString("digraph canvas {\n")
	buf.WriteString("  graph [splines=true, outputorder=edgesfirst, bgcolor=white];\n")
	buf.WriteString("  node [fixedsize=true, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")

	for _, s := range doc.Shapes {
		c := s.Center()
		attrs := []string{
			fmt.Sprintf("label=%q", s.Title),
			fmt.Sprintf("shape=%s", dotShape(s.Shape)),
			fmt.Sprintf("pos=\"%s,%s!\"", num(c.X/pointsPerInch), num(-c.Y/pointsPerInch)),
			fmt.Sprintf("width=%s", num(s.Width/pointsPerInch)),
			fmt.Sprintf("height=%s", num(s.Height/pointsPerInch)),
		}
		if s.Shape != scene.ShapeText {
			attrs = append(attrs,
				"style=filled",
				fmt.Sprintf("fillcolor=%q", orDefault(s.Fill, defaultFill)),
				fmt.Sprintf("color=%q", orDefault(s.Stroke, defaultStroke)))
		}
		if s.TextColor != "" {
			attrs = append(attrs, fmt.Sprintf("fontcolor=%q", s.TextColor))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, joinAttrs(attrs))
	}

	for _, c := range doc.Connectors {
		attrs := []string{fmt.Sprintf("color=%q", orDefault(c.Color, defaultEdgeColor))}
		if c.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", c.Label))
		}
		if c.Dash != "" {
			attrs = append(attrs, "style=dashed")
		}
		if c.StrokeWidth > 0 {
			attrs = append(attrs, fmt.Sprintf("penwidth=%s", num(c.StrokeWidth)))
		}
		switch c.Marker.Type {
		case scene.MarkerNone:
			attrs = append(attrs, "arrowhead=none")
		case scene.MarkerArrow:
			attrs = append(attrs, "arrowhead=vee")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.Source, c.Target, joinAttrs(attrs))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotShape(s scene.Shape) string {
	switch s {
	case scene.ShapeCircle:
		return "ellipse"
	case scene.ShapeDiamond:
		return "diamond"
	case scene.ShapeHexagon:
		return "hexagon"
	case scene.ShapeTriangle:
		return "triangle"
	case scene.ShapeText:
		return "plaintext"
	case scene.ShapeChart:
		return "box3d"
	default:
		return "box"
	}
}

func joinAttrs(attrs []string) string {
	var buf bytes.Buffer
	for i, a := range attrs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(a)
	}
	return buf.String()
}

// RenderPNG rasterizes doc with Graphviz's neato engine.
func RenderPNG(ctx context.Context, doc Document) ([]byte, error) {
	return renderGraphviz(ctx, doc, graphviz.PNG)
}

func renderGraphviz(ctx context.Context, doc Document, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(ToDOT(doc)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
