package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Drawing defaults for attributes a shape or connector leaves empty.
const (
	defaultFill      = "#ffffff"
	defaultStroke    = "#1f2937"
	defaultText      = "#111827"
	defaultEdgeColor = "#b1b1b7"
	defaultMarker    = 12.0
	svgPadding       = 20.0
	fontSize         = 14.0
)

type svgConfig struct {
	padding    float64
	background string
	style      string
}

// SVGOption configures [RenderSVG].
type SVGOption func(*svgConfig)

// WithPadding sets the margin around the drawing.
func WithPadding(p float64) SVGOption { return func(c *svgConfig) { c.padding = p } }

// WithBackground fills the canvas with a solid color.
func WithBackground(color string) SVGOption { return func(c *svgConfig) { c.background = color } }

// WithStyle embeds a CSS block in the document.
func WithStyle(css string) SVGOption { return func(c *svgConfig) { c.style = css } }

// RenderSVG draws doc as a standalone SVG document. Connectors are drawn
// first, clipped to the border of their endpoint shapes; shapes follow in
// document order.
func RenderSVG(doc Document, opts ...SVGOption) []byte {
	cfg := svgConfig{padding: svgPadding}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := doc.Bounds
	ox, oy := b.MinX-cfg.padding, b.MinY-cfg.padding
	w, h := b.Width+2*cfg.padding, b.Height+2*cfg.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s">`,
		num(ox), num(oy), num(w), num(h), num(w), num(h))
	buf.WriteByte('\n')
	if cfg.style != "" {
		fmt.Fprintf(&buf, "<style>%s</style>\n", escape(cfg.style))
	}
	if cfg.background != "" {
		fmt.Fprintf(&buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(ox), num(oy), num(w), num(h), escape(cfg.background))
	}

	writeMarkers(&buf, doc.Connectors)
	for _, c := range doc.Connectors {
		writeConnector(&buf, doc, c)
	}
	for _, s := range doc.Shapes {
		writeShape(&buf, s)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeMarkers(buf *bytes.Buffer, conns []Connector) {
	seen := make(map[string]bool)
	var defs []string
	for _, c := range conns {
		if c.Marker.Type == scene.MarkerNone {
			continue
		}
		id := markerID(c.Marker)
		if seen[id] {
			continue
		}
		seen[id] = true
		w, h := c.Marker.Width, c.Marker.Height
		if w <= 0 {
			w = defaultMarker
		}
		if h <= 0 {
			h = defaultMarker
		}
		color := orDefault(c.Marker.Color, orDefault(c.Color, defaultEdgeColor))
		shape := fmt.Sprintf(`<path d="M0,0 L10,5 L0,10 z" fill="%s"/>`, escape(color))
		if c.Marker.Type == scene.MarkerArrow {
			shape = fmt.Sprintf(`<path d="M0,0 L10,5 L0,10" fill="none" stroke="%s" stroke-width="1.5"/>`, escape(color))
		}
		defs = append(defs, fmt.Sprintf(
			`<marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="%s" markerHeight="%s" markerUnits="userSpaceOnUse" orient="auto">%s</marker>`,
			id, num(w), num(h), shape))
	}
	if len(defs) == 0 {
		return
	}
	buf.WriteString("<defs>\n")
	for _, d := range defs {
		buf.WriteString(d)
		buf.WriteByte('\n')
	}
	buf.WriteString("</defs>\n")
}

func markerID(m scene.Marker) string {
	var sb strings.Builder
	sb.WriteString("marker-")
	sb.WriteString(string(m.Type))
	for _, r := range m.Color {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			sb.WriteRune(r)
		}
	}
	fmt.Fprintf(&sb, "-%s-%s", num(m.Width), num(m.Height))
	return sb.String()
}

func writeConnector(buf *bytes.Buffer, doc Document, c Connector) {
	from, to := c.From, c.To
	src, okSrc := doc.Shape(c.Source)
	dst, okDst := doc.Shape(c.Target)
	self := c.Source == c.Target

	var d string
	switch {
	case self && okSrc:
		// Loop over the top-right corner of the shape.
		x, y := src.X+src.Width, src.Y
		r := math.Max(20, math.Min(src.Width, src.Height)/3)
		d = fmt.Sprintf("M%s,%s C%s,%s %s,%s %s,%s",
			num(x-r), num(y), num(x-r), num(y-2*r), num(x+r), num(y+r), num(x), num(y+r))
	default:
		if okSrc {
			from = clip(src, to)
		}
		if okDst {
			to = clip(dst, from)
		}
		d = connectorPath(c.Kind, from, to)
	}

	color := orDefault(c.Color, defaultEdgeColor)
	width := c.StrokeWidth
	if width <= 0 {
		width = 1
	}
	fmt.Fprintf(buf, `<path id="%s" d="%s" fill="none" stroke="%s" stroke-width="%s"`,
		escape(c.ID), d, escape(color), num(width))
	if c.Dash != "" {
		fmt.Fprintf(buf, ` stroke-dasharray="%s"`, escape(c.Dash))
	}
	if c.Marker.Type != scene.MarkerNone {
		fmt.Fprintf(buf, ` marker-end="url(#%s)"`, markerID(c.Marker))
	}
	buf.WriteString("/>\n")

	if c.Label != "" {
		mx, my := (from.X+to.X)/2, (from.Y+to.Y)/2
		fmt.Fprintf(buf, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="12" fill="%s">%s</text>`+"\n",
			num(mx), num(my-8), defaultText, escape(c.Label))
	}
}

// connectorPath returns the SVG path data for an edge of the given kind.
func connectorPath(kind scene.EdgeKind, from, to Point) string {
	switch kind {
	case scene.EdgeSmoothStep:
		midY := (from.Y + to.Y) / 2
		return fmt.Sprintf("M%s,%s L%s,%s L%s,%s L%s,%s",
			num(from.X), num(from.Y), num(from.X), num(midY), num(to.X), num(midY), num(to.X), num(to.Y))
	case scene.EdgeCurved:
		midY := (from.Y + to.Y) / 2
		return fmt.Sprintf("M%s,%s C%s,%s %s,%s %s,%s",
			num(from.X), num(from.Y), num(from.X), num(midY), num(to.X), num(midY), num(to.X), num(to.Y))
	default:
		return fmt.Sprintf("M%s,%s L%s,%s", num(from.X), num(from.Y), num(to.X), num(to.Y))
	}
}

// clip returns the point where the segment from s's center toward p leaves
// s's bounding box.
func clip(s Shape, p Point) Point {
	c := s.Center()
	dx, dy := p.X-c.X, p.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}
	if s.Shape == scene.ShapeCircle {
		rx, ry := s.Width/2, s.Height/2
		if rx <= 0 || ry <= 0 {
			return c
		}
		t := 1 / math.Sqrt(dx*dx/(rx*rx)+dy*dy/(ry*ry))
		return Point{X: c.X + dx*t, Y: c.Y + dy*t}
	}
	t := math.Inf(1)
	if dx != 0 {
		t = math.Min(t, s.Width/2/math.Abs(dx))
	}
	if dy != 0 {
		t = math.Min(t, s.Height/2/math.Abs(dy))
	}
	t = math.Min(t, 1)
	return Point{X: c.X + dx*t, Y: c.Y + dy*t}
}

func writeShape(buf *bytes.Buffer, s Shape) {
	fill := orDefault(s.Fill, defaultFill)
	stroke := orDefault(s.Stroke, defaultStroke)
	sw := s.StrokeWidth
	if sw <= 0 {
		sw = 1
	}
	paint := fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%s"`, escape(fill), escape(stroke), num(sw))
	if s.Kind == scene.KindCircle {
		paint += ` fill-opacity="0.5"`
	}

	fmt.Fprintf(buf, `<g id="%s" class="shape shape-%s">`+"\n", escape(s.ID), s.Shape)
	x, y, w, h := s.X, s.Y, s.Width, s.Height
	switch s.Shape {
	case scene.ShapeText:
		// Text only.
	case scene.ShapeCircle:
		fmt.Fprintf(buf, `<ellipse cx="%s" cy="%s" rx="%s" ry="%s" %s/>`+"\n",
			num(x+w/2), num(y+h/2), num(w/2), num(h/2), paint)
	case scene.ShapeDiamond:
		writePolygon(buf, paint, Point{x + w/2, y}, Point{x + w, y + h/2}, Point{x + w/2, y + h}, Point{x, y + h/2})
	case scene.ShapeHexagon:
		q := w / 4
		writePolygon(buf, paint, Point{x + q, y}, Point{x + w - q, y}, Point{x + w, y + h/2},
			Point{x + w - q, y + h}, Point{x + q, y + h}, Point{x, y + h/2})
	case scene.ShapeTriangle:
		writePolygon(buf, paint, Point{x + w/2, y}, Point{x + w, y + h}, Point{x, y + h})
	case scene.ShapeChart:
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="6" %s/>`+"\n", num(x), num(y), num(w), num(h), paint)
		writeBars(buf, s)
	default:
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="6" %s/>`+"\n", num(x), num(y), num(w), num(h), paint)
	}
	writeLabel(buf, s)
	buf.WriteString("</g>\n")
}

func writePolygon(buf *bytes.Buffer, paint string, pts ...Point) {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	fmt.Fprintf(buf, `<polygon points="%s" %s/>`+"\n", strings.Join(parts, " "), paint)
}

// writeBars draws a chart's values as vertical bars scaled to its box.
func writeBars(buf *bytes.Buffer, s Shape) {
	if s.Chart == nil || len(s.Chart.Values) == 0 {
		return
	}
	const inset = 30.0
	maxV := 0.0
	for _, v := range s.Chart.Values {
		maxV = math.Max(maxV, math.Abs(v))
	}
	if maxV == 0 {
		maxV = 1
	}
	n := float64(len(s.Chart.Values))
	slot := (s.Width - 2*inset) / n
	base := s.Y + s.Height - inset
	avail := s.Height - 2*inset
	for i, v := range s.Chart.Values {
		bh := math.Abs(v) / maxV * avail
		bx := s.X + inset + float64(i)*slot + slot*0.1
		color := defaultStroke
		if i < len(s.Chart.Colors) && s.Chart.Colors[i] != "" {
			color = s.Chart.Colors[i]
		}
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(bx), num(base-bh), num(slot*0.8), num(bh), escape(color))
		if i < len(s.Chart.Categories) {
			fmt.Fprintf(buf, `<text x="%s" y="%s" text-anchor="middle" font-size="11" fill="%s">%s</text>`+"\n",
				num(bx+slot*0.4), num(base+14), defaultText, escape(s.Chart.Categories[i]))
		}
	}
}

func writeLabel(buf *bytes.Buffer, s Shape) {
	if s.Title == "" && len(s.Items) == 0 {
		return
	}
	color := orDefault(s.TextColor, defaultText)
	cx := s.X + s.Width/2
	y := s.Y + s.Height/2
	if s.Shape == scene.ShapeChart {
		y = s.Y + fontSize + 4
	}
	lines := len(s.Items)
	if s.Title != "" {
		y -= float64(lines) * fontSize / 2
		fmt.Fprintf(buf, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="%s" font-weight="bold" fill="%s">%s</text>`+"\n",
			num(cx), num(y), num(fontSize), escape(color), escape(s.Title))
	}
	for i, item := range s.Items {
		fmt.Fprintf(buf, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="%s" fill="%s">%s</text>`+"\n",
			num(cx), num(y+float64(i+1)*fontSize), num(fontSize-2), escape(color), escape(item))
	}
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
