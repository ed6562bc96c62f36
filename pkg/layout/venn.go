package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

// vennCenters returns the center of each of n circles around (cx, cy):
// one circle on the center, two side by side, three at 120° apart starting
// straight up, and more in a centered grid with ceil(sqrt(n)) columns.
func vennCenters(n int, cfg Config) []scene.Position {
	cx, cy, s := cfg.VennCenterX, cfg.VennCenterY, cfg.VennSpacing
	switch n {
	case 0:
		return nil
	case 1:
		return []scene.Position{{X: cx, Y: cy}}
	case 2:
		return []scene.Position{{X: cx - s, Y: cy}, {X: cx + s, Y: cy}}
	case 3:
		out := make([]scene.Position, 3)
		for i := range out {
			angle := 2*math.Pi*float64(i)/3 - math.Pi/2
			out[i] = scene.Position{X: cx + s*math.Cos(angle), Y: cy + s*math.Sin(angle)}
		}
		return out
	}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cell := 1.5 * s
	out := make([]scene.Position, n)
	for i := range out {
		row, col := i/cols, i%cols
		out[i] = scene.Position{
			X: cx + (float64(col)-float64(cols-1)/2)*cell,
			Y: cy + (float64(row)-float64(rows-1)/2)*cell,
		}
	}
	return out
}

// layoutVenn places one circle node per set using a fixed template chosen by
// the circle count. Overlap is expressed by position and z-order only; no
// edges are produced. Intersection labels sit on the centroid of the circles
// they join, above every circle.
func layoutVenn(d Description, cfg Config, ids *scene.IDSource) (Result, error) {
	v := d.Venn
	r := cfg.VennRadius
	centers := vennCenters(len(v.Circles), cfg)

	res := Result{
		Nodes: make([]scene.Node, 0, len(v.Circles)+len(v.Intersections)),
		Edges: []scene.Edge{},
	}
	byID := make(map[string]scene.Position, len(v.Circles))
	for i, c := range v.Circles {
		fill := c.Color
		if fill == "" {
			fill = vennPalette[i%len(vennPalette)]
		}
		center := centers[i]
		byID[c.ID] = center

		res.Nodes = append(res.Nodes, scene.Node{
			ID:          c.ID,
			Kind:        scene.KindCircle,
			Title:       c.Title,
			Description: c.Description,
			Position:    scene.Position{X: center.X - r, Y: center.Y - r},
			Size:        scene.Size{Width: 2 * r, Height: 2 * r},
			Style: scene.Style{
				Shape:       scene.ShapeCircle,
				Fill:        fill,
				Stroke:      ColorMindFill,
				StrokeWidth: edgeStrokeWidth,
				TextColor:   ContrastText(fill),
				ZIndex:      i + 1,
			},
			Payload: scene.Payload{
				Visualization: string(KindVennDiagram),
				Ref:           c.ID,
				Items:         slices.Clone(c.Items),
				Radius:        r,
			},
		})
	}

	labelZ := len(v.Circles) + 1
	for _, in := range v.Intersections {
		var sum scene.Position
		for _, set := range in.Sets {
			p := byID[set]
			sum.X += p.X
			sum.Y += p.Y
		}
		k := float64(len(in.Sets))
		centroid := scene.Position{X: sum.X / k, Y: sum.Y / k}

		n := scene.NewNode(ids, scene.KindGeneric, in.Title, "", scene.Position{
			X: centroid.X - labelWidth/2,
			Y: centroid.Y - labelHeight/2,
		})
		if in.ID != "" {
			n.ID = in.ID
		}
		n.Size = scene.Size{Width: labelWidth, Height: labelHeight}
		n.Style = scene.Style{
			Shape:     scene.ShapeText,
			Fill:      ColorMindFill,
			TextColor: ColorTextDark,
			ZIndex:    labelZ,
		}
		n.Payload = scene.Payload{
			Visualization: string(KindVennDiagram),
			Ref:           in.ID,
			Sets:          slices.Clone(in.Sets),
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}
