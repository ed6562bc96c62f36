package layout

import (
	"strconv"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

// layoutMindMap lays out a tree by pre-order traversal. The root sits at
// the origin; child i of n at depth d is placed at
// x = parentX + (i - (n-1)/2) * HorizontalSpacing, y = d * VerticalSpacing.
// Each parent/child pair gets one directed, arrow-terminated edge.
func layoutMindMap(d Description, cfg Config, ids *scene.IDSource) (Result, error) {
	res := Result{
		Nodes: make([]scene.Node, 0, d.MindMap.Count()),
		Edges: make([]scene.Edge, 0, d.MindMap.Count()-1),
	}

	var walk func(m *MindMapNode, parent *scene.Node, path string, depth int, pos scene.Position)
	walk = func(m *MindMapNode, parent *scene.Node, path string, depth int, pos scene.Position) {
		kind := scene.KindBranch
		switch {
		case parent == nil:
			kind = scene.KindRoot
		case len(m.Children) == 0:
			kind = scene.KindLeaf
		}

		n := scene.NewNode(ids, kind, m.Title, m.Description, pos)
		if m.ID != "" {
			n.ID = m.ID
		}
		n.Size = scene.Size{Width: mindNodeWidth, Height: mindNodeHeight}
		n.Style = scene.Style{Shape: scene.ShapeRectangle, Fill: ColorMindFill, Stroke: ColorMindLine, StrokeWidth: 1, TextColor: ColorTextDark}
		if kind == scene.KindRoot {
			n.Style.Stroke = ColorMindRoot
			n.Style.StrokeWidth = 2
		}
		n.Payload = scene.Payload{
			Visualization: string(KindMindMap),
			Ref:           m.ID,
			Path:          path,
			Depth:         depth,
		}
		res.Nodes = append(res.Nodes, n)

		if parent != nil {
			e := scene.NewEdge(ids, parent.ID, n.ID, "", scene.EdgeSmoothStep)
			e.Marker = arrowMarker(ColorMindEdge)
			e.Style = edgeStyle(ColorMindEdge)
			res.Edges = append(res.Edges, e)
		}

		count := float64(len(m.Children))
		for i := range m.Children {
			child := scene.Position{
				X: pos.X + (float64(i)-(count-1)/2)*cfg.HorizontalSpacing,
				Y: float64(depth+1) * cfg.VerticalSpacing,
			}
			walk(&m.Children[i], &n, path+"."+strconv.Itoa(i), depth+1, child)
		}
	}

	walk(d.MindMap, nil, "0", 0, scene.Position{})
	return res, nil
}
