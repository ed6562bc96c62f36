package layout

import (
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// layoutArrow keeps the caller's node positions and only styles the edges:
// a "dashed" edge is drawn dashed and animated, an untyped edge straight,
// and any other edge kind as given. Every edge ends in a closed arrow.
func layoutArrow(d Description, _ Config, ids *scene.IDSource) (Result, error) {
	a := d.Arrow
	res := Result{
		Nodes: make([]scene.Node, 0, len(a.Nodes)),
		Edges: make([]scene.Edge, 0, len(a.Edges)),
	}

	for _, an := range a.Nodes {
		kind := an.Type
		if kind == "" {
			kind = scene.KindGeneric
		}
		fill := ColorMindFill
		if kind != scene.KindGeneric {
			fill = flowFill(kind)
		}
		res.Nodes = append(res.Nodes, scene.Node{
			ID:          an.ID,
			Kind:        kind,
			Title:       an.Title,
			Description: an.Description,
			Position:    *an.Position,
			Size:        scene.Size{Width: arrowNodeWidth, Height: arrowNodeHeight},
			Style: scene.Style{
				Shape:       scene.ShapeRectangle,
				Fill:        fill,
				Stroke:      ColorFlowEdge,
				StrokeWidth: 1,
				TextColor:   ContrastText(fill),
			},
			Payload: scene.Payload{
				Visualization: string(KindArrowDiagram),
				Ref:           an.ID,
			},
		})
	}

	for _, ae := range a.Edges {
		kind := scene.EdgeKind(ae.Type)
		if kind == "" {
			kind = scene.EdgeStraight
		}
		e := scene.NewEdge(ids, ae.Source, ae.Target, ae.Label, kind)
		if ae.ID != "" {
			e.ID = ae.ID
		}
		e.Animated = kind == scene.EdgeDashed
		e.Marker = arrowMarker(ColorFlowEdge)
		e.Style = edgeStyle(ColorFlowEdge)
		res.Edges = append(res.Edges, e)
	}
	return res, nil
}
