package layout

import (
	"fmt"
	"math"
	"slices"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// diagramEdgeKind returns the edge kind and animation of a leveled diagram.
func diagramEdgeKind(k Kind) (scene.EdgeKind, bool) {
	switch k {
	case KindCycleDiagram:
		return scene.EdgeCurved, true
	case KindHierarchyDiagram:
		return scene.EdgeStraight, false
	default:
		return scene.EdgeSmoothStep, false
	}
}

// layoutDiagram lays out flow charts, cycle diagrams and hierarchy diagrams
// by longest-path leveling (see [AssignLevels]).
//
// Level l is drawn at y = StartY + l*VerticalSpacing. Within a level, nodes
// sit left to right in discovery order, HorizontalSpacing apart, centered on
// max(StartX, widest/2) where widest is the width of the most populated
// level. Decision nodes get a taller box and a small offset so their
// diamond reads centered.
//
// A cycle fails with a ShapeMismatchError wrapping errors.ErrCycle, except
// in cycle diagrams: there the links closing each loop are left out of the
// leveling but still drawn.
func layoutDiagram(d Description, cfg Config, ids *scene.IDSource) (Result, error) {
	g := d.Diagram

	nodeIDs := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		nodeIDs[i] = n.ID
	}
	links := make([]Link, len(g.Edges))
	for i, e := range g.Edges {
		links[i] = Link{Source: e.Source, Target: e.Target}
	}

	if back := BackEdges(nodeIDs, links); len(back) > 0 {
		if d.Type != KindCycleDiagram {
			e := g.Edges[back[0]]
			return Result{}, &cferrors.ShapeMismatchError{
				Kind:   string(d.Type),
				Field:  "edges",
				Reason: fmt.Sprintf("edge %s -> %s closes a cycle", e.Source, e.Target),
				Cause:  cferrors.ErrCycle,
			}
		}
		links = slices.Clone(links)
		for i := len(back) - 1; i >= 0; i-- {
			links = slices.Delete(links, back[i], back[i]+1)
		}
	}

	levels, err := AssignLevels(nodeIDs, links)
	if err != nil {
		return Result{}, &cferrors.ShapeMismatchError{Kind: string(d.Type), Field: "edges", Reason: err.Error(), Cause: err}
	}

	positions := placeLevels(levels, g, cfg)

	res := Result{
		Nodes: make([]scene.Node, 0, len(g.Nodes)),
		Edges: make([]scene.Edge, 0, len(g.Edges)),
	}
	for _, dn := range g.Nodes {
		kind := dn.Type
		if kind == "" {
			kind = scene.KindProcess
		}
		n := scene.Node{
			ID:          dn.ID,
			Kind:        kind,
			Title:       dn.Title,
			Description: dn.Description,
			Position:    positions[dn.ID],
			Size:        scene.Size{Width: flowNodeWidth, Height: flowNodeHeight},
			Style: scene.Style{
				Shape:       scene.ShapeRectangle,
				Fill:        flowFill(kind),
				Stroke:      flowFill(kind),
				StrokeWidth: edgeStrokeWidth,
				TextColor:   ContrastText(flowFill(kind)),
			},
			Payload: scene.Payload{
				Visualization: string(d.Type),
				Ref:           dn.ID,
				Level:         levels.Level[dn.ID],
			},
		}
		if kind == scene.KindDecision {
			n.Size.Height = decisionNodeHeight
			n.Style.Shape = scene.ShapeDiamond
		}
		res.Nodes = append(res.Nodes, n)
	}

	edgeKind, animated := diagramEdgeKind(d.Type)
	for _, de := range g.Edges {
		e := scene.NewEdge(ids, de.Source, de.Target, de.Label, edgeKind)
		if de.ID != "" {
			e.ID = de.ID
		}
		e.Animated = animated
		e.Marker = arrowMarker(ColorFlowEdge)
		e.Style = edgeStyle(ColorFlowEdge)
		res.Edges = append(res.Edges, e)
	}
	return res, nil
}

// placeLevels computes the top-left position of every node.
func placeLevels(levels Levels, g *Diagram, cfg Config) map[string]scene.Position {
	groups := levels.ByLevel()

	widest := 0
	for _, ids := range groups {
		widest = max(widest, len(ids))
	}
	totalWidth := float64(max(widest-1, 0)) * cfg.HorizontalSpacing
	baseX := math.Max(cfg.StartX, totalWidth/2)

	decision := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.Type == scene.KindDecision {
			decision[n.ID] = true
		}
	}

	positions := make(map[string]scene.Position, len(levels.Order))
	for level, ids := range groups {
		y := cfg.StartY + float64(level)*cfg.VerticalSpacing
		levelWidth := float64(len(ids)-1) * cfg.HorizontalSpacing
		startX := baseX - levelWidth/2
		for i, id := range ids {
			p := scene.Position{X: startX + float64(i)*cfg.HorizontalSpacing, Y: y}
			if decision[id] {
				p.X += cfg.HorizontalSpacing * decisionOffset
				p.Y += cfg.VerticalSpacing * decisionOffset
			}
			positions[id] = p
		}
	}
	return positions
}
