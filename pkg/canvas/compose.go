package canvas

import (
	"errors"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/observability"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Policy says how a new layout is merged into the scene.
type Policy string

const (
	// PolicyReplace discards the scene's contents before inserting.
	PolicyReplace Policy = "replace"
	// PolicyAppend inserts alongside whatever the scene already holds.
	PolicyAppend Policy = "append"
)

// PolicyFor returns the merge policy of a visualization kind. Bar charts and
// Venn diagrams replace the scene; every other kind appends to it.
func PolicyFor(kind layout.Kind) Policy {
	switch kind {
	case layout.KindBarChart, layout.KindVennDiagram:
		return PolicyReplace
	default:
		return PolicyAppend
	}
}

// DroppedEdge is a layout edge that was not inserted because an endpoint is
// missing from the target node set.
type DroppedEdge struct {
	Edge   scene.Edge `json:"edge"`
	Reason string     `json:"reason"`
}

// ApplyReport describes what a merge did. IDs are the ones used in the scene,
// which may differ from the layout's when they collided.
type ApplyReport struct {
	Kind         layout.Kind   `json:"kind"`
	Policy       Policy        `json:"policy"`
	AddedNodes   []string      `json:"added_nodes"`
	AddedEdges   []string      `json:"added_edges"`
	SkippedNodes []string      `json:"skipped_nodes,omitempty"`
	SkippedEdges []string      `json:"skipped_edges,omitempty"`
	Dropped      []DroppedEdge `json:"dropped,omitempty"`
}

// Apply lays out d and merges the result into the scene. A layout error is
// returned before the scene is touched.
func (c *Canvas) Apply(d layout.Description) (ApplyReport, error) {
	res, err := layout.Run(d, c.cfg, c.ids)
	if err != nil {
		return ApplyReport{}, err
	}
	return c.Merge(res), nil
}

// Merge inserts a layout result into the scene following [PolicyFor].
//
// Each edge is checked against the node set it is merged into: existing plus
// new nodes when appending, new nodes only when replacing. Edges that fail
// are dropped and reported, and the rest of the merge goes on.
//
// When appending, a node whose kind and canonical data match a node already
// in the scene is skipped; edges touching it are re-pointed to the existing
// node, and an edge that then repeats a link the scene held before the merge
// is skipped too. Parallel edges within one layout are all kept. Node and
// edge IDs already known to the scene are replaced by fresh ones.
//
// The merge is built on a copy and swapped in at the end.
func (c *Canvas) Merge(res layout.Result) ApplyReport {
	policy := PolicyFor(res.Kind)
	report := ApplyReport{
		Kind:       res.Kind,
		Policy:     policy,
		AddedNodes: []string{},
		AddedEdges: []string{},
	}

	g := c.graph.Clone()
	if policy == PolicyReplace {
		g.Clear()
	}

	existing := make(map[string]string)
	if policy == PolicyAppend {
		for _, n := range g.Nodes() {
			existing[dedupKey(n)] = n.ID
		}
	}

	rename := make(map[string]string, len(res.Nodes))
	for _, n := range res.Nodes {
		if id, dup := existing[dedupKey(n)]; dup {
			rename[n.ID] = id
			report.SkippedNodes = append(report.SkippedNodes, n.ID)
			continue
		}
		id := n.ID
		if id == "" || g.Known(id) {
			id = c.freshID(g, "node")
		}
		rename[n.ID] = id
		n.ID = id
		if err := g.AddNode(n); err != nil {
			c.logger.Error("node not inserted", "id", id, "err", err)
			continue
		}
		report.AddedNodes = append(report.AddedNodes, id)
	}

	for _, e := range res.Edges {
		layoutID := e.ID
		if id, ok := rename[e.Source]; ok {
			e.Source = id
		}
		if id, ok := rename[e.Target]; ok {
			e.Target = id
		}
		if policy == PolicyAppend {
			if _, dup := c.graph.FindLink(e); dup {
				report.SkippedEdges = append(report.SkippedEdges, layoutID)
				continue
			}
		}
		if e.ID == "" || g.Known(e.ID) {
			e.ID = c.freshID(g, "edge")
		}

		err := g.AddEdge(e)
		var dangling *cferrors.DanglingReferenceError
		switch {
		case errors.As(err, &dangling):
			report.Dropped = append(report.Dropped, DroppedEdge{Edge: e, Reason: err.Error()})
			c.logger.Warn("dropped edge",
				"kind", res.Kind,
				"edge", layoutID,
				"source", e.Source,
				"target", e.Target,
				"missing", dangling.NodeID)
		case err != nil:
			report.Dropped = append(report.Dropped, DroppedEdge{Edge: e, Reason: err.Error()})
			c.logger.Warn("dropped edge", "kind", res.Kind, "edge", layoutID, "err", err)
		default:
			report.AddedEdges = append(report.AddedEdges, e.ID)
		}
	}

	c.graph = g
	c.logger.Debug("merged layout",
		"kind", res.Kind,
		"policy", policy,
		"added_nodes", len(report.AddedNodes),
		"added_edges", len(report.AddedEdges),
		"skipped", len(report.SkippedNodes),
		"dropped", len(report.Dropped))
	observability.Scene().OnApply(string(res.Kind), string(policy),
		len(report.AddedNodes), len(report.SkippedNodes), len(report.Dropped))
	return report
}

// dedupKey identifies a node's content for duplicate detection.
func dedupKey(n scene.Node) string {
	return string(n.Kind) + "\x00" + string(n.CanonicalData())
}
