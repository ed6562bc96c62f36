package layout

import (
	"cmp"
	"slices"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
)

// Link is a directed edge between two node IDs.
type Link struct {
	Source, Target string
}

// Levels is the result of [AssignLevels].
type Levels struct {
	// Level maps each node ID to the length of the longest path reaching it
	// from any node with in-degree zero.
	Level map[string]int
	// Order lists node IDs in discovery order (first visit).
	Order []string
}

// ByLevel groups node IDs by level, each group in discovery order.
func (l Levels) ByLevel() [][]string {
	var groups [][]string
	for _, id := range l.Order {
		lv := l.Level[id]
		for len(groups) <= lv {
			groups = append(groups, nil)
		}
		groups[lv] = append(groups[lv], id)
	}
	return groups
}

// AssignLevels computes longest-path levels for a directed graph given as
// node IDs in declaration order and a link list.
//
// Nodes with in-degree zero are level 0 and are visited in declaration
// order. From each, a depth-first relaxation runs: a node reached for the
// first time takes the current depth; a node reached again via a longer path
// is raised to the new depth and the raise is propagated to its successors.
// Children are visited in ascending in-degree, ties in link order.
//
// Cycles are rejected up front with [errors.ErrCycle]; use [BackEdges] to
// drop the links that close them first. Links must reference listed nodes.
func AssignLevels(nodes []string, links []Link) (Levels, error) {
	if len(BackEdges(nodes, links)) > 0 {
		return Levels{}, cferrors.ErrCycle
	}

	inDegree := make(map[string]int, len(nodes))
	children := make(map[string][]string, len(nodes))
	for _, l := range links {
		inDegree[l.Target]++
		children[l.Source] = append(children[l.Source], l.Target)
	}
	for id, cs := range children {
		slices.SortStableFunc(cs, func(a, b string) int { return cmp.Compare(inDegree[a], inDegree[b]) })
		children[id] = cs
	}

	res := Levels{Level: make(map[string]int, len(nodes)), Order: make([]string, 0, len(nodes))}

	var visit func(id string, level int)
	visit = func(id string, level int) {
		if cur, seen := res.Level[id]; seen {
			if level <= cur {
				return
			}
			res.Level[id] = level
			for _, c := range children[id] {
				visit(c, level+1)
			}
			return
		}
		res.Level[id] = level
		res.Order = append(res.Order, id)
		for _, c := range children[id] {
			visit(c, level+1)
		}
	}

	for _, id := range nodes {
		if inDegree[id] == 0 {
			visit(id, 0)
		}
	}
	return res, nil
}

// BackEdges returns the indexes of links that close a cycle, found by a
// white/gray/black depth-first search started from the in-degree-zero nodes
// and then from any node still unvisited, both in declaration order.
// Removing the returned links leaves an acyclic graph.
func BackEdges(nodes []string, links []Link) []int {
	const (
		white = iota
		gray
		black
	)

	inDegree := make(map[string]int, len(nodes))
	out := make(map[string][]int, len(nodes))
	for i, l := range links {
		inDegree[l.Target]++
		out[l.Source] = append(out[l.Source], i)
	}

	color := make(map[string]int, len(nodes))
	var back []int

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, i := range out[id] {
			child := links[i].Target
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back = append(back, i)
			}
		}
		color[id] = black
	}

	for _, id := range nodes {
		if inDegree[id] == 0 && color[id] == white {
			dfs(id)
		}
	}
	for _, id := range nodes {
		if color[id] == white {
			dfs(id)
		}
	}

	slices.Sort(back)
	return back
}
