package scene_test

import (
	"fmt"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

func Example() {
	ids := scene.NewIDSourceWithSalt("demo")
	g := scene.New()

	a := scene.NewNode(ids, scene.KindStart, "Start", "", scene.Position{X: 0, Y: 0})
	b := scene.NewNode(ids, scene.KindEnd, "End", "", scene.Position{X: 0, Y: 200})
	_ = g.AddNode(a)
	_ = g.AddNode(b)
	_ = g.AddEdge(scene.NewEdge(ids, a.ID, b.ID, "", scene.EdgeSmoothStep))

	// Removing a node removes its edges as well.
	removed, _ := g.RemoveNode(a.ID)

	fmt.Println("nodes:", g.NodeCount())
	fmt.Println("edges:", g.EdgeCount())
	fmt.Println("removed edges:", len(removed))
	// Output:
	// nodes: 1
	// edges: 0
	// removed edges: 1
}

func ExampleGraph_AddEdge() {
	ids := scene.NewIDSourceWithSalt("demo")
	g := scene.New()
	n := scene.NewNode(ids, scene.KindGeneric, "Only", "", scene.Position{})
	_ = g.AddNode(n)

	err := g.AddEdge(scene.NewEdge(ids, n.ID, "ghost", "", scene.EdgeStraight))
	fmt.Println(err)
	// Output:
	// DANGLING_REFERENCE: edge "edge-demo-2" references missing node "ghost"
}
