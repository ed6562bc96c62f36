// Package scene provides the canonical node/edge model of a canvas.
//
// A [Graph] is the live, in-memory set of positioned nodes and styled edges
// that a renderer draws. It is created empty per canvas session, replaced or
// merged each time a visualization is applied, and mutated by interactive
// edits. It is never persisted.
//
// # Identity
//
// Node and edge IDs are unique within a graph. IDs are assigned at creation,
// either by the caller (e.g. the ids in a flow chart description) or by an
// [IDSource], and are never reused: once a node is removed its ID is retired
// and [Graph.Known] keeps reporting it.
//
// # Invariants
//
// Every edge's Source and Target reference a node currently present in the
// graph. [Graph.AddEdge] refuses edges with a missing endpoint and returns a
// [errors.DanglingReferenceError]; [Graph.RemoveNode] removes every incident
// edge in the same call. [Graph.Validate] checks the invariant after the fact.
//
// At most one node is selected at a time. Removing the selected node clears
// the selection.
//
// # Concurrency
//
// Graph is not safe for concurrent use. Each session owns its own instance.
//
// [errors.DanglingReferenceError]: github.com/matzehuels/canvasflow/pkg/errors.DanglingReferenceError
package scene
