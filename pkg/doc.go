// Package pkg provides the core libraries for canvasflow.
//
// # Overview
//
// Canvasflow turns structured visualization descriptions (flowcharts, mind
// maps, bar charts, Venn diagrams, arrow diagrams) into positioned nodes and
// edges on a shared scene, lets that scene be edited interactively, and
// exports it as JSON, SVG, HTML, DOT or PNG. The pkg directory is organized
// as follows:
//
//  1. [scene] - The node/edge graph every other package operates on
//  2. [layout] - Descriptions and the per-kind layout strategies
//  3. [canvas] - Composition into a live scene plus the editing operations
//  4. [export] - Snapshots and encoders for every output format
//  5. [pipeline] - Cached layout and export used by the CLI and server
//
// # Architecture
//
//	Description (JSON / YAML)
//	         ↓
//	    [layout] package (strategy → nodes + edges)
//	         ↓
//	    [canvas] package (replace or append, dedup, drop dangling edges)
//	         ↓
//	    [export] package (snapshot → encoder)
//	         ↓
//	JSON/SVG/HTML/DOT/PNG output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/canvasflow/pkg/canvas"
//	    "github.com/matzehuels/canvasflow/pkg/export"
//	    "github.com/matzehuels/canvasflow/pkg/layout"
//	)
//
//	d, _ := layout.ReadFile("flow.json")
//
//	cv := canvas.New()
//	report, _ := cv.Apply(d)
//	fmt.Println(report.AddedNodes)
//
//	svg := export.RenderSVG(export.Snapshot(cv.Scene()))
//
// Interactive edits go through the same canvas:
//
//	mut := cv.AddNode("diamond", scene.Position{X: 400, Y: 80})
//	cv.SelectNode(mut.AddedNodes[0])
//	cv.DeleteSelectedNode() // removes attached edges too
//
// # Infrastructure
//
// [cache] - Layout and artifact cache with null, file and Redis backends,
// optional snappy compression and scoped keys.
//
// [observability] - Hook interfaces for pipeline, scene, cache and HTTP events,
// with a Prometheus implementation.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [buildinfo] - Version metadata injected at link time.
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/scene
// [layout]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/layout
// [canvas]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/canvas
// [export]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/canvasflow/pkg/buildinfo
package pkg
