// Package canvas owns a scene graph and is the only writer to it.
//
// A [Canvas] merges laid-out visualizations into its scene ([Canvas.Apply])
// and applies interactive edits ([Canvas.AddNode], [Canvas.Connect],
// [Canvas.DeleteSelectedNode], ...). Every operation runs to completion or
// leaves the scene untouched, and after every operation each edge references
// two nodes that are present.
//
// A Canvas is not safe for concurrent use. Each session owns its own.
package canvas

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Canvas is a single session's scene together with its ID source and layout
// configuration.
type Canvas struct {
	graph  *scene.Graph
	ids    *scene.IDSource
	cfg    layout.Config
	logger *log.Logger
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithConfig sets the layout configuration used by Apply.
func WithConfig(cfg layout.Config) Option {
	return func(c *Canvas) { c.cfg = cfg }
}

// WithLogger sets the logger. Dropped edges are reported at warn level.
func WithLogger(l *log.Logger) Option {
	return func(c *Canvas) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDSource sets the ID source. Tests use it for predictable IDs.
func WithIDSource(ids *scene.IDSource) Option {
	return func(c *Canvas) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// WithGraph starts the canvas from an existing scene instead of an empty one.
// The canvas takes a copy.
func WithGraph(g *scene.Graph) Option {
	return func(c *Canvas) {
		if g != nil {
			c.graph = g.Clone()
		}
	}
}

// New creates a canvas with an empty scene.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		graph:  scene.New(),
		ids:    scene.NewIDSource(),
		cfg:    layout.DefaultConfig(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scene returns a copy of the current scene.
func (c *Canvas) Scene() *scene.Graph { return c.graph.Clone() }

// Config returns the layout configuration.
func (c *Canvas) Config() layout.Config { return c.cfg }

// IDs returns the canvas's ID source.
func (c *Canvas) IDs() *scene.IDSource { return c.ids }

// NodeCount returns the number of nodes in the scene.
func (c *Canvas) NodeCount() int { return c.graph.NodeCount() }

// EdgeCount returns the number of edges in the scene.
func (c *Canvas) EdgeCount() int { return c.graph.EdgeCount() }

// Selected returns the selected node ID, or "" when nothing is selected.
func (c *Canvas) Selected() string { return c.graph.Selected() }

// Reset empties the scene. IDs used so far stay retired.
func (c *Canvas) Reset() Mutation {
	var m Mutation
	for _, n := range c.graph.Nodes() {
		m.RemovedNodes = append(m.RemovedNodes, n.ID)
	}
	for _, e := range c.graph.Edges() {
		m.RemovedEdges = append(m.RemovedEdges, e.ID)
	}
	c.graph.Clear()
	c.record("reset", m)
	return m
}

// freshID returns an ID from the canvas's source that the scene has never
// seen.
func (c *Canvas) freshID(g *scene.Graph, prefix string) string {
	for {
		id := c.ids.Next(prefix)
		if !g.Known(id) {
			return id
		}
	}
}
