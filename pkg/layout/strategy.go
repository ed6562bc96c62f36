package layout

import (
	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Result is the output of a strategy: positioned nodes and styled edges,
// not yet part of any scene.
type Result struct {
	Kind  Kind         `json:"kind"`
	Nodes []scene.Node `json:"nodes"`
	Edges []scene.Edge `json:"edges"`
}

// Strategy converts one visualization kind's description into a Result.
// Strategies are pure: they read only their arguments and never see the
// current scene. They may assume d has passed [Description.Validate].
type Strategy func(d Description, cfg Config, ids *scene.IDSource) (Result, error)

var strategies = map[Kind]Strategy{
	KindBarChart:         layoutBarChart,
	KindMindMap:          layoutMindMap,
	KindFlowChart:        layoutDiagram,
	KindCycleDiagram:     layoutDiagram,
	KindHierarchyDiagram: layoutDiagram,
	KindVennDiagram:      layoutVenn,
	KindArrowDiagram:     layoutArrow,
}

// StrategyFor returns the strategy registered for kind.
func StrategyFor(kind Kind) (Strategy, bool) {
	s, ok := strategies[kind]
	return s, ok
}

// Run validates d and lays it out with the strategy for its kind.
// Zero spacings in cfg fall back to defaults. Malformed descriptions fail
// with a *errors.ShapeMismatchError.
func Run(d Description, cfg Config, ids *scene.IDSource) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := d.Validate(); err != nil {
		return Result{}, err
	}
	s, ok := StrategyFor(d.Type)
	if !ok {
		return Result{}, cferrors.New(cferrors.ErrCodeUnsupported, "no strategy for %q", d.Type)
	}
	res, err := s(d, cfg.WithDefaults(), ids)
	if err != nil {
		return Result{}, err
	}
	res.Kind = d.Type
	return res, nil
}
