package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Kind is the visualization kind tag of a description.
type Kind string

const (
	KindBarChart         Kind = "barChart"
	KindMindMap          Kind = "mindMap"
	KindFlowChart        Kind = "flowChart"
	KindVennDiagram      Kind = "vennDiagram"
	KindArrowDiagram     Kind = "arrowDiagram"
	KindCycleDiagram     Kind = "cycleDiagram"
	KindHierarchyDiagram Kind = "hierarchyDiagram"
)

// Kinds lists every supported visualization kind.
var Kinds = []Kind{
	KindBarChart, KindMindMap, KindFlowChart, KindVennDiagram,
	KindArrowDiagram, KindCycleDiagram, KindHierarchyDiagram,
}

// Valid reports whether k is a supported visualization kind.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// IsLeveled reports whether k is laid out by longest-path leveling.
func (k Kind) IsLeveled() bool {
	return k == KindFlowChart || k == KindCycleDiagram || k == KindHierarchyDiagram
}

// BarChart is the data of a bar chart: parallel category and value arrays.
type BarChart struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Categories  []string  `json:"categories" validate:"required"`
	Values      []float64 `json:"values" validate:"required"`
	Colors      []string  `json:"colors,omitempty" validate:"dive,color"`
}

// MindMapNode is one node of a mind map tree. ID is optional.
type MindMapNode struct {
	ID          string        `json:"id,omitempty" validate:"nodeid"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Children    []MindMapNode `json:"children,omitempty" validate:"dive"`
}

// Count returns the number of nodes in the subtree rooted at n.
func (n MindMapNode) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// DiagramNode is a node of a flow, cycle or hierarchy diagram.
// An empty Type means "process".
type DiagramNode struct {
	ID          string         `json:"id" validate:"required,nodeid"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Type        scene.NodeKind `json:"type,omitempty" validate:"omitempty,oneof=start process decision end"`
}

// DiagramEdge references two DiagramNodes by their caller-supplied IDs.
type DiagramEdge struct {
	ID     string `json:"id,omitempty" validate:"nodeid"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Label  string `json:"label,omitempty"`
}

// Diagram is the data of flow charts, cycle diagrams and hierarchy diagrams.
type Diagram struct {
	Nodes []DiagramNode `json:"nodes" validate:"required,dive"`
	Edges []DiagramEdge `json:"edges" validate:"required,dive"`
}

// Circle is one set of a Venn diagram.
type Circle struct {
	ID          string   `json:"id" validate:"required,nodeid"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty" validate:"color"`
	Items       []string `json:"items,omitempty"`
}

// Intersection labels the overlap of two or more circles.
type Intersection struct {
	ID    string   `json:"id,omitempty" validate:"nodeid"`
	Title string   `json:"title"`
	Sets  []string `json:"sets" validate:"required,min=2"`
}

// VennDiagram is the data of a Venn diagram.
type VennDiagram struct {
	Circles       []Circle       `json:"circles" validate:"required,min=1,dive"`
	Intersections []Intersection `json:"intersections,omitempty" validate:"dive"`
}

// ArrowNode is a node of an arrow diagram with a caller-chosen position.
// An empty Type means "generic".
type ArrowNode struct {
	ID          string          `json:"id" validate:"required,nodeid"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Type        scene.NodeKind  `json:"type,omitempty" validate:"omitempty,nodekind"`
	Position    *scene.Position `json:"position" validate:"required"`
}

// ArrowEdge is an edge of an arrow diagram. Type selects the styling:
// "dashed" draws an animated dashed edge, empty draws a straight edge, and
// any other edge kind is used as given.
type ArrowEdge struct {
	ID     string `json:"id,omitempty" validate:"nodeid"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Label  string `json:"label,omitempty"`
	Type   string `json:"type,omitempty" validate:"omitempty,edgekind"`
}

// ArrowDiagram is the data of an arrow diagram.
type ArrowDiagram struct {
	Nodes []ArrowNode `json:"nodes" validate:"required,dive"`
	Edges []ArrowEdge `json:"edges" validate:"required,dive"`
}

// Description is a visualization description: a tagged union keyed by Type.
// Exactly the field matching Type is set.
//
// The wire form is {"type": "<kind>", "data": {...}}.
type Description struct {
	Type     Kind
	BarChart *BarChart
	MindMap  *MindMapNode
	Diagram  *Diagram // flow, cycle and hierarchy diagrams
	Venn     *VennDiagram
	Arrow    *ArrowDiagram
}

// NewBarChart wraps a bar chart in a Description.
func NewBarChart(b BarChart) Description { return Description{Type: KindBarChart, BarChart: &b} }

// NewMindMap wraps a mind map tree in a Description.
func NewMindMap(root MindMapNode) Description { return Description{Type: KindMindMap, MindMap: &root} }

// NewDiagram wraps a leveled diagram in a Description. kind must be one of
// KindFlowChart, KindCycleDiagram or KindHierarchyDiagram.
func NewDiagram(kind Kind, d Diagram) Description { return Description{Type: kind, Diagram: &d} }

// NewVenn wraps a Venn diagram in a Description.
func NewVenn(v VennDiagram) Description { return Description{Type: KindVennDiagram, Venn: &v} }

// NewArrowDiagram wraps an arrow diagram in a Description.
func NewArrowDiagram(a ArrowDiagram) Description {
	return Description{Type: KindArrowDiagram, Arrow: &a}
}

// data returns the variant matching Type, or nil if it is unset.
func (d Description) data() any {
	switch {
	case d.Type == KindBarChart && d.BarChart != nil:
		return d.BarChart
	case d.Type == KindMindMap && d.MindMap != nil:
		return d.MindMap
	case d.Type.IsLeveled() && d.Diagram != nil:
		return d.Diagram
	case d.Type == KindVennDiagram && d.Venn != nil:
		return d.Venn
	case d.Type == KindArrowDiagram && d.Arrow != nil:
		return d.Arrow
	}
	return nil
}

// target returns a fresh zero variant for kind.
func target(kind Kind, d *Description) any {
	switch {
	case kind == KindBarChart:
		d.BarChart = &BarChart{}
		return d.BarChart
	case kind == KindMindMap:
		d.MindMap = &MindMapNode{}
		return d.MindMap
	case kind.IsLeveled():
		d.Diagram = &Diagram{}
		return d.Diagram
	case kind == KindVennDiagram:
		d.Venn = &VennDiagram{}
		return d.Venn
	case kind == KindArrowDiagram:
		d.Arrow = &ArrowDiagram{}
		return d.Arrow
	}
	return nil
}

type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes the description in its wire form.
func (d Description) MarshalJSON() ([]byte, error) {
	v := d.data()
	if v == nil {
		return nil, cferrors.ShapeMismatch(string(d.Type), "data", "is required")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: d.Type, Data: data})
}

// UnmarshalJSON decodes the wire form. Unknown type tags, a missing data
// object, unknown keys and mistyped fields are reported as
// *errors.ShapeMismatchError.
func (d *Description) UnmarshalJSON(b []byte) error {
	var env envelope
	if err := decodeStrict(b, &env); err != nil {
		return shapeFromJSON("", err)
	}
	if !env.Type.Valid() {
		return cferrors.ShapeMismatch(string(env.Type), "type", "unknown visualization kind %q", env.Type)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return cferrors.ShapeMismatch(string(env.Type), "data", "is required")
	}

	out := Description{Type: env.Type}
	if err := decodeStrict(env.Data, target(env.Type, &out)); err != nil {
		return shapeFromJSON(env.Type, err)
	}
	*d = out
	return nil
}

// decodeStrict unmarshals b into v, rejecting keys v has no field for.
func decodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// shapeFromJSON converts a JSON decoding error into a ShapeMismatchError
// naming the offending field when the decoder reports one.
func shapeFromJSON(kind Kind, err error) error {
	var sm *cferrors.ShapeMismatchError
	if errors.As(err, &sm) {
		return sm
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &cferrors.ShapeMismatchError{
			Kind:   string(kind),
			Field:  typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Cause:  err,
		}
	}
	field := "data"
	if kind == "" {
		field = "type"
	}
	return &cferrors.ShapeMismatchError{Kind: string(kind), Field: field, Reason: err.Error(), Cause: err}
}

// Decode reads one JSON description from r.
func Decode(r io.Reader) (Description, error) {
	var d Description
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Description{}, shapeFromJSON("", err)
	}
	return d, nil
}

// DecodeYAML parses a YAML description. The document has the same shape as
// the JSON wire form.
func DecodeYAML(b []byte) (Description, error) {
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Description{}, cferrors.Wrap(cferrors.ErrCodeInvalidFormat, err, "parse yaml")
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return Description{}, cferrors.Wrap(cferrors.ErrCodeInvalidFormat, err, "convert yaml")
	}
	return Decode(bytes.NewReader(js))
}

// ReadFile reads a description from a .json, .yaml or .yml file.
func ReadFile(path string) (Description, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Description{}, cferrors.Wrap(cferrors.ErrCodeFileNotFound, err, "description %s not found", path)
	}
	if err != nil {
		return Description{}, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(b)
	default:
		return Decode(bytes.NewReader(b))
	}
}
