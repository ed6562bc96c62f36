package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

const flowJSON = `{
  "type": "flowChart",
  "data": {
    "nodes": [
      {"id": "start", "title": "Start", "type": "start"},
      {"id": "check", "title": "Valid?", "type": "decision"},
      {"id": "end", "title": "Done", "type": "end"}
    ],
    "edges": [
      {"source": "start", "target": "check"},
      {"source": "check", "target": "end", "label": "yes"}
    ]
  }
}`

const flowYAML = `
type: flowChart
data:
  nodes:
    - {id: start, title: Start, type: start}
    - {id: check, title: "Valid?", type: decision}
    - {id: end, title: Done, type: end}
  edges:
    - {source: start, target: check}
    - {source: check, target: end, label: "yes"}
`

func TestDecode(t *testing.T) {
	d, err := Decode(strings.NewReader(flowJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Type != KindFlowChart || d.Diagram == nil {
		t.Fatalf("got %+v", d)
	}
	if len(d.Diagram.Nodes) != 3 || d.Diagram.Nodes[1].Type != scene.KindDecision {
		t.Errorf("nodes = %+v", d.Diagram.Nodes)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDecodeYAMLMatchesJSON(t *testing.T) {
	fromJSON, err := Decode(strings.NewReader(flowJSON))
	if err != nil {
		t.Fatal(err)
	}
	fromYAML, err := DecodeYAML([]byte(flowYAML))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	a, _ := json.Marshal(fromJSON)
	b, _ := json.Marshal(fromYAML)
	if !bytes.Equal(a, b) {
		t.Errorf("yaml and json differ:\n%s\n%s", a, b)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"unknown type", `{"type": "pieChart", "data": {}}`, "type"},
		{"missing data", `{"type": "barChart"}`, "data"},
		{"null data", `{"type": "barChart", "data": null}`, "data"},
		{"mistyped field", `{"type": "barChart", "data": {"categories": "a", "values": []}}`, "categories"},
		{"not an object", `[1, 2]`, "type"},
		{"unknown data key", `{"type": "barChart", "data": {"categories": [], "values": [], "colour": "red"}}`, "data"},
		{"unknown nested key", `{"type": "mindMap", "data": {"title": "R", "children": [{"title": "A", "weight": 2}]}}`, "data"},
		{"unknown envelope key", `{"type": "barChart", "data": {"categories": [], "values": []}, "extra": 1}`, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			var sm *cferrors.ShapeMismatchError
			if !errors.As(err, &sm) {
				t.Fatalf("got %v, want ShapeMismatchError", err)
			}
			if sm.Field != tt.field {
				t.Errorf("field = %q, want %q", sm.Field, tt.field)
			}
		})
	}
}

func TestDecodeYAMLSyntaxError(t *testing.T) {
	_, err := DecodeYAML([]byte("type: [unclosed"))
	if !cferrors.Is(err, cferrors.ErrCodeInvalidFormat) {
		t.Errorf("got %v, want INVALID_FORMAT", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"flow.json": flowJSON, "flow.yaml": flowYAML} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		d, err := ReadFile(path)
		if err != nil {
			t.Errorf("ReadFile(%s): %v", name, err)
			continue
		}
		if d.Type != KindFlowChart {
			t.Errorf("ReadFile(%s): type = %s", name, d.Type)
		}
	}

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}
	if !cferrors.Is(err, cferrors.ErrCodeFileNotFound) {
		t.Errorf("missing file code = %q, want %q", cferrors.GetCode(err), cferrors.ErrCodeFileNotFound)
	}
}

func TestMarshalRoundTripKeepsWireForm(t *testing.T) {
	d := NewMindMap(MindMapNode{Title: "Root", Children: []MindMapNode{{Title: "A"}}})
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), `{"type":"mindMap","data":{`) {
		t.Errorf("wire form = %s", b)
	}
}

func TestValidate(t *testing.T) {
	pos := &scene.Position{}
	tests := []struct {
		name  string
		desc  Description
		field string
	}{
		{
			name:  "unknown kind",
			desc:  Description{Type: "pieChart"},
			field: "type",
		},
		{
			name:  "variant missing",
			desc:  Description{Type: KindFlowChart},
			field: "data",
		},
		{
			name:  "missing categories",
			desc:  NewBarChart(BarChart{Values: []float64{1}}),
			field: "categories",
		},
		{
			name:  "bad bar color",
			desc:  NewBarChart(BarChart{Categories: []string{"a"}, Values: []float64{1}, Colors: []string{"red;}"}}),
			field: "colors[0]",
		},
		{
			name:  "missing nodes",
			desc:  NewDiagram(KindFlowChart, Diagram{Edges: []DiagramEdge{}}),
			field: "nodes",
		},
		{
			name:  "missing node id",
			desc:  NewDiagram(KindFlowChart, Diagram{Nodes: []DiagramNode{{Title: "x"}}, Edges: []DiagramEdge{}}),
			field: "nodes[0].id",
		},
		{
			name: "unknown node type",
			desc: NewDiagram(KindFlowChart, Diagram{
				Nodes: []DiagramNode{{ID: "a", Type: scene.KindLeaf}},
				Edges: []DiagramEdge{},
			}),
			field: "nodes[0].type",
		},
		{
			name: "dangling edge target",
			desc: NewDiagram(KindHierarchyDiagram, Diagram{
				Nodes: []DiagramNode{{ID: "a"}, {ID: "b"}},
				Edges: []DiagramEdge{{Source: "a", Target: "b"}, {Source: "b", Target: "ghost"}},
			}),
			field: "edges[1].target",
		},
		{
			name: "dangling edge source",
			desc: NewDiagram(KindFlowChart, Diagram{
				Nodes: []DiagramNode{{ID: "a"}},
				Edges: []DiagramEdge{{Source: "ghost", Target: "a"}},
			}),
			field: "edges[0].source",
		},
		{
			name: "duplicate node id",
			desc: NewDiagram(KindFlowChart, Diagram{
				Nodes: []DiagramNode{{ID: "a"}, {ID: "a"}},
				Edges: []DiagramEdge{},
			}),
			field: "nodes[1].id",
		},
		{
			name: "edge id reuses node id",
			desc: NewDiagram(KindFlowChart, Diagram{
				Nodes: []DiagramNode{{ID: "a"}, {ID: "b"}},
				Edges: []DiagramEdge{{ID: "a", Source: "a", Target: "b"}},
			}),
			field: "edges[0].id",
		},
		{
			name:  "duplicate mind map id",
			desc:  NewMindMap(MindMapNode{ID: "r", Children: []MindMapNode{{ID: "x"}, {ID: "x"}}}),
			field: "children[1].id",
		},
		{
			name:  "no circles",
			desc:  NewVenn(VennDiagram{Circles: []Circle{}}),
			field: "circles",
		},
		{
			name:  "bad circle color",
			desc:  NewVenn(VennDiagram{Circles: []Circle{{ID: "a", Color: "url(#x)"}}}),
			field: "circles[0].color",
		},
		{
			name: "unknown set",
			desc: NewVenn(VennDiagram{
				Circles:       []Circle{{ID: "a"}, {ID: "b"}},
				Intersections: []Intersection{{Sets: []string{"a", "c"}}},
			}),
			field: "intersections[0].sets[1]",
		},
		{
			name: "intersection of one set",
			desc: NewVenn(VennDiagram{
				Circles:       []Circle{{ID: "a"}},
				Intersections: []Intersection{{Sets: []string{"a"}}},
			}),
			field: "intersections[0].sets",
		},
		{
			name:  "arrow node without position",
			desc:  NewArrowDiagram(ArrowDiagram{Nodes: []ArrowNode{{ID: "a"}}, Edges: []ArrowEdge{}}),
			field: "nodes[0].position",
		},
		{
			name: "unknown arrow edge type",
			desc: NewArrowDiagram(ArrowDiagram{
				Nodes: []ArrowNode{{ID: "a", Position: pos}},
				Edges: []ArrowEdge{{Source: "a", Target: "a", Type: "zigzag"}},
			}),
			field: "edges[0].type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			var sm *cferrors.ShapeMismatchError
			if !errors.As(err, &sm) {
				t.Fatalf("got %v, want ShapeMismatchError", err)
			}
			if sm.Field != tt.field {
				t.Errorf("field = %q, want %q (%v)", sm.Field, tt.field, err)
			}
			if !cferrors.Is(err, cferrors.ErrCodeShapeMismatch) {
				t.Error("error should carry SHAPE_MISMATCH code")
			}
		})
	}
}

func TestValidateAcceptsEmptyOptionals(t *testing.T) {
	descs := []Description{
		NewBarChart(BarChart{Categories: []string{}, Values: []float64{}}),
		NewMindMap(MindMapNode{Title: "only root"}),
		NewDiagram(KindCycleDiagram, Diagram{Nodes: []DiagramNode{}, Edges: []DiagramEdge{}}),
		NewVenn(VennDiagram{Circles: []Circle{{ID: "a"}}}),
		NewArrowDiagram(ArrowDiagram{Nodes: []ArrowNode{}, Edges: []ArrowEdge{}}),
	}
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			t.Errorf("%s: %v", d.Type, err)
		}
	}
}
