package layout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// validate is a singleton validator instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names so error paths match the wire form.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
		return cferrors.ValidateColor(fl.Field().String()) == nil
	}))
	must(v.RegisterValidation("nodeid", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		return id == "" || cferrors.ValidateID(id) == nil
	}))
	must(v.RegisterValidation("nodekind", func(fl validator.FieldLevel) bool {
		return scene.NodeKind(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("edgekind", func(fl validator.FieldLevel) bool {
		return scene.EdgeKind(fl.Field().String()).Valid()
	}))
	return v
}

// Validate checks the shape of d: a known type tag, the matching data
// variant, required arrays, well-formed IDs and colors, and the
// cross-references inside the description (unique IDs, edges that point at
// declared nodes, equal-length bar chart arrays). It does not judge content.
//
// Every failure is a *errors.ShapeMismatchError naming the offending field.
func (d Description) Validate() error {
	if !d.Type.Valid() {
		return cferrors.ShapeMismatch(string(d.Type), "type", "unknown visualization kind %q", d.Type)
	}
	v := d.data()
	if v == nil {
		return cferrors.ShapeMismatch(string(d.Type), "data", "is required")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(d.Type, err)
	}

	switch d.Type {
	case KindBarChart:
		return checkBarChart(d.BarChart)
	case KindMindMap:
		return checkMindMap(d.MindMap)
	case KindFlowChart, KindCycleDiagram, KindHierarchyDiagram:
		return checkDiagram(d.Type, d.Diagram)
	case KindVennDiagram:
		return checkVenn(d.Venn)
	case KindArrowDiagram:
		return checkArrow(d.Arrow)
	}
	return nil
}

// formatValidationError converts the first validator error into a
// ShapeMismatchError with a JSON field path.
func formatValidationError(kind Kind, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &cferrors.ShapeMismatchError{Kind: string(kind), Field: "data", Reason: err.Error(), Cause: err}
	}

	e := verrs[0]
	field := e.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	var reason string
	switch e.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = fmt.Sprintf("must have at least %s elements", e.Param())
	case "oneof":
		reason = fmt.Sprintf("unknown kind %q (must be one of: %s)", e.Value(), e.Param())
	case "nodekind", "edgekind":
		reason = fmt.Sprintf("unknown kind %q", e.Value())
	case "color":
		reason = fmt.Sprintf("invalid color %q", e.Value())
	case "nodeid":
		reason = fmt.Sprintf("invalid id %q", e.Value())
	default:
		reason = fmt.Sprintf("validation failed (%s)", e.Tag())
	}
	return &cferrors.ShapeMismatchError{Kind: string(kind), Field: field, Reason: reason, Cause: err}
}

func checkBarChart(b *BarChart) error {
	if len(b.Categories) != len(b.Values) {
		return cferrors.ShapeMismatch(string(KindBarChart), "values",
			"length %d does not match %d categories", len(b.Values), len(b.Categories))
	}
	return nil
}

func checkMindMap(root *MindMapNode) error {
	seen := make(map[string]struct{})
	var walk func(n *MindMapNode, path string) error
	walk = func(n *MindMapNode, path string) error {
		if n.ID != "" {
			if _, dup := seen[n.ID]; dup {
				return cferrors.ShapeMismatch(string(KindMindMap), joinField(path, "id"), "duplicate id %q", n.ID)
			}
			seen[n.ID] = struct{}{}
		}
		for i := range n.Children {
			if err := walk(&n.Children[i], joinField(path, fmt.Sprintf("children[%d]", i))); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, "")
}

func checkDiagram(kind Kind, d *Diagram) error {
	ids := make(map[string]struct{}, len(d.Nodes))
	for i, n := range d.Nodes {
		if _, dup := ids[n.ID]; dup {
			return cferrors.ShapeMismatch(string(kind), fmt.Sprintf("nodes[%d].id", i), "duplicate id %q", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	edgeIDs := make(map[string]struct{}, len(d.Edges))
	for i, e := range d.Edges {
		if err := checkEndpoints(kind, i, e.Source, e.Target, ids); err != nil {
			return err
		}
		if e.ID == "" {
			continue
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return cferrors.ShapeMismatch(string(kind), fmt.Sprintf("edges[%d].id", i), "duplicate id %q", e.ID)
		}
		if _, clash := ids[e.ID]; clash {
			return cferrors.ShapeMismatch(string(kind), fmt.Sprintf("edges[%d].id", i), "id %q is used by a node", e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
	}
	return nil
}

func checkVenn(v *VennDiagram) error {
	ids := make(map[string]struct{}, len(v.Circles)+len(v.Intersections))
	circles := make(map[string]struct{}, len(v.Circles))
	for i, c := range v.Circles {
		if _, dup := ids[c.ID]; dup {
			return cferrors.ShapeMismatch(string(KindVennDiagram), fmt.Sprintf("circles[%d].id", i), "duplicate id %q", c.ID)
		}
		ids[c.ID] = struct{}{}
		circles[c.ID] = struct{}{}
	}
	for i, x := range v.Intersections {
		if x.ID != "" {
			if _, dup := ids[x.ID]; dup {
				return cferrors.ShapeMismatch(string(KindVennDiagram), fmt.Sprintf("intersections[%d].id", i), "duplicate id %q", x.ID)
			}
			ids[x.ID] = struct{}{}
		}
		for j, s := range x.Sets {
			if _, ok := circles[s]; !ok {
				return cferrors.ShapeMismatch(string(KindVennDiagram), fmt.Sprintf("intersections[%d].sets[%d]", i, j), "unknown circle %q", s)
			}
		}
	}
	return nil
}

func checkArrow(a *ArrowDiagram) error {
	ids := make(map[string]struct{}, len(a.Nodes))
	for i, n := range a.Nodes {
		if _, dup := ids[n.ID]; dup {
			return cferrors.ShapeMismatch(string(KindArrowDiagram), fmt.Sprintf("nodes[%d].id", i), "duplicate id %q", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	edgeIDs := make(map[string]struct{}, len(a.Edges))
	for i, e := range a.Edges {
		if err := checkEndpoints(KindArrowDiagram, i, e.Source, e.Target, ids); err != nil {
			return err
		}
		if e.ID == "" {
			continue
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return cferrors.ShapeMismatch(string(KindArrowDiagram), fmt.Sprintf("edges[%d].id", i), "duplicate id %q", e.ID)
		}
		if _, clash := ids[e.ID]; clash {
			return cferrors.ShapeMismatch(string(KindArrowDiagram), fmt.Sprintf("edges[%d].id", i), "id %q is used by a node", e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
	}
	return nil
}

func checkEndpoints(kind Kind, i int, source, target string, ids map[string]struct{}) error {
	if _, ok := ids[source]; !ok {
		return cferrors.ShapeMismatch(string(kind), fmt.Sprintf("edges[%d].source", i), "unknown node %q", source)
	}
	if _, ok := ids[target]; !ok {
		return cferrors.ShapeMismatch(string(kind), fmt.Sprintf("edges[%d].target", i), "unknown node %q", target)
	}
	return nil
}

func joinField(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
