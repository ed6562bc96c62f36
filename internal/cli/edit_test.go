package cli

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/canvasflow/pkg/canvas"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to the model and returns the resulting model.
func press(t *testing.T, m editModel, keys ...string) editModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(editModel)
	}
	return m
}

func TestEditAddAndConnect(t *testing.T) {
	m := newEditModel(canvas.New(), filepath.Join(t.TempDir(), "scene.json"))

	m = press(t, m, "a", "s", "a")
	if m.canvas.NodeCount() != 2 {
		t.Fatalf("NodeCount = %d, want 2", m.canvas.NodeCount())
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (the newest node)", m.cursor)
	}
	second := m.nodes[1]
	if second.Style.Shape != scene.FreeformShapes[1] {
		t.Errorf("second node shape = %q, want %q", second.Style.Shape, scene.FreeformShapes[1])
	}
	if second.Position == m.nodes[0].Position {
		t.Error("new nodes should not stack on each other")
	}

	// Connect first -> second.
	m = press(t, m, "up", "c", "down", "c")
	if m.canvas.EdgeCount() != 1 {
		t.Fatalf("EdgeCount = %d, want 1", m.canvas.EdgeCount())
	}
	e := m.canvas.Scene().Edges()[0]
	if e.Source != m.nodes[0].ID || e.Target != m.nodes[1].ID {
		t.Errorf("edge %s -> %s, want %s -> %s", e.Source, e.Target, m.nodes[0].ID, m.nodes[1].ID)
	}
	if m.linkFrom != "" {
		t.Error("pending connect should be cleared")
	}
	if !m.dirty {
		t.Error("model should be dirty after edits")
	}
}

func TestEditCancelConnect(t *testing.T) {
	m := newEditModel(canvas.New(), "scene.json")
	m = press(t, m, "a", "c", "esc", "c")
	if m.linkFrom == "" {
		t.Fatal("c after esc should start a new connect")
	}
	if m.canvas.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", m.canvas.EdgeCount())
	}
}

func TestEditSelectAndDelete(t *testing.T) {
	m := newEditModel(canvas.New(), "scene.json")
	m = press(t, m, "a", "a", "a")
	m = press(t, m, "up", "c", "up", "c")     // node 1 -> node 0
	m = press(t, m, "down", "c", "down", "c") // node 1 -> node 2
	if m.canvas.EdgeCount() != 2 {
		t.Fatalf("EdgeCount = %d, want 2", m.canvas.EdgeCount())
	}

	// Nothing selected yet: delete is a no-op.
	m = press(t, m, "x")
	if m.canvas.NodeCount() != 3 || m.status != "nothing selected" {
		t.Fatalf("delete without selection changed the scene (status %q)", m.status)
	}

	m = press(t, m, "up", "enter")
	middle := m.nodes[1].ID
	if m.canvas.Selected() != middle {
		t.Fatalf("Selected = %q, want %q", m.canvas.Selected(), middle)
	}

	m = press(t, m, "x")
	if m.canvas.NodeCount() != 2 || m.canvas.EdgeCount() != 0 {
		t.Errorf("after delete: %d nodes, %d edges; want 2, 0", m.canvas.NodeCount(), m.canvas.EdgeCount())
	}
	if m.canvas.Selected() != "" {
		t.Error("selection should be cleared after delete")
	}
	if err := m.canvas.Scene().Validate(); err != nil {
		t.Errorf("scene invalid: %v", err)
	}
}

func TestEditToggleSelection(t *testing.T) {
	m := newEditModel(canvas.New(), "scene.json")
	m = press(t, m, "a", "enter")
	if m.canvas.Selected() == "" {
		t.Fatal("enter should select the node under the cursor")
	}
	m = press(t, m, "enter")
	if m.canvas.Selected() != "" {
		t.Error("enter on the selected node should clear the selection")
	}
}

func TestEditSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scene.json")
	m := newEditModel(canvas.New(), path)
	m = press(t, m, "a", "a", "w")

	if m.dirty {
		t.Error("model should be clean after saving")
	}
	g, err := readScene(path)
	if err != nil {
		t.Fatalf("readScene: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("saved scene has %d nodes, want 2", g.NodeCount())
	}
}

func TestEditLoadsExistingScene(t *testing.T) {
	cv := canvas.New()
	cv.AddNode("circle", scene.Position{})
	m := newEditModel(canvas.New(canvas.WithGraph(cv.Scene())), "scene.json")
	if len(m.nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(m.nodes))
	}
	// Adding to a loaded scene never reuses an existing ID.
	m = press(t, m, "a")
	if m.nodes[0].ID == m.nodes[1].ID {
		t.Error("new node reused an existing ID")
	}
}

func TestEditQuit(t *testing.T) {
	m := newEditModel(canvas.New(), "scene.json")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestEditView(t *testing.T) {
	m := newEditModel(canvas.New(), "scene.json")
	if !strings.Contains(m.View(), "empty scene") {
		t.Error("empty scene hint missing")
	}

	m = press(t, m, "a", "enter")
	view := m.View()
	for _, want := range []string{m.nodes[0].ID, "1 nodes", "selected"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestEditWindowResize(t *testing.T) {
	m := newEditModel(canvas.New(), "scene.json")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(editModel).height; got != 5 {
		t.Errorf("height = %d, want minimum 5", got)
	}
}
