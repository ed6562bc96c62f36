package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasflow/pkg/canvas"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

const (
	defaultScenePath = "canvas.scene.json"

	// New nodes are placed on a grid so they do not stack.
	gridColumns = 5
	gridStepX   = 200.0
	gridStepY   = 150.0
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// editCommand creates the edit command: a terminal editor over a scene.
func (c *CLI) editCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "edit [scene.json]",
		Short: "Edit a scene in the terminal",
		Long: `Edit a scene in the terminal.

Add nodes, select them, connect them and delete them. Deleting a node removes
every edge attached to it. Press w to save and q to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runEdit(cmd, input, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save to this file (default: the input file, or "+defaultScenePath+")")

	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, input, output string) error {
	opts := []canvas.Option{canvas.WithLogger(loggerFromContext(cmd.Context()))}
	if input != "" {
		g, err := readScene(input)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if g != nil {
			opts = append(opts, canvas.WithGraph(g))
		}
	}
	if output == "" {
		output = input
	}
	if output == "" {
		output = defaultScenePath
	}

	m := newEditModel(canvas.New(opts...), output)
	final, err := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if em, ok := final.(editModel); ok && em.dirty {
		printWarning("Unsaved changes discarded")
	}
	return nil
}

// editModel is the bubbletea model of the scene editor.
type editModel struct {
	canvas *canvas.Canvas
	path   string
	nodes  []scene.Node

	cursor int
	offset int
	height int
	shape  int // index into scene.FreeformShapes

	linkFrom string // source of a pending connect, or ""
	status   string
	dirty    bool
}

func newEditModel(cv *canvas.Canvas, path string) editModel {
	m := editModel{canvas: cv, path: path, height: 15}
	m.refresh()
	return m
}

// refresh reloads the node list after an edit and keeps the cursor in range.
func (m *editModel) refresh() {
	m.nodes = m.canvas.Scene().Nodes()
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}

func (m editModel) current() (scene.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return scene.Node{}, false
	}
	return m.nodes[m.cursor], true
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m editModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.linkFrom = ""
		m.status = ""
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.nodes)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "s":
		m.shape = (m.shape + 1) % len(scene.FreeformShapes)
		m.status = "shape: " + string(scene.FreeformShapes[m.shape])
	case "a":
		n := len(m.nodes)
		pos := scene.Position{X: float64(n%gridColumns) * gridStepX, Y: float64(n/gridColumns) * gridStepY}
		mut := m.canvas.AddNode(string(scene.FreeformShapes[m.shape]), pos)
		m.applied(mut, "added "+strings.Join(mut.AddedNodes, ", "))
		m.cursor = len(m.nodes) - 1
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
	case "enter", " ":
		n, ok := m.current()
		if !ok {
			break
		}
		if m.canvas.Selected() == n.ID {
			m.canvas.ClearSelection()
			m.status = "selection cleared"
		} else {
			m.canvas.SelectNode(n.ID)
			m.status = "selected " + n.ID
		}
	case "x", "delete":
		mut := m.canvas.DeleteSelectedNode()
		if mut.Empty() {
			m.status = "nothing selected"
			break
		}
		if m.linkFrom == mut.RemovedNodes[0] {
			m.linkFrom = ""
		}
		m.applied(mut, fmt.Sprintf("deleted %s and %d edges", mut.RemovedNodes[0], len(mut.RemovedEdges)))
	case "c":
		n, ok := m.current()
		if !ok {
			break
		}
		if m.linkFrom == "" {
			m.linkFrom = n.ID
			m.status = "connect " + n.ID + " to… (move, then press c)"
			break
		}
		mut := m.canvas.Connect(m.linkFrom, n.ID)
		m.applied(mut, fmt.Sprintf("connected %s → %s", m.linkFrom, n.ID))
		m.linkFrom = ""
	case "w", "ctrl+s":
		if err := writeScene(m.canvas.Scene(), m.path); err != nil {
			m.status = "save failed: " + err.Error()
			break
		}
		m.dirty = false
		m.status = "saved " + m.path
	}
	return m, nil
}

// applied records the outcome of an edit in the status line.
func (m *editModel) applied(mut canvas.Mutation, msg string) {
	if mut.Empty() {
		m.status = "no change"
		return
	}
	m.dirty = true
	m.status = msg
	m.refresh()
}

func (m editModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("canvasflow"))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render(m.path))
	if m.dirty {
		b.WriteString(StyleWarning.Render(" *"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("a add %s  s shape  ⏎ select  c connect  x delete  w save  q quit",
		scene.FreeformShapes[m.shape])))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  empty scene, press a to add a node"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.nodeTable())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d nodes · %d edges", m.canvas.NodeCount(), m.canvas.EdgeCount())))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(StyleHighlight.Render(m.status))
	}
	return b.String()
}

func (m editModel) nodeTable() string {
	end := m.offset + m.height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}
	selected := m.canvas.Selected()

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := ""
		switch n.ID {
		case selected:
			mark = "●"
		case m.linkFrom:
			mark = "→"
		}
		shape := n.Style.Shape
		if shape == "" {
			shape = n.Payload.Shape
		}
		rows = append(rows, []string{
			cursor + mark,
			n.ID,
			string(n.Kind),
			string(shape),
			n.Title,
			fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Kind", "Shape", "Title", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}
