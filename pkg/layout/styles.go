package layout

import (
	"strconv"
	"strings"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Palette.
const (
	ColorBar       = "#3b82f6"
	ColorStart     = "#22c55e"
	ColorEnd       = "#ef4444"
	ColorDecision  = "#FFB547"
	ColorProcess   = "#3b82f6"
	ColorFlowEdge  = "#64748b"
	ColorMindEdge  = "#94a3b8"
	ColorMindFill  = "#ffffff"
	ColorMindLine  = "#e5e7eb"
	ColorMindRoot  = "#6366f1"
	ColorTextDark  = "#000000"
	ColorTextLight = "#FFFFFF"
)

// vennPalette colors circles that do not name their own color.
var vennPalette = []string{"#60a5fa", "#f472b6", "#34d399", "#fbbf24", "#a78bfa", "#f87171"}

// Node and marker sizes.
const (
	flowNodeWidth      = 250.0
	flowNodeHeight     = 100.0
	decisionNodeHeight = 200.0
	mindNodeWidth      = 250.0
	mindNodeHeight     = 100.0
	arrowNodeWidth     = 200.0
	arrowNodeHeight    = 80.0
	labelWidth         = 120.0
	labelHeight        = 40.0
	barWidthPerItem    = 100.0
	minChartWidth      = 400.0
	chartHeight        = 300.0
	markerSize         = 20.0
	edgeStrokeWidth    = 2.0
	decisionOffset     = 0.1
)

// arrowMarker returns the closed arrowhead used by every strategy.
func arrowMarker(color string) scene.Marker {
	return scene.Marker{Type: scene.MarkerArrowClosed, Width: markerSize, Height: markerSize, Color: color}
}

func edgeStyle(color string) scene.EdgeStyle {
	return scene.EdgeStyle{Stroke: color, StrokeWidth: edgeStrokeWidth}
}

// flowFill returns the fill color of a leveled diagram node.
func flowFill(kind scene.NodeKind) string {
	switch kind {
	case scene.KindStart:
		return ColorStart
	case scene.KindEnd:
		return ColorEnd
	case scene.KindDecision:
		return ColorDecision
	default:
		return ColorProcess
	}
}

// ContrastText returns black or white, whichever reads better on the hex
// color bg. Non-hex colors get black.
func ContrastText(bg string) string {
	hex := strings.TrimPrefix(bg, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) < 6 {
		return ColorTextDark
	}
	r, errR := strconv.ParseUint(hex[0:2], 16, 8)
	g, errG := strconv.ParseUint(hex[2:4], 16, 8)
	b, errB := strconv.ParseUint(hex[4:6], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return ColorTextDark
	}
	brightness := (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000
	if brightness > 128 {
		return ColorTextDark
	}
	return ColorTextLight
}
