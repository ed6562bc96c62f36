package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

// layoutBarChart places a single chart node at the origin. The node's
// payload carries the full category, value and color arrays; drawing the
// bars is left to the renderer. Colors are repeated or truncated to match
// the number of categories.
func layoutBarChart(d Description, _ Config, ids *scene.IDSource) (Result, error) {
	b := d.BarChart

	n := scene.NewNode(ids, scene.KindGeneric, b.Title, b.Description, scene.Position{})
	n.Size = scene.Size{
		Width:  math.Max(minChartWidth, float64(len(b.Categories))*barWidthPerItem),
		Height: chartHeight,
	}
	n.Style = scene.Style{Shape: scene.ShapeChart, Fill: ColorMindFill, Stroke: ColorMindLine, StrokeWidth: 1, TextColor: ColorTextDark}
	n.Payload = scene.Payload{
		Visualization: string(KindBarChart),
		Chart: &scene.ChartData{
			Categories: slices.Clone(b.Categories),
			Values:     slices.Clone(b.Values),
			Colors:     fitColors(b.Colors, len(b.Categories)),
		},
	}
	return Result{Nodes: []scene.Node{n}, Edges: []scene.Edge{}}, nil
}

// fitColors returns exactly n colors, cycling through colors and falling
// back to ColorBar when none are given.
func fitColors(colors []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		switch {
		case len(colors) == 0:
			out[i] = ColorBar
		case colors[i%len(colors)] == "":
			out[i] = ColorBar
		default:
			out[i] = colors[i%len(colors)]
		}
	}
	return out
}
