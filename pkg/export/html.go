package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/canvasflow/pkg/scene"
)

// DefaultTitle is the page title of HTML exports.
const DefaultTitle = "canvasflow"

type htmlConfig struct {
	title string
	svg   []SVGOption
}

// HTMLOption configures [RenderHTML].
type HTMLOption func(*htmlConfig)

// WithTitle sets the page title.
func WithTitle(t string) HTMLOption { return func(c *htmlConfig) { c.title = t } }

// WithSVGOptions passes options to the embedded SVG drawing.
func WithSVGOptions(opts ...SVGOption) HTMLOption {
	return func(c *htmlConfig) { c.svg = append(c.svg, opts...) }
}

// RenderHTML returns a static page holding the SVG drawing of doc, followed by
// an interactive bar chart for every chart shape.
func RenderHTML(doc Document, opts ...HTMLOption) ([]byte, error) {
	cfg := htmlConfig{title: DefaultTitle}
	for _, opt := range opts {
		opt(&cfg)
	}

	page := components.NewPage()
	page.PageTitle = cfg.title
	for _, s := range doc.Shapes {
		if s.Shape == scene.ShapeChart && s.Chart != nil {
			page.AddCharts(barChart(s))
		}
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	drawing := fmt.Sprintf("\n<div class=\"canvas\" style=\"text-align:center\">\n%s</div>\n", RenderSVG(doc, cfg.svg...))
	out := buf.String()
	if i := strings.Index(out, "<body>"); i >= 0 {
		i += len("<body>")
		out = out[:i] + drawing + out[i:]
	} else {
		out = drawing + out
	}
	return []byte(out), nil
}

func barChart(s Shape) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: chartID(s.ID),
			Width:   fmt.Sprintf("%dpx", int(s.Width)),
			Height:  fmt.Sprintf("%dpx", int(s.Height)),
		}),
		charts.WithTitleOpts(opts.Title{Title: s.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.BarData, len(s.Chart.Values))
	for i, v := range s.Chart.Values {
		data[i] = opts.BarData{Value: v}
		if i < len(s.Chart.Colors) {
			data[i].ItemStyle = &opts.ItemStyle{Color: s.Chart.Colors[i]}
		}
	}
	bar.SetXAxis(s.Chart.Categories).AddSeries(s.Title, data)
	return bar
}

// chartID turns a node ID into an identifier usable in generated script.
func chartID(id string) string {
	var sb strings.Builder
	sb.WriteString("chart_")
	for _, r := range id {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
