package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasflow/internal/config"
	"github.com/matzehuels/canvasflow/pkg/canvas"
	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/pipeline"
)

type composeOptions struct {
	output  string
	base    string
	formats string
	title   string
	noCache bool
	refresh bool
	layout  layoutFlags
}

// composeCommand creates the compose command, which merges descriptions into
// one scene in the order given.
func (c *CLI) composeCommand() *cobra.Command {
	var o composeOptions

	cmd := &cobra.Command{
		Use:   "compose [description...]",
		Short: "Merge visualization descriptions into a scene and export it",
		Long: `Merge visualization descriptions into a scene and export it.

Descriptions are applied in order. Bar charts and Venn diagrams replace the
scene; every other kind is appended to it. Edges whose endpoints are missing
after the merge are dropped and reported.

The scene is written as JSON (-o) so it can be edited with 'canvasflow edit'
or exported again later.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg.Layout = o.layout.apply(cmd, cfg.Layout)
			return c.runCompose(cmd, args, cfg, o)
		},
	}

	cmd.Flags().StringVarP(&o.output, "output", "o", "", "scene file (default: <first input>.scene.json)")
	cmd.Flags().StringVar(&o.base, "base", "", "start from this scene instead of an empty one")
	cmd.Flags().StringVarP(&o.formats, "format", "f", "svg", "export formats: json, svg, html, dot, png (comma-separated)")
	cmd.Flags().StringVar(&o.title, "title", "", "HTML page title")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached layouts and artifacts")
	o.layout.register(cmd)

	return cmd
}

func (c *CLI) runCompose(cmd *cobra.Command, inputs []string, cfg *config.Config, o composeOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	formats := parseFormats(o.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	descs := make([]layout.Description, len(inputs))
	for i, in := range inputs {
		d, err := readDescription(in, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read %s: %w", in, err)
		}
		descs[i] = d
	}

	canvasOpts := []canvas.Option{canvas.WithConfig(cfg.Layout), canvas.WithLogger(logger)}
	if o.base != "" {
		g, err := readScene(o.base)
		if err != nil {
			return err
		}
		canvasOpts = append(canvasOpts, canvas.WithGraph(g))
	}
	cv := canvas.New(canvasOpts...)

	runner, err := c.newRunner(ctx, cfg, o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Config:  cfg.Layout,
		Formats: formats,
		Title:   o.title,
		Refresh: o.refresh,
		Logger:  logger,
	}

	for i, d := range descs {
		res, err := runner.Layout(ctx, d, cv.IDs(), opts)
		if err != nil {
			return fmt.Errorf("layout %s: %w", inputs[i], err)
		}
		printReport(inputs[i], cv.Merge(res))
	}

	g := cv.Scene()
	artifacts, hit, err := runner.ExportWithCacheInfo(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	base := o.output
	if base == "" {
		base = strings.TrimSuffix(inputs[0], filepath.Ext(inputs[0])) + ".scene.json"
	}
	if err := writeScene(g, base); err != nil {
		return fmt.Errorf("write scene %s: %w", base, err)
	}

	printNewline()
	printFile(base)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSuffix(stem, ".scene")
	for _, f := range formats {
		path := stem + "." + f
		if path == base {
			path = stem + ".export." + f
		}
		if err := writeFile(path, artifacts[f]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(g.NodeCount(), g.EdgeCount(), hit)
	prog.done(fmt.Sprintf("Composed %d descriptions", len(inputs)))
	printNextStep("Edit", "canvasflow edit "+base)
	return nil
}
