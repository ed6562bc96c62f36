package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasflow/pkg/export"
	"github.com/matzehuels/canvasflow/pkg/pipeline"
)

// exportCommand creates the export command for encoding a saved scene.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		outDir  string
		formats string
		title   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "export [scene.json]",
		Short: "Export a scene as JSON, SVG, HTML, DOT or PNG",
		Long: `Export a scene as JSON, SVG, HTML, DOT or PNG.

Files are named canvas-<timestamp>.<format> and written to the output
directory. JSON is the renderer-agnostic snapshot of nodes and connectors;
PNG is rasterized with Graphviz.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], outDir, parseFormats(formats), title, noCache, time.Now())
		},
	}

	cmd.Flags().StringVarP(&outDir, "output-dir", "o", ".", "directory for exported files")
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "export formats: json, svg, html, dot, png (comma-separated)")
	cmd.Flags().StringVar(&title, "title", "", "HTML page title")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, input, outDir string, formats []string, title string, noCache bool, now time.Time) error {
	ctx := cmd.Context()
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	g, err := readScene(input)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Exporting...")
	spinner.Start()
	opts := pipeline.Options{Formats: formats, Title: title, Logger: loggerFromContext(ctx)}
	artifacts, hit, err := runner.ExportWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export %s: %w", input, err)
	}
	spinner.StopWithSuccess("Export complete")
	for _, name := range formats {
		f, _ := export.ParseFormat(name)
		path := filepath.Join(outDir, export.Filename(f, now))
		if err := writeFile(path, artifacts[string(f)]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(g.NodeCount(), g.EdgeCount(), hit)
	return nil
}
