package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasflow/internal/config"
	"github.com/matzehuels/canvasflow/pkg/pipeline"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// layoutCommand creates the layout command for laying out one description.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [description.json|yaml|-]",
		Short: "Lay out a visualization description",
		Long: `Lay out a visualization description.

The layout command validates a bar chart, mind map, flow chart, cycle diagram,
hierarchy diagram, Venn diagram or arrow diagram description and writes the
positioned nodes and edges as JSON. Use 'compose' to merge descriptions into a
scene.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg.Layout = flags.apply(cmd, cfg.Layout)
			return c.runLayout(cmd, args[0], cfg, output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, stdout for -)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached layouts")
	flags.register(cmd)

	return cmd
}

// runLayout reads the description, lays it out and writes the result.
func (c *CLI) runLayout(cmd *cobra.Command, input string, cfg *config.Config, output string, noCache, refresh bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	d, err := readDescription(input, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %s...", d.Type))
	spinner.Start()
	opts := pipeline.Options{Config: cfg.Layout, Refresh: refresh, Logger: logger}
	res, hit, err := runner.LayoutWithCacheInfo(ctx, d, scene.NewIDSource(), opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("layout %s: %w", input, err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')

	outputPath := output
	if outputPath == "" && input == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := writeFile(outputPath, data); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(res.Nodes), len(res.Edges), hit)
	printNewline()
	printNextStep("Compose", "canvasflow compose "+input)
	return nil
}
