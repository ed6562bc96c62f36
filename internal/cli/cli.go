// Package cli implements the canvasflow command-line interface.
//
// The commands lay out visualization descriptions, compose them into a
// scene, export scenes, edit scenes interactively and serve the HTTP API.
// The CLI is built with cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - layout: Lay out one description and write the positioned nodes and edges
//   - compose: Merge descriptions into a scene and export it
//   - export: Encode a saved scene as JSON, SVG, HTML, DOT or PNG
//   - edit: Edit a scene in the terminal
//   - serve: Run the HTTP API
//   - cache: Inspect or clear the layout and artifact cache
//   - config: Locate or initialize the config file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasflow/internal/config"
	"github.com/matzehuels/canvasflow/pkg/buildinfo"
	"github.com/matzehuels/canvasflow/pkg/cache"
	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/pipeline"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the config file location. Empty means
	// config.Path().
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "canvasflow",
		Short:        "canvasflow lays out visualization descriptions on an editable canvas",
		Long:         `canvasflow turns bar charts, mind maps, flow charts, Venn diagrams and arrow diagrams into positioned scene graphs that can be edited and exported.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope()), c.Logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

// newCache builds the configured backend. Entries are snappy-compressed when
// cache.compress is set.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}

	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		backend, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	default:
		backend, err = cache.NewFileCache(cfg.CacheDir())
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	if cfg.Cache.Compress {
		backend = cache.NewCompressed(backend)
	}
	return backend, nil
}

// layoutFlags are the spacing overrides shared by commands that lay out
// descriptions. Zero means "use the config file".
type layoutFlags struct {
	hSpacing float64
	vSpacing float64
	startX   float64
	startY   float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.hSpacing, "h-spacing", 0, "horizontal spacing between nodes")
	cmd.Flags().Float64Var(&f.vSpacing, "v-spacing", 0, "vertical spacing between levels")
	cmd.Flags().Float64Var(&f.startX, "start-x", 0, "x anchor of leveled diagrams")
	cmd.Flags().Float64Var(&f.startY, "start-y", 0, "y anchor of leveled diagrams")
}

// apply overlays flags that were set on the command line onto cfg.
func (f *layoutFlags) apply(cmd *cobra.Command, cfg layout.Config) layout.Config {
	if cmd.Flags().Changed("h-spacing") {
		cfg.HorizontalSpacing = f.hSpacing
	}
	if cmd.Flags().Changed("v-spacing") {
		cfg.VerticalSpacing = f.vSpacing
	}
	if cmd.Flags().Changed("start-x") {
		cfg.StartX = f.startX
	}
	if cmd.Flags().Changed("start-y") {
		cfg.StartY = f.startY
	}
	return cfg
}

// readDescription reads a JSON or YAML description. YAML is chosen by file
// extension; "-" reads JSON from stdin.
func readDescription(path string, stdin io.Reader) (layout.Description, error) {
	if path == "-" {
		return layout.Decode(stdin)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return layout.Description{}, err
		}
		return layout.DecodeYAML(data)
	default:
		return layout.ReadFile(path)
	}
}

// readScene loads a scene saved by compose or edit.
func readScene(path string) (*scene.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := scene.New()
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", path, err)
	}
	return g, nil
}

// writeScene saves g as indented JSON.
func writeScene(g *scene.Graph, path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
