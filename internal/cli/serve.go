package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/canvasflow/internal/config"
	"github.com/matzehuels/canvasflow/internal/server"
	"github.com/matzehuels/canvasflow/pkg/observability"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		maxSessions int
		sessionTTL  time.Duration
		noCache     bool
		noMetrics   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Each session owns one canvas. Descriptions are posted to
/sessions/{id}/visualizations, edits go to /nodes, /edges and /selection, and
/sessions/{id}/export returns the scene in any export format. Prometheus
metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("max-sessions") {
				cfg.Server.MaxSessions = maxSessions
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.Server.SessionTTL.Duration = sessionTTL
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := server.Options{
				Addr:        cfg.Server.Addr,
				MaxSessions: cfg.Server.MaxSessions,
				SessionTTL:  cfg.Server.SessionTTL.Duration,
				Layout:      cfg.Layout,
				Runner:      runner,
				Logger:      c.Logger,
			}
			if !noMetrics {
				m := observability.NewMetrics(nil)
				m.Install()
				defer observability.Reset()
				opts.Metrics = m
			}

			printInfo("Serving on %s", StyleHighlight.Render("http://"+cfg.Server.Addr))
			backend := cfg.Cache.Backend
			if noCache {
				backend = config.BackendNone
			}
			printKeyValue("cache", backend)
			if cfg.Server.MaxSessions > 0 {
				printKeyValue("sessions", fmt.Sprintf("max %d, idle ttl %s", cfg.Server.MaxSessions, cfg.Server.SessionTTL.Duration))
			}
			printKeyValue("metrics", fmt.Sprintf("%t", opts.Metrics != nil))
			return server.New(opts).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "maximum live sessions, 0 for unlimited")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 0, "evict sessions idle for this long")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve /metrics")

	return cmd
}
