// Package server exposes canvases over HTTP.
//
// Each session owns one [canvas.Canvas]. Visualization descriptions are laid
// out through a shared [pipeline.Runner], so the HTTP API caches exactly like
// the CLI does. Requests against one session are serialized; different
// sessions proceed in parallel.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/observability"
	"github.com/matzehuels/canvasflow/pkg/pipeline"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr        string
	MaxSessions int           // 0 means unlimited
	SessionTTL  time.Duration // 0 keeps idle sessions forever
	Layout      layout.Config

	Runner  *pipeline.Runner
	Metrics *observability.Metrics // serves /metrics when set
	Logger  *log.Logger
}

// Server is the canvasflow HTTP API.
type Server struct {
	addr     string
	runner   *pipeline.Runner
	sessions *sessionStore
	logger   *log.Logger
	router   chi.Router
	now      func() time.Time
}

// New builds a server and its routes. A nil runner gets one without a cache.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}

	s := &Server{
		addr:     opts.Addr,
		runner:   runner,
		sessions: newSessionStore(opts.MaxSessions, opts.SessionTTL, opts.Layout, logger),
		logger:   logger,
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/reset", s.handleReset)
			r.Post("/visualizations", s.handleApply)
			r.Post("/nodes", s.handleAddNode)
			r.Patch("/nodes/{nodeID}", s.handleUpdateNode)
			r.Delete("/nodes/{nodeID}", s.handleDeleteNode)
			r.Post("/edges", s.handleConnect)
			r.Delete("/edges/{edgeID}", s.handleDisconnect)
			r.Put("/selection", s.handleSelect)
			r.Delete("/selection", s.handleClearSelection)
			r.Delete("/selection/node", s.handleDeleteSelected)
			r.Get("/export", s.handleExport)
		})
	})

	s.router = r
	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Idle sessions are evicted in the background.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go s.evictLoop(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) evictLoop(ctx context.Context) {
	if s.sessions.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(s.sessions.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sessions.evict()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}
