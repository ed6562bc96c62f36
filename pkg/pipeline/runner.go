package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvasflow/pkg/cache"
	"github.com/matzehuels/canvasflow/pkg/canvas"
	"github.com/matzehuels/canvasflow/pkg/export"
	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/observability"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no results, only the cache and logger, so one Runner can
// serve many goroutines. The canvases it merges into are not shared: the
// caller owns each canvas and its locking.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default entry lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, and a nil keyer
// uses [cache.DefaultKeyer].
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute lays out d, merges it into c and exports the resulting scene.
func (r *Runner) Execute(ctx context.Context, c *canvas.Canvas, d layout.Description, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	start := time.Now()
	res, hit, err := r.LayoutWithCacheInfo(ctx, d, c.IDs(), opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.CacheInfo.LayoutHit = hit
	result.Stats.LayoutTime = time.Since(start)

	result.Report = c.Merge(res)
	result.Stats.NodeCount = c.NodeCount()
	result.Stats.EdgeCount = c.EdgeCount()
	r.Logger.Info("composed scene",
		"kind", d.Type,
		"policy", result.Report.Policy,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"dropped", len(result.Report.Dropped))

	start = time.Now()
	doc := export.Snapshot(c.Scene())
	artifacts, hash, hit, err := r.exportDocument(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.SnapshotHash = hash
	result.CacheInfo.ExportHit = hit
	result.Stats.ExportTime = time.Since(start)

	r.Logger.Info("exported scene", "formats", opts.Formats, "duration", result.Stats.ExportTime)
	return result, nil
}

// LayoutWithCacheInfo lays out d, reading and writing the layout cache, and
// reports whether the result came from cache.
//
// A cached result carries the IDs of the run that produced it. Merging it
// into a canvas that already knows those IDs replaces them with fresh ones.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d layout.Description, ids *scene.IDSource, opts Options) (layout.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return layout.Result{}, false, err
	}
	kind := string(d.Type)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, kind)
	start := time.Now()

	key, keyErr := r.layoutKey(d, opts)
	if keyErr == nil && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				hooks.OnLayoutComplete(ctx, kind, len(cached.Nodes), time.Since(start), nil)
				opts.Logger.Debug("layout cache hit", "kind", kind)
				return cached, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("layout cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	res, err := layout.Run(d, opts.Config, ids)
	hooks.OnLayoutComplete(ctx, kind, len(res.Nodes), time.Since(start), err)
	if err != nil {
		return layout.Result{}, false, err
	}

	if keyErr == nil {
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl(cache.LayoutTTL)); err != nil {
				opts.Logger.Warn("layout cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
			}
		}
	}
	return res, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit flag.
func (r *Runner) Layout(ctx context.Context, d layout.Description, ids *scene.IDSource, opts Options) (layout.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, d, ids, opts)
	return res, err
}

// ExportWithCacheInfo snapshots g and encodes it in every requested format.
// It reports whether all artifacts came from cache.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g *scene.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	artifacts, _, hit, err := r.exportDocument(ctx, export.Snapshot(g), opts)
	return artifacts, hit, err
}

// Export is ExportWithCacheInfo without the cache hit flag.
func (r *Runner) Export(ctx context.Context, g *scene.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

func (r *Runner) exportDocument(ctx context.Context, doc export.Document, opts Options) (map[string][]byte, string, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()

	hash, err := cache.HashJSON(doc)
	if err != nil {
		hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err)
		return nil, "", false, fmt.Errorf("hash snapshot: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for _, f := range opts.Formats {
		key := r.Keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{Format: f, Title: opts.Title})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
				artifacts[f] = data
				continue
			} else if err != nil {
				opts.Logger.Warn("artifact cache read failed", "format", f, "err", err)
			}
			observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
		}
		allHit = false

		data, err := encode(ctx, doc, export.Format(f), opts.Title)
		if err != nil {
			hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, "", false, fmt.Errorf("%s: %w", f, err)
		}
		artifacts[f] = data
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.ArtifactTTL)); err != nil {
			opts.Logger.Warn("artifact cache write failed", "format", f, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, hash, allHit, nil
}

func encode(ctx context.Context, doc export.Document, f export.Format, title string) ([]byte, error) {
	if f == export.FormatHTML {
		return export.RenderHTML(doc, export.WithTitle(title))
	}
	return export.Encode(ctx, doc, f)
}

// layoutKey keys a layout by the canonical JSON of the description and the
// effective config.
func (r *Runner) layoutKey(d layout.Description, opts Options) (string, error) {
	descHash, err := cache.HashJSON(d)
	if err != nil {
		return "", err
	}
	return r.Keyer.LayoutKey(descHash, cache.LayoutKeyOpts{
		Kind:   string(d.Type),
		Config: opts.Config.WithDefaults(),
	}), nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
