package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/canvasflow/pkg/cache"
	"github.com/matzehuels/canvasflow/pkg/canvas"
	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
	"github.com/matzehuels/canvasflow/pkg/layout"
	"github.com/matzehuels/canvasflow/pkg/scene"
)

// memCache is an in-memory cache.Cache that counts calls.
type memCache struct {
	mu         sync.Mutex
	data       map[string][]byte
	gets, sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func flowDescription() layout.Description {
	return layout.NewDiagram(layout.KindFlowChart, layout.Diagram{
		Nodes: []layout.DiagramNode{
			{ID: "start", Title: "Start", Type: scene.KindStart},
			{ID: "check", Title: "Valid?", Type: scene.KindDecision},
			{ID: "end", Title: "End", Type: scene.KindEnd},
		},
		Edges: []layout.DiagramEdge{
			{Source: "start", Target: "check"},
			{Source: "check", Target: "end", Label: "yes"},
		},
	})
}

func TestValidateAndSetDefaults(t *testing.T) {
	formats := []string{"SVG", "json"}
	opts := Options{Formats: formats}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Formats[0] != "svg" || formats[0] != "SVG" {
		t.Errorf("formats should be normalized on a copy: opts=%v caller=%v", opts.Formats, formats)
	}
	if opts.Title == "" || opts.Logger == nil {
		t.Error("title and logger should be defaulted")
	}

	var empty Options
	if err := empty.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(empty.Formats) != 1 || empty.Formats[0] != DefaultFormat {
		t.Errorf("default formats = %v", empty.Formats)
	}

	tests := []struct {
		name string
		opts Options
	}{
		{"unknown format", Options{Formats: []string{"pdf"}}},
		{"negative spacing", Options{Config: layout.Config{HorizontalSpacing: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png", "html", "dot", "json"}); err != nil {
		t.Errorf("valid formats: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "pdf"}); err == nil {
		t.Error("pdf should be rejected")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats: %v", err)
	}
}

func TestLayoutCaching(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	ids := scene.NewIDSourceWithSalt("t")

	first, hit, err := r.LayoutWithCacheInfo(ctx, flowDescription(), ids, Options{})
	if err != nil {
		t.Fatalf("first layout: %v", err)
	}
	if hit {
		t.Error("first layout should miss")
	}

	second, hit, err := r.LayoutWithCacheInfo(ctx, flowDescription(), ids, Options{})
	if err != nil {
		t.Fatalf("second layout: %v", err)
	}
	if !hit {
		t.Error("second layout should hit")
	}
	if len(second.Nodes) != len(first.Nodes) || second.Nodes[1].Position != first.Nodes[1].Position {
		t.Errorf("cached result differs: %+v vs %+v", second.Nodes, first.Nodes)
	}

	_, hit, err = r.LayoutWithCacheInfo(ctx, flowDescription(), ids, Options{Config: layout.Config{HorizontalSpacing: 300}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("a different config must not hit")
	}

	_, hit, _ = r.LayoutWithCacheInfo(ctx, flowDescription(), ids, Options{Refresh: true})
	if hit {
		t.Error("Refresh must bypass the cache")
	}
}

func TestLayoutErrorIsNotCached(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	bad := layout.NewBarChart(layout.BarChart{Categories: []string{"a", "b"}, Values: []float64{1}})

	_, err := r.Layout(context.Background(), bad, scene.NewIDSource(), Options{})
	var shape *cferrors.ShapeMismatchError
	if !errors.As(err, &shape) {
		t.Fatalf("err = %v, want ShapeMismatchError", err)
	}
	if mc.sets != 0 {
		t.Errorf("failed layout wrote %d cache entries", mc.sets)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	opts := Options{Formats: []string{"json", "svg"}}

	c := canvas.New(canvas.WithIDSource(scene.NewIDSourceWithSalt("a")))
	res, err := r.Execute(ctx, c, flowDescription(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Report.Policy != canvas.PolicyAppend {
		t.Errorf("policy = %s, want append", res.Report.Policy)
	}
	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v, want 3 nodes 2 edges", res.Stats)
	}
	for _, f := range []string{"json", "svg"} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.ExportHit {
		t.Errorf("first run should miss: %+v", res.CacheInfo)
	}

	other := canvas.New(canvas.WithIDSource(scene.NewIDSourceWithSalt("b")))
	again, err := r.Execute(ctx, other, flowDescription(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.ExportHit {
		t.Errorf("identical run should hit both caches: %+v", again.CacheInfo)
	}
	if again.SnapshotHash != res.SnapshotHash {
		t.Error("identical scenes should hash the same")
	}
	if string(again.Artifacts["svg"]) != string(res.Artifacts["svg"]) {
		t.Error("cached svg differs from the rendered one")
	}
}

func TestExecuteLayoutErrorLeavesCanvas(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	c := canvas.New()
	bad := layout.NewDiagram(layout.KindFlowChart, layout.Diagram{
		Nodes: []layout.DiagramNode{{ID: "a"}, {ID: "b"}},
		Edges: []layout.DiagramEdge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	})
	if _, err := r.Execute(context.Background(), c, bad, Options{}); err == nil {
		t.Fatal("cyclic flow chart should fail")
	}
	if c.NodeCount() != 0 {
		t.Errorf("canvas modified by failed run: %d nodes", c.NodeCount())
	}
}

func TestExportTitleIsPartOfTheKey(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)
	c := canvas.New()
	c.AddNode("circle", scene.Position{})

	a, err := r.Export(ctx, c.Scene(), Options{Formats: []string{"html"}, Title: "First"})
	if err != nil {
		t.Fatal(err)
	}
	b, hit, err := r.ExportWithCacheInfo(ctx, c.Scene(), Options{Formats: []string{"html"}, Title: "Second"})
	if err != nil {
		t.Fatal(err)
	}
	if hit || string(a["html"]) == string(b["html"]) {
		t.Error("a different title must render a new page")
	}
}

func TestRunnerWithFileCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(cache.NewCompressed(fc), cache.NewScopedKeyer(nil, "test:"), nil)
	defer r.Close()

	c := canvas.New()
	c.AddNode("rectangle", scene.Position{})
	if _, err := r.Export(ctx, c.Scene(), Options{Formats: []string{"dot"}}); err != nil {
		t.Fatal(err)
	}
	_, hit, err := r.ExportWithCacheInfo(ctx, c.Scene(), Options{Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second export should come from the file cache")
	}
}
