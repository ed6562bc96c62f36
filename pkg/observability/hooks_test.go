package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLayoutStart(ctx, "flowChart")
	p.OnLayoutComplete(ctx, "flowChart", 3, time.Second, nil)
	p.OnExportStart(ctx, []string{"svg"})
	p.OnExportComplete(ctx, []string{"svg"}, time.Second, nil)

	// Scene hooks
	s := NoopSceneHooks{}
	s.OnApply("mindMap", "append", 3, 0, 0)
	s.OnMutation("connect", false)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/sessions/{id}")
	h.OnResponse(ctx, "GET", "/sessions/{id}", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Scene() should return NoopSceneHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customScene := &testSceneHooks{}
	SetSceneHooks(customScene)
	if Scene() != customScene {
		t.Error("SetSceneHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Scene().(NoopSceneHooks); !ok {
		t.Error("Reset() should restore NoopSceneHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestMetricsRecordsEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics(nil)

	m.OnLayoutComplete(ctx, "flowChart", 3, 10*time.Millisecond, nil)
	m.OnLayoutComplete(ctx, "flowChart", 0, time.Millisecond, errors.New("cycle"))
	m.OnApply("mindMap", "append", 3, 1, 2)
	m.OnMutation("connect", false)
	m.OnMutation("connect", true)
	m.OnMutation("connect", true)
	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	m.OnRequest(ctx, "GET", "/healthz")
	m.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"layouts ok", testutil.ToFloat64(m.LayoutsTotal.WithLabelValues("flowChart", "ok")), 1},
		{"layouts error", testutil.ToFloat64(m.LayoutsTotal.WithLabelValues("flowChart", "error")), 1},
		{"nodes added", testutil.ToFloat64(m.NodesAdded.WithLabelValues("mindMap")), 3},
		{"nodes skipped", testutil.ToFloat64(m.NodesSkipped.WithLabelValues("mindMap")), 1},
		{"edges dropped", testutil.ToFloat64(m.EdgesDropped.WithLabelValues("mindMap")), 2},
		{"soft no-op", testutil.ToFloat64(m.MutationsTotal.WithLabelValues("connect", "false")), 1},
		{"changes", testutil.ToFloat64(m.MutationsTotal.WithLabelValues("connect", "true")), 2},
		{"cache hits", testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("layout")), 1},
		{"cache misses", testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("layout")), 1},
		{"requests", testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")), 1},
		{"in flight", testutil.ToFloat64(m.HTTPRequestsInFlight), 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %g, want %g", tt.name, tt.got, tt.want)
		}
	}
}

func TestMetricsInstall(t *testing.T) {
	defer Reset()
	m := NewMetrics(nil)
	m.Install()

	if Pipeline() != m || Scene() != m || Cache() != m || HTTP() != m {
		t.Error("Install should register the metrics as every hook")
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testSceneHooks struct{ NoopSceneHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
