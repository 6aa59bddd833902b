package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "trace", "proof.xml")
	p.OnLoadComplete(ctx, "trace", "proof.xml", 12, time.Second, nil)
	p.OnLayoutStart(ctx, "tree", 12)
	p.OnLayoutComplete(ctx, "tree", time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// View hooks
	v := NoopViewHooks{}
	v.OnRewrite(ctx, "pull-up", true, time.Millisecond)
	v.OnBusy(ctx, "toggle")
	v.OnDraw(ctx, 1, 2, 3)
	v.OnTask(ctx, "hide", nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/proofs/{id}")
	h.OnResponse(ctx, "GET", "/api/proofs/{id}", 200, time.Second)

	NoopNotifyHooks{}.OnNotify(ctx, "highlight", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := View().(NoopViewHooks); !ok {
		t.Error("View() should return NoopViewHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}
	if _, ok := Notify().(NoopNotifyHooks); !ok {
		t.Error("Notify() should return NoopNotifyHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customView := &testViewHooks{}
	SetViewHooks(customView)
	if View() != customView {
		t.Error("SetViewHooks should set custom hooks")
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

	Reset()
	if _, ok := View().(NoopViewHooks); !ok {
		t.Error("Reset() should restore NoopViewHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusHooks(reg)
	ctx := context.Background()

	p.OnRewrite(ctx, "pull-up", true, time.Millisecond)
	p.OnRewrite(ctx, "pull-up", false, 0)
	p.OnRewrite(ctx, "pull-up", false, 0)
	p.OnBusy(ctx, "toggle")
	p.OnCacheHit(ctx, "layout")
	p.OnNotify(ctx, "repair", errors.New("closed"))

	if got := testutil.ToFloat64(p.rewriteTotal.WithLabelValues("pull-up", "noop")); got != 2 {
		t.Errorf("noop rewrites = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.busyTotal.WithLabelValues("toggle")); got != 1 {
		t.Errorf("busy = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.notifyTotal.WithLabelValues("repair", "error")); got != 1 {
		t.Errorf("notify errors = %v, want 1", got)
	}
	if n, err := testutil.GatherAndCount(reg, "prooftower_cache_total"); err != nil || n != 1 {
		t.Errorf("cache series = %d, %v", n, err)
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testViewHooks struct{ NoopViewHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
