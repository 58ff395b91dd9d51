package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "roster.json", 120)
	p.OnBuildComplete(ctx, "roster.json", 100, time.Second, nil)
	p.OnLayoutStart(ctx, 100)
	p.OnLayoutComplete(ctx, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "roster")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "hris.internal", "/org-chart/flat")
	h.OnResponse(ctx, "GET", "hris.internal", "/org-chart/flat", 200, time.Second)
	h.OnError(ctx, "GET", "hris.internal", "/org-chart/flat", nil)

	// Realtime hooks
	r := NoopRealtimeHooks{}
	r.OnClientConnected(ctx, 1)
	r.OnClientDisconnected(ctx, 0)
	r.OnBroadcast(ctx, "roster.updated", 3)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
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

	customRealtime := &testRealtimeHooks{}
	SetRealtimeHooks(customRealtime)
	if Realtime() != customRealtime {
		t.Error("SetRealtimeHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
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

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
type testRealtimeHooks struct{ NoopRealtimeHooks }

func TestLogHooksInstall(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	hooks := NewLogHooks(logger)
	hooks.Install()

	if Pipeline() != PipelineHooks(hooks) || Cache() != CacheHooks(hooks) {
		t.Fatal("Install should register pipeline and cache hooks")
	}
	if HTTP() != HTTPHooks(hooks) || Realtime() != RealtimeHooks(hooks) {
		t.Fatal("Install should register http and realtime hooks")
	}

	ctx := context.Background()
	Pipeline().OnBuildComplete(ctx, "roster.json", 3, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "layout")
	Realtime().OnBroadcast(ctx, "roster.updated", 2)

	out := buf.String()
	for _, want := range []string{"build complete", "cache miss", "realtime broadcast"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
