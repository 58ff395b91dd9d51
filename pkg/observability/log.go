package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log
// lines. Failures are logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that write to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

// Install registers h for every hook category.
func (h *LogHooks) Install() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetRealtimeHooks(h)
}

func (h *LogHooks) OnBuildStart(_ context.Context, source string, employees int) {
	h.logger.Debug("build start", "source", source, "employees", employees)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, source string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("build failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("build complete", "source", source, "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.logger.Debug("layout start", "nodes", nodes)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "err", err)
		return
	}
	h.logger.Debug("layout complete", "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h *LogHooks) OnClientConnected(_ context.Context, clients int) {
	h.logger.Debug("realtime client connected", "clients", clients)
}

func (h *LogHooks) OnClientDisconnected(_ context.Context, clients int) {
	h.logger.Debug("realtime client disconnected", "clients", clients)
}

func (h *LogHooks) OnBroadcast(_ context.Context, eventType string, recipients int) {
	h.logger.Debug("realtime broadcast", "event", eventType, "recipients", recipients)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
	_ RealtimeHooks = (*LogHooks)(nil)
)
