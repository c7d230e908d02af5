package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taxotree/pkg/observability"
)

// runHooks counts cache and HTTP events of one command run and logs the
// requests at debug level.
type runHooks struct {
	logger *log.Logger

	hits, misses, requests, failures atomic.Int64
}

func (h *runHooks) OnCacheHit(context.Context, string)      { h.hits.Add(1) }
func (h *runHooks) OnCacheMiss(context.Context, string)     { h.misses.Add(1) }
func (h *runHooks) OnCacheSet(context.Context, string, int) {}

func (h *runHooks) OnRequest(_ context.Context, method, host, path string) {
	h.requests.Add(1)
	h.logger.Debug("HTTP request", "method", method, "host", host, "path", path)
}

func (h *runHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.logger.Debug("HTTP response", "host", host, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *runHooks) OnError(_ context.Context, _, host, _ string, err error) {
	h.failures.Add(1)
	h.logger.Debug("HTTP error", "host", host, "err", err)
}

// registerHooks installs counting hooks until the returned func is called.
func registerHooks(logger *log.Logger) (*runHooks, func()) {
	h := &runHooks{logger: logger}
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
	return h, observability.Reset
}

// stats returns the non-zero counters for printing.
func (h *runHooks) stats() []stat {
	return []stat{
		{int(h.hits.Load()), "cache hits"},
		{int(h.misses.Load()), "cache misses"},
		{int(h.requests.Load()), "requests"},
		{int(h.failures.Load()), "failed requests"},
	}
}
