package cli

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
	"github.com/quarkusio/extensions-enricher/pkg/observability"
)

// queryKinds are the query shapes reported in the summary.
var queryKinds = []string{github.QueryFull, github.QueryIssues, github.QueryListing}

// runHooks logs observability events at debug level and counts what the
// run summary needs. onEntry, if set, is called after every entry.
type runHooks struct {
	logger  *log.Logger
	onEntry func(done int64, key string, err error)

	hits, misses, done atomic.Int64

	mu      sync.Mutex
	queries map[string]int64
}

func newRunHooks(logger *log.Logger) *runHooks {
	return &runHooks{logger: logger, queries: make(map[string]int64)}
}

// install registers h for every hook category.
func (h *runHooks) install() {
	observability.SetEnrichHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *runHooks) OnEntryStart(_ context.Context, key string) {
	h.logger.Debug("enriching", "key", key)
}

func (h *runHooks) OnEntryComplete(_ context.Context, key string, d time.Duration, err error) {
	n := h.done.Add(1)
	h.logger.Debug("enriched", "key", key, "duration", d.Round(time.Millisecond), "err", err)
	if h.onEntry != nil {
		h.onEntry(n, key, err)
	}
}

func (h *runHooks) OnQuery(_ context.Context, repo, kind string) {
	h.mu.Lock()
	h.queries[kind]++
	h.mu.Unlock()
	h.logger.Debug("repository query", "repo", repo, "kind", kind)
}

func (h *runHooks) OnCacheHit(string)  { h.hits.Add(1) }
func (h *runHooks) OnCacheMiss(string) { h.misses.Add(1) }
func (h *runHooks) OnCacheSet(string)  {}

func (h *runHooks) OnCacheLoad(name string, entries int) {
	h.logger.Debug("cache loaded", "cache", name, "entries", entries)
}

func (h *runHooks) OnCachePersist(name string, entries int, err error) {
	if err != nil {
		h.logger.Warn("cache persist failed", "cache", name, "err", err)
		return
	}
	h.logger.Debug("cache persisted", "cache", name, "entries", entries)
}

func (h *runHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *runHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h *runHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

// queryCounts returns a copy of the per-kind query counters.
func (h *runHooks) queryCounts() map[string]int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.queries)
}

var (
	_ observability.EnrichHooks = (*runHooks)(nil)
	_ observability.CacheHooks  = (*runHooks)(nil)
	_ observability.HTTPHooks   = (*runHooks)(nil)
)
