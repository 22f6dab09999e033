// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about enrichment, cache operations, and GitHub calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEnrichHooks(&myEnrichHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Enrich().OnEntryStart(ctx, key)
//	// ... enrich ...
//	observability.Enrich().OnEntryComplete(ctx, key, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Enrichment Hooks
// =============================================================================

// EnrichHooks receives events from the enrichment orchestrator.
type EnrichHooks interface {
	// OnEntryStart is called before a catalog entry is enriched.
	OnEntryStart(ctx context.Context, key string)

	// OnEntryComplete is called after a catalog entry was enriched or skipped.
	OnEntryComplete(ctx context.Context, key string, duration time.Duration, err error)

	// OnQuery records which query shape was sent for a repository.
	// kind is one of "full", "issues", "listing" or "none".
	OnQuery(ctx context.Context, repo, kind string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache stores. name is the cache name
// (e.g. "github-api-for-repos").
type CacheHooks interface {
	// OnCacheHit records a lookup that found a live entry.
	OnCacheHit(name string)

	// OnCacheMiss records a lookup that found nothing or an expired entry.
	OnCacheMiss(name string)

	// OnCacheSet records a write.
	OnCacheSet(name string)

	// OnCacheLoad records how many entries were ingested from storage.
	OnCacheLoad(name string, entries int)

	// OnCachePersist records a flush to storage.
	OnCachePersist(name string, entries int, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEnrichHooks is a no-op implementation of EnrichHooks.
type NoopEnrichHooks struct{}

func (NoopEnrichHooks) OnEntryStart(context.Context, string)                           {}
func (NoopEnrichHooks) OnEntryComplete(context.Context, string, time.Duration, error) {}
func (NoopEnrichHooks) OnQuery(context.Context, string, string)                        {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(string)                  {}
func (NoopCacheHooks) OnCacheMiss(string)                 {}
func (NoopCacheHooks) OnCacheSet(string)                  {}
func (NoopCacheHooks) OnCacheLoad(string, int)            {}
func (NoopCacheHooks) OnCachePersist(string, int, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	enrichHooks EnrichHooks = NoopEnrichHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEnrichHooks registers custom enrichment hooks.
// This should be called once at application startup before any enrichment.
func SetEnrichHooks(h EnrichHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		enrichHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Enrich returns the registered enrichment hooks.
func Enrich() EnrichHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return enrichHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	enrichHooks = NoopEnrichHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
