package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
	"github.com/quarkusio/extensions-enricher/pkg/observability"
)

func TestRunHooksCounts(t *testing.T) {
	h := newRunHooks(testLogger())
	h.install()
	defer observability.Reset()

	ctx := context.Background()
	observability.Cache().OnCacheHit("a")
	observability.Cache().OnCacheHit("b")
	observability.Cache().OnCacheMiss("c")
	observability.Enrich().OnQuery(ctx, "acme/widget", github.QueryFull)
	observability.Enrich().OnQuery(ctx, "acme/gadget", github.QueryFull)
	observability.Enrich().OnQuery(ctx, "acme/widget", github.QueryListing)

	if h.hits.Load() != 2 || h.misses.Load() != 1 {
		t.Errorf("hits, misses = %d, %d; want 2, 1", h.hits.Load(), h.misses.Load())
	}

	counts := h.queryCounts()
	if counts[github.QueryFull] != 2 || counts[github.QueryListing] != 1 || counts[github.QueryIssues] != 0 {
		t.Errorf("queryCounts() = %v", counts)
	}
	counts[github.QueryFull] = 100
	if h.queryCounts()[github.QueryFull] != 2 {
		t.Error("queryCounts() returned the live map")
	}
}

func TestRunHooksOnEntry(t *testing.T) {
	h := newRunHooks(testLogger())

	type call struct {
		done   int64
		key    string
		failed bool
	}
	var calls []call
	h.onEntry = func(done int64, key string, err error) {
		calls = append(calls, call{done, key, err != nil})
	}

	ctx := context.Background()
	h.OnEntryStart(ctx, "a")
	h.OnEntryComplete(ctx, "a", 0, nil)
	h.OnEntryComplete(ctx, "b", 0, errors.New("boom"))

	want := []call{{1, "a", false}, {2, "b", true}}
	if len(calls) != len(want) {
		t.Fatalf("got %d callbacks, want %d", len(calls), len(want))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, calls[i], want[i])
		}
	}
}
