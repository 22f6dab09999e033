package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEnrichHooks{}
	e.OnEntryStart(ctx, "https://github.com/acme/widget")
	e.OnEntryComplete(ctx, "https://github.com/acme/widget", time.Second, nil)
	e.OnQuery(ctx, "https://github.com/acme/widget", "full")

	c := NoopCacheHooks{}
	c.OnCacheHit("github-api-for-repos")
	c.OnCacheMiss("github-api-for-repos")
	c.OnCacheSet("github-api-for-extension-paths")
	c.OnCacheLoad("github-api-for-repos", 12)
	c.OnCachePersist("github-api-for-repos", 12, errors.New("disk full"))

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "api.github.com", "/graphql")
	h.OnResponse(ctx, "POST", "api.github.com", "/graphql", 200, time.Second)
	h.OnError(ctx, "POST", "api.github.com", "/graphql", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Enrich().(NoopEnrichHooks); !ok {
		t.Error("Enrich() should return NoopEnrichHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customEnrich := &testEnrichHooks{}
	SetEnrichHooks(customEnrich)
	if Enrich() != customEnrich {
		t.Error("SetEnrichHooks should set custom hooks")
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
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)
	SetCacheHooks(nil)

	if Cache() != custom {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

type testEnrichHooks struct{ NoopEnrichHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
