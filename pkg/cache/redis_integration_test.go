//go:build integration

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestRedisPersister_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	p, err := NewRedisPersister(ctx, RedisConfig{Addr: addr, Prefix: "enricher-test:"})
	if err != nil {
		t.Fatalf("NewRedisPersister: %v", err)
	}
	defer p.Close()
	defer p.Remove(ctx, RepoCacheName)

	if err := p.Save(ctx, RepoCacheName, []byte(`{"x":1}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := p.Load(ctx, RepoCacheName)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != `{"x":1}` {
		t.Errorf("Load = %s", data)
	}

	if err := p.Remove(ctx, RepoCacheName); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := p.Load(ctx, RepoCacheName); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Remove = %v, want ErrNotFound", err)
	}
}
