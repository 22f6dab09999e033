package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFilePersister(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "cache")

	p, err := NewFilePersister(dir)
	if err != nil {
		t.Fatalf("NewFilePersister: %v", err)
	}
	defer p.Close()

	if _, err := p.Load(ctx, RepoCacheName); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty dir = %v, want ErrNotFound", err)
	}

	if err := p.Save(ctx, RepoCacheName, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := p.Save(ctx, RepoCacheName, []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	data, err := p.Load(ctx, RepoCacheName)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(data) != `{"a":2}` {
		t.Errorf("Load = %s, want latest snapshot", data)
	}

	if _, err := os.Stat(filepath.Join(dir, RepoCacheName+".json")); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d files, want 1 (temp files left behind?)", len(entries))
	}

	if err := p.Remove(ctx, RepoCacheName); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := p.Remove(ctx, RepoCacheName); err != nil {
		t.Errorf("Remove of missing snapshot: %v", err)
	}
	if _, err := p.Load(ctx, RepoCacheName); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Remove = %v, want ErrNotFound", err)
	}
}

func TestFilePersister_WithStore(t *testing.T) {
	ctx := context.Background()
	p, err := NewFilePersister(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	s := NewStore[string](LocationCacheName, LocationCacheTTL, p)
	_ = s.Ready(ctx)
	s.Set("io.quarkus:quarkus-arc", "extensions/arc/runtime")
	if err := s.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	again := NewStore[string](LocationCacheName, LocationCacheTTL, p)
	_ = again.Ready(ctx)
	if v, ok := again.Get("io.quarkus:quarkus-arc"); !ok || v != "extensions/arc/runtime" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}

func TestFilePersister_CorruptFileStartsCold(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RepoCacheName+".json"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	p, _ := NewFilePersister(dir)

	s := NewStore[int](RepoCacheName, time.Hour, p)
	if err := s.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if s.Size() != 0 {
		t.Errorf("Size() = %d, want 0", s.Size())
	}
}
