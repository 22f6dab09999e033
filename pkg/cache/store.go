package cache

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/quarkusio/extensions-enricher/pkg/observability"
)

// snapshotVersion is bumped whenever the persisted layout changes; snapshots
// with another version are discarded at load.
const snapshotVersion = 1

// Store is a named key-value cache with per-entry time-to-live, held in
// memory and flushed to a [Persister] between runs.
//
// A Store must be made ready with [Store.Ready] before use. Until then reads
// behave as misses and writes are dropped. Expired entries behave as absent
// whether or not they are still held in memory.
//
// Store is safe for concurrent use. A Get followed by a Set on the same key
// from two goroutines is last-writer-wins.
//
// Values are stored as given. Callers must not mutate a value after passing
// it to Set or after receiving it from Get.
type Store[V any] struct {
	name      string
	ttl       time.Duration
	persister Persister
	logger    *log.Logger
	now       func() time.Time

	mu      sync.RWMutex
	ready   bool
	entries map[string]entry[V]
}

type entry[V any] struct {
	Value     V         `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

type snapshot[V any] struct {
	Version int                 `json:"version"`
	Entries map[string]entry[V] `json:"entries"`
}

// Option configures a [Store].
type Option func(*options)

type options struct {
	logger *log.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for load and persist diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now, mainly so tests can move past a TTL.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewStore creates a store named name whose entries live for ttl.
// A nil persister is replaced by [NullPersister].
func NewStore[V any](name string, ttl time.Duration, p Persister, opts ...Option) *Store[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if p == nil {
		p = NullPersister{}
	}
	return &Store[V]{
		name:      name,
		ttl:       ttl,
		persister: p,
		logger:    o.logger.With("cache", name),
		now:       o.now,
		entries:   make(map[string]entry[V]),
	}
}

// Name returns the cache name used as the persistence key.
func (s *Store[V]) Name() string { return s.name }

// TTL returns the lifetime given to every entry on Set.
func (s *Store[V]) TTL() time.Duration { return s.ttl }

// Ready loads the persisted snapshot into memory. A missing, unreadable or
// corrupt snapshot leaves the store empty; that only costs extra remote
// fetches, so it is logged and not returned. The only error returned is the
// context's.
//
// Calling Ready on a store that is already ready reloads from storage and
// discards unsaved entries.
func (s *Store[V]) Ready(ctx context.Context) error {
	loaded := s.load(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = loaded
	s.ready = true
	s.mu.Unlock()

	observability.Cache().OnCacheLoad(s.name, len(loaded))
	return nil
}

func (s *Store[V]) load(ctx context.Context) map[string]entry[V] {
	entries := make(map[string]entry[V])

	data, err := s.persister.Load(ctx, s.name)
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug("no persisted snapshot, starting cold")
		return entries
	}
	if err != nil {
		s.logger.Warn("could not read persisted snapshot, starting cold", "err", err)
		return entries
	}

	var snap snapshot[V]
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("persisted snapshot is corrupt, starting cold", "err", err)
		return entries
	}
	if snap.Version != snapshotVersion {
		s.logger.Warn("persisted snapshot has unknown version, starting cold", "version", snap.Version)
		return entries
	}

	now := s.now()
	for k, e := range snap.Entries {
		if now.Before(e.ExpiresAt) {
			entries[k] = e
		}
	}
	return entries
}

// Get returns the value stored under key if it exists and has not expired.
func (s *Store[V]) Get(key string) (V, bool) {
	var zero V

	s.mu.RLock()
	ready := s.ready
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ready {
		s.logger.Debug("get before ready ignored", "key", key)
		return zero, false
	}
	if !ok || !s.now().Before(e.ExpiresAt) {
		observability.Cache().OnCacheMiss(s.name)
		return zero, false
	}
	observability.Cache().OnCacheHit(s.name)
	return e.Value, true
}

// Has reports whether Get would succeed for key.
func (s *Store[V]) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return s.ready && ok && s.now().Before(e.ExpiresAt)
}

// Set inserts or overwrites key, restarting its TTL.
func (s *Store[V]) Set(key string, v V) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		s.logger.Debug("set before ready ignored", "key", key)
		return
	}
	s.entries[key] = entry[V]{Value: v, ExpiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	observability.Cache().OnCacheSet(s.name)
}

// Delete removes key.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Size returns the number of live entries.
func (s *Store[V]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return 0
	}
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if now.Before(e.ExpiresAt) {
			n++
		}
	}
	return n
}

// Keys returns the live keys in sorted order.
func (s *Store[V]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		if now.Before(e.ExpiresAt) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Persist writes every live entry to the persister. It must be called before
// the process exits or freshly fetched data is lost. A store that never
// became ready is not persisted, so a failed startup cannot wipe a good
// snapshot.
func (s *Store[V]) Persist(ctx context.Context) error {
	s.mu.RLock()
	if !s.ready {
		s.mu.RUnlock()
		s.logger.Debug("persist before ready skipped")
		return nil
	}
	now := s.now()
	snap := snapshot[V]{Version: snapshotVersion, Entries: make(map[string]entry[V], len(s.entries))}
	for k, e := range s.entries {
		if now.Before(e.ExpiresAt) {
			snap.Entries[k] = e
		}
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err == nil {
		err = s.persister.Save(ctx, s.name, data)
	}
	observability.Cache().OnCachePersist(s.name, len(snap.Entries), err)
	return err
}

// FlushAll clears the in-memory entries without touching storage. The store
// stays ready, so repeated in-process runs start from an empty cache without
// re-reading the snapshot.
func (s *Store[V]) FlushAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry[V])
}
