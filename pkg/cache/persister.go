package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a [Persister] when nothing has been saved under
// the requested name yet.
var ErrNotFound = errors.New("cache snapshot not found")

// Persister stores the serialized snapshot of a [Store] between runs.
// Snapshots are opaque byte slices keyed by cache name.
type Persister interface {
	// Load returns the last saved snapshot for name, or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save replaces the snapshot for name.
	Save(ctx context.Context, name string, data []byte) error

	// Close releases any connection held by the persister.
	Close() error
}

// Names of the caches used by the enricher, and their time-to-live.
const (
	// RepoCacheName holds repository-level GitHub data keyed by repository URL.
	RepoCacheName = "github-api-for-repos"

	// LocationCacheName holds extension metadata file locations keyed by
	// groupId:artifactId. Locations rarely move, so they are trusted longer.
	LocationCacheName = "github-api-for-extension-paths"

	// ContributorCacheName holds contributor and sponsor results keyed by
	// owner/project/path.
	ContributorCacheName = "github-api-for-contributors"
)

const (
	RepoCacheTTL        = 3 * 24 * time.Hour
	LocationCacheTTL    = 10 * 24 * time.Hour
	ContributorCacheTTL = 7 * 24 * time.Hour
)

// Names lists every cache the enricher opens, in a stable order.
func Names() []string {
	return []string{RepoCacheName, LocationCacheName, ContributorCacheName}
}

// Remover is implemented by persisters that can delete a snapshot.
type Remover interface {
	Remove(ctx context.Context, name string) error
}
