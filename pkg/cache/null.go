package cache

import "context"

// NullPersister never stores anything. Every load is a miss, so a [Store]
// backed by it always starts cold.
// Useful for testing or when caching should be disabled.
type NullPersister struct{}

// NewNullPersister creates a null persister.
func NewNullPersister() Persister {
	return NullPersister{}
}

// Load always returns ErrNotFound.
func (NullPersister) Load(context.Context, string) ([]byte, error) {
	return nil, ErrNotFound
}

// Save does nothing.
func (NullPersister) Save(context.Context, string, []byte) error {
	return nil
}

// Close does nothing.
func (NullPersister) Close() error {
	return nil
}

var _ Persister = NullPersister{}
