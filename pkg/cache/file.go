package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FilePersister keeps one JSON snapshot per cache name in a directory.
// Writes go to a temporary file that is renamed into place, so a crash
// mid-write leaves the previous snapshot intact.
type FilePersister struct {
	dir string
}

// NewFilePersister creates a file persister rooted at dir.
// The directory will be created if it doesn't exist.
func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

// Dir returns the directory holding the snapshots.
func (p *FilePersister) Dir() string { return p.dir }

// Path returns the snapshot file for name.
func (p *FilePersister) Path(name string) string {
	return filepath.Join(p.dir, name+".json")
}

// Load reads the snapshot for name.
func (p *FilePersister) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(p.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save atomically replaces the snapshot for name.
func (p *FilePersister) Save(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(p.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p.Path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Remove deletes the snapshot for name. A missing snapshot is not an error.
func (p *FilePersister) Remove(_ context.Context, name string) error {
	err := os.Remove(p.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Close does nothing for file persister.
func (p *FilePersister) Close() error {
	return nil
}

var _ Persister = (*FilePersister)(nil)
