// Package images downloads repository social preview images so the site
// build can crop and serve them locally.
package images

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Fetcher materializes a remote image and returns its local path.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Downloader retrieves a URL. integrations.Client implements it.
type Downloader interface {
	GetBytes(ctx context.Context, url string) ([]byte, string, error)
}

var knownExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Store keeps downloaded images in a directory, named after the last
// segment of their URL. An image already on disk is not downloaded again.
type Store struct {
	dir     string
	client  Downloader
	logger  *log.Logger
	flights singleflight.Group
}

// NewStore creates a store in dir, creating the directory if needed.
func NewStore(dir string, client Downloader, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{dir: dir, client: client, logger: logger}, nil
}

// Dir returns the directory holding the images.
func (s *Store) Dir() string { return s.dir }

// Fetch downloads rawURL unless it is already stored and returns the local
// path. When the URL has no file extension one is added from the response
// Content-Type. Concurrent fetches of one URL share a single download.
func (s *Store) Fetch(ctx context.Context, rawURL string) (string, error) {
	v, err, _ := s.flights.Do(rawURL, func() (any, error) {
		return s.fetch(ctx, rawURL)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Store) fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("image url %q has no file name", rawURL)
	}

	if existing := s.existing(base); existing != "" {
		s.logger.Debug("image already downloaded", "path", existing)
		return existing, nil
	}

	data, contentType, err := s.client.GetBytes(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}

	name := base
	if path.Ext(base) == "" {
		name += extensionFor(contentType)
	}
	dest := filepath.Join(s.dir, name)
	if err := writeFile(dest, data); err != nil {
		return "", err
	}
	s.logger.Debug("downloaded image", "url", rawURL, "path", dest)
	return dest, nil
}

func (s *Store) existing(base string) string {
	p := filepath.Join(s.dir, base)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	if path.Ext(base) != "" {
		return ""
	}
	matches, _ := filepath.Glob(filepath.Join(s.dir, base+".*"))
	for _, m := range matches {
		if !strings.HasSuffix(m, ".tmp") {
			return m
		}
	}
	return ""
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := knownExtensions[mediaType]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// writeFile writes through a uniquely named temp file so concurrent writers
// of one image never rename each other's file away.
func writeFile(dest string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0644)
	}
	if err == nil {
		err = os.Rename(tmp, dest)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

var _ Fetcher = (*Store)(nil)
