// Package cli implements the enricher command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/quarkusio/extensions-enricher/pkg/buildinfo"
	"github.com/quarkusio/extensions-enricher/pkg/cache"
	"github.com/quarkusio/extensions-enricher/pkg/config"
	"github.com/quarkusio/extensions-enricher/pkg/enrich"
	"github.com/quarkusio/extensions-enricher/pkg/images"
	"github.com/quarkusio/extensions-enricher/pkg/integrations"
	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
	"github.com/quarkusio/extensions-enricher/pkg/sponsors"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "enricher"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag; empty means the default location.
	ConfigPath string
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Wiring
// =============================================================================

// openPersister returns the snapshot storage selected by cfg.
func openPersister(ctx context.Context, cfg *config.Config, noCache bool) (cache.Persister, error) {
	if noCache {
		return cache.NewNullPersister(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullPersister(), nil
	case config.BackendSQLite:
		return cache.NewSQLitePersister(cfg.Cache.SQLitePath)
	case config.BackendRedis:
		return cache.NewRedisPersister(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.RedisPrefix,
		})
	default:
		return cache.NewFilePersister(cfg.Cache.Dir)
	}
}

// limiter spreads requestsPerHour evenly, allowing short bursts.
func limiter(requestsPerHour int) *rate.Limiter {
	if requestsPerHour <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600), 10)
}

// stack is everything an enrichment run needs, built from the config.
type stack struct {
	enricher  *enrich.Enricher
	persister cache.Persister
}

// Close closes the persister shared by every cache store, once.
func (s *stack) Close() error {
	return s.persister.Close()
}

// newStack wires clients, caches and collaborators for an enrichment run.
func (c *CLI) newStack(ctx context.Context, cfg *config.Config, noCache bool) (*stack, error) {
	p, err := openPersister(ctx, cfg, noCache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	lim := limiter(cfg.GitHub.RequestsPerHour)
	hc := integrations.NewAuthHTTPClient(ctx, cfg.GitHub.Token)
	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}

	api := integrations.NewClient(headers, integrations.WithHTTPClient(hc), integrations.WithLimiter(lim))
	gql := github.NewGraphQLClient(api, cfg.GitHub.GraphQLURL)

	content := github.NewContentClient(hc, lim)
	if cfg.GitHub.APIURL != "" {
		if content, err = content.WithBaseURL(cfg.GitHub.APIURL); err != nil {
			p.Close()
			return nil, err
		}
	}

	storeOpts := []cache.Option{cache.WithLogger(c.Logger)}
	finder := sponsors.NewGitHubFinder(sponsors.Options{
		History:         gql,
		Cache:           cache.NewStore[sponsors.Result](cache.ContributorCacheName, cfg.Cache.ContributorTTL.Duration, p, storeOpts...),
		MinSharePercent: cfg.Sponsors.MinSharePercent,
		MinContributors: cfg.Sponsors.MinContributors,
		CompanyAliases:  cfg.Sponsors.CompanyAliases,
		Window:          cfg.Sponsors.Window.Duration,
		Logger:          c.Logger,
	})

	opts := enrich.Options{
		Fetcher:     github.NewMetadataFetcher(gql, c.Logger),
		Content:     content,
		Listing:     gql,
		Repos:       cache.NewStore[github.RepoData](cache.RepoCacheName, cfg.Cache.RepoTTL.Duration, p, storeOpts...),
		Locations:   cache.NewStore[enrich.Location](cache.LocationCacheName, cfg.Cache.LocationTTL.Duration, p, storeOpts...),
		Sponsors:    finder,
		Canonical:   cfg.GitHub.CanonicalRepo,
		NodeType:    cfg.Enrich.NodeType,
		Concurrency: cfg.Enrich.Concurrency,
		Logger:      c.Logger,
	}
	if !cfg.Images.Disabled {
		// Images come from a CDN, so they skip the API limiter and token.
		downloader := integrations.NewClient(headers)
		store, err := images.NewStore(cfg.Images.Dir, downloader, c.Logger)
		if err != nil {
			p.Close()
			return nil, err
		}
		opts.Images = store
	}

	return &stack{enricher: enrich.New(opts), persister: p}, nil
}
