// Package config loads the enricher configuration from a TOML file and the
// environment.
//
// Precedence, lowest first: [Default], the config file, environment
// variables (GITHUB_TOKEN, ENRICHER_CACHE_DIR), command-line flags.
//
//	[github]
//	requests_per_hour = 5000
//
//	[cache]
//	backend = "sqlite"
//	repo_ttl = "72h"
//
//	[sponsors]
//	min_share_percent = 25
//	[sponsors.company_aliases]
//	"redhat" = "Red Hat"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/quarkusio/extensions-enricher/pkg/cache"
	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
	"github.com/quarkusio/extensions-enricher/pkg/sponsors"
)

const appName = "enricher"

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Output sinks.
const (
	SinkJSON  = "json"
	SinkMongo = "mongo"
)

// Duration is a time.Duration written as a string such as "72h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete enricher configuration.
type Config struct {
	GitHub   GitHub   `toml:"github"`
	Cache    Cache    `toml:"cache"`
	Enrich   Enrich   `toml:"enrich"`
	Sponsors Sponsors `toml:"sponsors"`
	Images   Images   `toml:"images"`
	Output   Output   `toml:"output"`
	Serve    Serve    `toml:"serve"`
}

// GitHub configures API access.
type GitHub struct {
	Token           string `toml:"token"`
	GraphQLURL      string `toml:"graphql_url"`
	APIURL          string `toml:"api_url"`
	RequestsPerHour int    `toml:"requests_per_hour"`
	CanonicalRepo   string `toml:"canonical_repo"`
}

// Cache selects and tunes the cache backend.
type Cache struct {
	Backend        string   `toml:"backend"`
	Dir            string   `toml:"dir"`
	SQLitePath     string   `toml:"sqlite_path"`
	RedisAddr      string   `toml:"redis_addr"`
	RedisPassword  string   `toml:"redis_password"`
	RedisDB        int      `toml:"redis_db"`
	RedisPrefix    string   `toml:"redis_prefix"`
	RepoTTL        Duration `toml:"repo_ttl"`
	LocationTTL    Duration `toml:"location_ttl"`
	ContributorTTL Duration `toml:"contributor_ttl"`
}

// Enrich tunes the orchestrator.
type Enrich struct {
	NodeType string `toml:"node_type"`
	// Concurrency caps parallel entries; 0 means unbounded.
	Concurrency int `toml:"concurrency"`
}

// Sponsors tunes sponsor detection.
type Sponsors struct {
	MinSharePercent float64           `toml:"min_share_percent"`
	MinContributors int               `toml:"min_contributors"`
	Window          Duration          `toml:"window"`
	CompanyAliases  map[string]string `toml:"company_aliases"`
}

// Images configures social image downloads.
type Images struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// Output selects where records go.
type Output struct {
	Sink            string `toml:"sink"`
	MongoURL        string `toml:"mongo_url"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Serve configures the read API.
type Serve struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cacheDir := DefaultCacheDir()
	return &Config{
		GitHub: GitHub{
			RequestsPerHour: 5000,
			CanonicalRepo:   "https://github.com/quarkusio/quarkus",
		},
		Cache: Cache{
			Backend:        BackendFile,
			Dir:            cacheDir,
			SQLitePath:     filepath.Join(cacheDir, "cache.db"),
			RedisAddr:      "localhost:6379",
			RedisPrefix:    cache.DefaultRedisPrefix,
			RepoTTL:        Duration{cache.RepoCacheTTL},
			LocationTTL:    Duration{cache.LocationCacheTTL},
			ContributorTTL: Duration{cache.ContributorCacheTTL},
		},
		Enrich: Enrich{NodeType: catalog.DefaultNodeType},
		Sponsors: Sponsors{
			MinSharePercent: sponsors.DefaultMinSharePercent,
			MinContributors: sponsors.DefaultMinContributors,
			Window:          Duration{sponsors.DefaultWindow},
		},
		Images: Images{Dir: filepath.Join(cacheDir, "images")},
		Output: Output{Sink: SinkJSON, MongoDatabase: appName},
		Serve:  Serve{Addr: ":8080"},
	}
}

// DefaultCacheDir returns the cache directory following XDG conventions.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", appName, "config.toml")
	}
	return ""
}

// Load reads path over the defaults and applies the environment. An empty
// path loads the default file if it exists; a missing explicit path is an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case errors.Is(err, os.ErrNotExist):
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		default:
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("ENRICHER_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
		c.Cache.SQLitePath = filepath.Join(v, "cache.db")
		c.Images.Dir = filepath.Join(v, "images")
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	backends := []string{BackendFile, BackendSQLite, BackendRedis, BackendNone}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.backend %q must be one of %v", c.Cache.Backend, backends)
	}
	if c.Cache.Backend == BackendFile && c.Cache.Dir == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.dir is required for the file backend")
	}
	if c.Cache.Backend == BackendSQLite && c.Cache.SQLitePath == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.sqlite_path is required for the sqlite backend")
	}
	for name, d := range map[string]Duration{
		"cache.repo_ttl":        c.Cache.RepoTTL,
		"cache.location_ttl":    c.Cache.LocationTTL,
		"cache.contributor_ttl": c.Cache.ContributorTTL,
		"sponsors.window":       c.Sponsors.Window,
	} {
		if d.Duration <= 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "%s must be positive, got %s", name, d.Duration)
		}
	}
	if c.Enrich.Concurrency < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "enrich.concurrency must not be negative")
	}
	if c.Sponsors.MinSharePercent <= 0 || c.Sponsors.MinSharePercent > 100 {
		return errs.New(errs.ErrCodeInvalidConfig, "sponsors.min_share_percent must be in (0, 100]")
	}
	if c.GitHub.RequestsPerHour < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "github.requests_per_hour must not be negative")
	}
	if c.Output.Sink != SinkJSON && c.Output.Sink != SinkMongo {
		return errs.New(errs.ErrCodeInvalidConfig, "output.sink %q must be %q or %q", c.Output.Sink, SinkJSON, SinkMongo)
	}
	if c.Output.Sink == SinkMongo && c.Output.MongoURL == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "output.mongo_url is required for the mongo sink")
	}
	if err := errs.ValidateURL(c.GitHub.CanonicalRepo); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "github.canonical_repo")
	}
	return nil
}

// String renders the configuration as TOML with the token masked.
func (c *Config) String() string {
	masked := *c
	if masked.GitHub.Token != "" {
		masked.GitHub.Token = "********"
	}
	if masked.Cache.RedisPassword != "" {
		masked.Cache.RedisPassword = "********"
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
