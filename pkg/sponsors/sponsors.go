// Package sponsors works out who contributes to an extension and which
// companies sponsor it, from the commit history of its directory.
package sponsors

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/quarkusio/extensions-enricher/pkg/cache"
	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
)

// Defaults for [Options].
const (
	DefaultMinSharePercent = 25
	DefaultMinContributors = 1
	DefaultWindow          = 365 * 24 * time.Hour
)

// Finder reports the contributors and sponsors of an extension.
// Implementations absorb their failures and return empty results.
type Finder interface {
	Sponsors(ctx context.Context, owner, project, path string) []string
	Contributors(ctx context.Context, owner, project, path string) []catalog.Contributor
}

// HistorySource lists the authors of recent commits. [github.GraphQLClient]
// implements it.
type HistorySource interface {
	History(ctx context.Context, repo github.RepoCoordinate, path string, since time.Time) ([]github.CommitAuthor, error)
}

// Result is the cached outcome of one history lookup.
type Result struct {
	Contributors []catalog.Contributor `json:"contributors,omitempty"`
	Sponsors     []string              `json:"sponsors,omitempty"`
}

// Options configures a [GitHubFinder].
type Options struct {
	History HistorySource

	// Cache holds results between runs. Nil means an unpersisted store.
	Cache *cache.Store[Result]

	// A company sponsors an extension when its employees made at least
	// MinSharePercent of the commits and there are at least MinContributors
	// of them.
	MinSharePercent float64
	MinContributors int

	// CompanyAliases maps normalized, lower-cased company names onto the
	// name to report, folding spellings like "redhat" and "Red Hat, Inc.".
	CompanyAliases map[string]string

	// Window is how far back history is read.
	Window time.Duration

	Logger *log.Logger
	Now    func() time.Time
}

// GitHubFinder derives contributors and sponsors from GitHub commit history.
type GitHubFinder struct {
	opts    Options
	cache   *cache.Store[Result]
	flights singleflight.Group
}

// NewGitHubFinder creates a finder, filling unset options with defaults.
func NewGitHubFinder(opts Options) *GitHubFinder {
	if opts.MinSharePercent <= 0 {
		opts.MinSharePercent = DefaultMinSharePercent
	}
	if opts.MinContributors <= 0 {
		opts.MinContributors = DefaultMinContributors
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	store := opts.Cache
	if store == nil {
		store = cache.NewStore[Result](cache.ContributorCacheName, cache.ContributorCacheTTL, nil, cache.WithLogger(opts.Logger))
	}
	return &GitHubFinder{opts: opts, cache: store}
}

// Ready loads the result cache.
func (f *GitHubFinder) Ready(ctx context.Context) error {
	if err := f.cache.Ready(ctx); err != nil {
		return err
	}
	f.opts.Logger.Info("Ingested cached contributor results", "count", f.cache.Size())
	return nil
}

// Persist saves the result cache.
func (f *GitHubFinder) Persist(ctx context.Context) error {
	err := f.cache.Persist(ctx)
	if err == nil {
		f.opts.Logger.Info("Persisted contributor results", "count", f.cache.Size())
	}
	return err
}

// FlushAll clears the in-memory results.
func (f *GitHubFinder) FlushAll() {
	f.cache.FlushAll()
}

// Sponsors returns the sponsoring companies, most active first.
func (f *GitHubFinder) Sponsors(ctx context.Context, owner, project, path string) []string {
	return f.lookup(ctx, owner, project, path).Sponsors
}

// Contributors returns the contributors, most active first.
func (f *GitHubFinder) Contributors(ctx context.Context, owner, project, path string) []catalog.Contributor {
	return f.lookup(ctx, owner, project, path).Contributors
}

func (f *GitHubFinder) lookup(ctx context.Context, owner, project, path string) Result {
	key := owner + "/" + project + "/" + path
	if r, ok := f.cache.Get(key); ok {
		return r
	}

	v, _, _ := f.flights.Do(key, func() (any, error) {
		if r, ok := f.cache.Get(key); ok {
			return r, nil
		}
		since := f.opts.Now().Add(-f.opts.Window)
		authors, err := f.opts.History.History(ctx, github.RepoCoordinate{Owner: owner, Name: project}, path, since)
		if err != nil {
			f.opts.Logger.Warn("could not read commit history", "repo", owner+"/"+project, "path", path, "err", err)
			return Result{}, nil
		}
		r := f.summarize(authors)
		f.cache.Set(key, r)
		return r, nil
	})
	return v.(Result)
}

type company struct {
	name          string
	contributions int
	people        map[string]bool
}

func (f *GitHubFinder) summarize(authors []github.CommitAuthor) Result {
	byLogin := make(map[string]*catalog.Contributor)
	byCompany := make(map[string]*company)
	total := 0

	for _, a := range authors {
		if a.Login == "" || strings.HasSuffix(a.Login, "[bot]") {
			continue
		}
		total++

		c, ok := byLogin[a.Login]
		if !ok {
			c = &catalog.Contributor{Name: a.Name, Login: a.Login, URL: a.URL}
			byLogin[a.Login] = c
		}
		c.Contributions++

		name := f.normalizeCompany(a.Company)
		if name == "" {
			continue
		}
		co, ok := byCompany[name]
		if !ok {
			co = &company{name: name, people: make(map[string]bool)}
			byCompany[name] = co
		}
		co.contributions++
		co.people[a.Login] = true
	}

	var r Result
	for _, c := range byLogin {
		r.Contributors = append(r.Contributors, *c)
	}
	slices.SortFunc(r.Contributors, func(a, b catalog.Contributor) int {
		return cmp.Or(cmp.Compare(b.Contributions, a.Contributions), cmp.Compare(a.Login, b.Login))
	})

	var sponsors []*company
	for _, co := range byCompany {
		share := 100 * float64(co.contributions) / float64(total)
		if share >= f.opts.MinSharePercent && len(co.people) >= f.opts.MinContributors {
			sponsors = append(sponsors, co)
		}
	}
	slices.SortFunc(sponsors, func(a, b *company) int {
		return cmp.Or(cmp.Compare(b.contributions, a.contributions), cmp.Compare(a.name, b.name))
	})
	for _, co := range sponsors {
		r.Sponsors = append(r.Sponsors, co.name)
	}
	return r
}

func (f *GitHubFinder) normalizeCompany(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "@")
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if alias, ok := f.opts.CompanyAliases[strings.ToLower(name)]; ok {
		return alias
	}
	return name
}

var _ Finder = (*GitHubFinder)(nil)
