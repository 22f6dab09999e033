package enrich

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/quarkusio/extensions-enricher/pkg/cache"
	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
)

// fakeFetcher answers every request with the data registered for its repo
// and records the requests.
type fakeFetcher struct {
	mu       sync.Mutex
	data     map[string]*github.RepoData
	requests []github.FetchRequest
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{data: make(map[string]*github.RepoData)}
}

func (f *fakeFetcher) respond(repo string, d *github.RepoData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[repo] = d
}

func (f *fakeFetcher) Fetch(_ context.Context, r github.FetchRequest) *github.RepoData {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
	if _, ok := github.BuildRepoQuery(r); !ok {
		return nil
	}
	return f.data[r.Repo.String()]
}

func (f *fakeFetcher) last() github.FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeContent struct {
	files map[string]string
	err   error
}

func (f *fakeContent) RawFile(_ context.Context, owner, repo, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.files[owner+"/"+repo+"/"+path], nil
}

type fakeListing struct {
	entries []github.TreeEntry
	err     error
}

func (f *fakeListing) ExtensionsListing(context.Context, github.RepoCoordinate) ([]github.TreeEntry, error) {
	return f.entries, f.err
}

type fakeFinder struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeFinder) Sponsors(_ context.Context, owner, project, path string) []string {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	return []string{"Acme Corp"}
}

func (f *fakeFinder) Contributors(context.Context, string, string, string) []catalog.Contributor {
	return []catalog.Contributor{{Name: "Ada", Login: "ada", Contributions: 3, URL: "https://github.com/ada"}}
}

type fakeImages struct {
	err error
}

func (f *fakeImages) Fetch(_ context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "/tmp/images/social.png", nil
}

var errBoom = errors.New("boom")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	fetcher   *fakeFetcher
	repos     *cache.Store[github.RepoData]
	locations *cache.Store[Location]
	clock     *clock
	enricher  *Enricher
}

func newHarness(t testing.TB, mutate func(*Options)) *harness {
	t.Helper()
	logger := log.New(io.Discard)
	clk := &clock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	h := &harness{
		fetcher:   newFakeFetcher(),
		repos:     cache.NewStore[github.RepoData](cache.RepoCacheName, cache.RepoCacheTTL, nil, cache.WithLogger(logger), cache.WithClock(clk.Now)),
		locations: cache.NewStore[Location](cache.LocationCacheName, cache.LocationCacheTTL, nil, cache.WithLogger(logger), cache.WithClock(clk.Now)),
		clock:     clk,
	}
	opts := Options{
		Fetcher:   h.fetcher,
		Repos:     h.repos,
		Locations: h.locations,
		Logger:    logger,
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.enricher = New(opts)

	ctx := context.Background()
	if err := h.enricher.Ready(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.enricher.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	return h
}

func node(sourceControl, groupID, artifactID string) catalog.Node {
	n := catalog.Node{ID: artifactID, Metadata: catalog.Metadata{SourceControl: sourceControl}}
	if artifactID != "" {
		n.Metadata.Maven = &catalog.Maven{GroupID: groupID, ArtifactID: artifactID}
	}
	return n
}

func tree(paths ...string) *github.Tree {
	t := &github.Tree{}
	for _, p := range paths {
		t.Entries = append(t.Entries, github.TreeEntry{Path: p})
	}
	return t
}
