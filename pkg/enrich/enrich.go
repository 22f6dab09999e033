package enrich

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/quarkusio/extensions-enricher/pkg/cache"
	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
	"github.com/quarkusio/extensions-enricher/pkg/images"
	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
	"github.com/quarkusio/extensions-enricher/pkg/labels"
	"github.com/quarkusio/extensions-enricher/pkg/observability"
	"github.com/quarkusio/extensions-enricher/pkg/sponsors"
)

// DefaultCanonicalRepo is the repository whose extensions get issue labels.
const DefaultCanonicalRepo = "https://github.com/quarkusio/quarkus"

// ErrNotBootstrapped is returned by Enrich before a successful Bootstrap.
var ErrNotBootstrapped = errors.New("enricher not bootstrapped")

// Fetcher retrieves the repository fields a request lacks.
// [github.MetadataFetcher] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, r github.FetchRequest) *github.RepoData
}

// ContentSource reads a file from a repository. [github.ContentClient]
// implements it.
type ContentSource interface {
	RawFile(ctx context.Context, owner, repo, path string) (string, error)
}

// ListingSource lists the extensions tree of a repository.
// [github.GraphQLClient] implements it.
type ListingSource interface {
	ExtensionsListing(ctx context.Context, repo github.RepoCoordinate) ([]github.TreeEntry, error)
}

// Location is where an artifact's extension descriptor lives.
type Location struct {
	ExtensionYamlURL    string `json:"extensionYamlUrl"`
	ExtensionPathInRepo string `json:"extensionPathInRepo"`
	ExtensionRootURL    string `json:"extensionRootUrl"`
}

// Options configures an [Enricher]. Only Fetcher is required.
type Options struct {
	Fetcher Fetcher
	Content ContentSource
	Listing ListingSource

	// Repos caches repository data by source-control URL. Nil means an
	// unpersisted store.
	Repos *cache.Store[github.RepoData]

	// Locations caches descriptor locations by "groupId:artifactId".
	Locations *cache.Store[Location]

	// Sponsors is optional; without it records carry no sponsors or
	// contributors.
	Sponsors sponsors.Finder

	// Images is optional; without it social images are not downloaded and
	// records carry no project image.
	Images images.Fetcher

	// Canonical is the repository whose extensions get labels.
	Canonical string

	// NodeType selects which catalog entries are enriched.
	NodeType string

	// Concurrency caps the entries processed at once by EnrichAll.
	// Zero means no cap.
	Concurrency int

	Logger *log.Logger
}

// Stats counts what an Enricher has done since it was created.
type Stats struct {
	Enriched  int64
	Skipped   int64
	NonGitHub int64
}

// Enricher runs the enrichment pipeline for catalog entries. It is safe for
// concurrent use once bootstrapped.
type Enricher struct {
	opts      Options
	repos     *cache.Store[github.RepoData]
	locations *cache.Store[Location]
	logger    *log.Logger

	labels atomic.Pointer[labels.Extractor]

	enriched, skipped, nonGitHub atomic.Int64
}

// lifecycle is implemented by collaborators with their own persistent state.
type lifecycle interface {
	Ready(ctx context.Context) error
	Persist(ctx context.Context) error
	FlushAll()
}

// New creates an enricher, filling unset options with defaults.
func New(opts Options) *Enricher {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Canonical == "" {
		opts.Canonical = DefaultCanonicalRepo
	}
	if opts.NodeType == "" {
		opts.NodeType = catalog.DefaultNodeType
	}
	repos := opts.Repos
	if repos == nil {
		repos = cache.NewStore[github.RepoData](cache.RepoCacheName, cache.RepoCacheTTL, nil, cache.WithLogger(opts.Logger))
	}
	locations := opts.Locations
	if locations == nil {
		locations = cache.NewStore[Location](cache.LocationCacheName, cache.LocationCacheTTL, nil, cache.WithLogger(opts.Logger))
	}
	return &Enricher{
		opts:      opts,
		repos:     repos,
		locations: locations,
		logger:    opts.Logger,
	}
}

// Ready loads the caches.
func (e *Enricher) Ready(ctx context.Context) error {
	if err := e.repos.Ready(ctx); err != nil {
		return err
	}
	e.logger.Infof("Ingested %d cached repositories.", e.repos.Size())

	if err := e.locations.Ready(ctx); err != nil {
		return err
	}
	e.logger.Infof("Ingested %d cached metadata file locations.", e.locations.Size())

	if l, ok := e.opts.Sponsors.(lifecycle); ok {
		return l.Ready(ctx)
	}
	return nil
}

// Persist saves the caches. Every cache is attempted; the errors are joined.
func (e *Enricher) Persist(ctx context.Context) error {
	var errList []error
	if err := e.repos.Persist(ctx); err != nil {
		errList = append(errList, err)
	} else {
		e.logger.Infof("Persisted %d cached repositories.", e.repos.Size())
	}
	if err := e.locations.Persist(ctx); err != nil {
		errList = append(errList, err)
	} else {
		e.logger.Infof("Persisted %d cached metadata file locations.", e.locations.Size())
	}
	if l, ok := e.opts.Sponsors.(lifecycle); ok {
		if err := l.Persist(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// FlushAll clears every in-memory cache without touching storage.
func (e *Enricher) FlushAll() {
	e.repos.FlushAll()
	e.locations.FlushAll()
	if l, ok := e.opts.Sponsors.(lifecycle); ok {
		l.FlushAll()
	}
}

// Stats returns a snapshot of the counters.
func (e *Enricher) Stats() Stats {
	return Stats{
		Enriched:  e.enriched.Load(),
		Skipped:   e.skipped.Load(),
		NonGitHub: e.nonGitHub.Load(),
	}
}

// Bootstrap loads the triage bot configuration and the extensions listing
// of the canonical repository and builds the label resolver. A missing bot
// configuration yields no labels; any other failure is returned.
func (e *Enricher) Bootstrap(ctx context.Context) error {
	coord, ok := github.ParseRepoURL(e.opts.Canonical)
	if !ok {
		return errs.New(errs.ErrCodeInvalidConfig, "canonical repository %q is not a GitHub URL", e.opts.Canonical)
	}

	var botYAML string
	if e.opts.Content != nil {
		text, err := e.opts.Content.RawFile(ctx, coord.Owner, coord.Name, labels.BotConfigPath)
		if err != nil {
			return errs.Wrap(errs.ErrCodeBootstrap, err, "fetch %s", labels.BotConfigPath)
		}
		botYAML = text
	}

	var listing []github.TreeEntry
	if e.opts.Listing != nil {
		l, err := e.opts.Listing.ExtensionsListing(ctx, coord)
		if err != nil {
			return errs.Wrap(errs.ErrCodeBootstrap, err, "list extensions of %s", coord)
		}
		listing = l
	}

	ex, err := labels.Parse(botYAML, listing)
	if err != nil {
		return errs.Wrap(errs.ErrCodeBootstrap, err, "build label resolver")
	}
	e.labels.Store(ex)
	e.logger.Debug("bootstrapped", "repo", coord, "rules", ex.Rules(), "extensions", len(listing))
	return nil
}

// EnrichAll enriches nodes concurrently and returns the records in input
// order, leaving out skipped entries. A failing entry is logged and left
// out; only cancellation or a missing Bootstrap aborts the run.
func (e *Enricher) EnrichAll(ctx context.Context, nodes []catalog.Node) ([]*catalog.SourceControlInfo, error) {
	if e.labels.Load() == nil {
		return nil, ErrNotBootstrapped
	}

	results := make([]*catalog.SourceControlInfo, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	if e.opts.Concurrency > 0 {
		g.SetLimit(e.opts.Concurrency)
	}
	for i, n := range nodes {
		g.Go(func() error {
			rec, err := e.Enrich(gctx, n)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				e.logger.Warn("could not enrich entry", "id", n.ID, "err", err)
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.DeleteFunc(results, func(r *catalog.SourceControlInfo) bool { return r == nil }), nil
}

// Enrich builds the source-control record for one catalog entry. It returns
// nil without error when the entry is not of the configured type or names
// no source repository.
func (e *Enricher) Enrich(ctx context.Context, n catalog.Node) (*catalog.SourceControlInfo, error) {
	ex := e.labels.Load()
	if ex == nil {
		return nil, ErrNotBootstrapped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	typ := n.Type
	if typ == "" {
		typ = catalog.DefaultNodeType
	}
	id := catalog.ParseSourceControlID(n.Metadata.SourceControl)
	if typ != e.opts.NodeType || id.IsZero() {
		e.skipped.Add(1)
		return nil, nil
	}

	key := id.String()
	start := time.Now()
	observability.Enrich().OnEntryStart(ctx, key)

	rec := e.build(ctx, ex, id, n.Artifact())
	rec.Seal(id)

	err := ctx.Err()
	observability.Enrich().OnEntryComplete(ctx, key, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.enriched.Add(1)
	return rec, nil
}

func (e *Enricher) build(ctx context.Context, ex *labels.Extractor, id catalog.SourceControlID, art catalog.ArtifactCoordinate) *catalog.SourceControlInfo {
	scmURL := id.URL

	var lbls []string
	if scmURL == e.opts.Canonical {
		lbls = ex.Labels(art.ArtifactID)
	}

	if !strings.Contains(scmURL, "github.com") {
		e.nonGitHub.Add(1)
		return &catalog.SourceControlInfo{URL: scmURL}
	}
	coord, ok := github.ParseRepoURL(scmURL)
	if !ok {
		e.logger.Warn("unrecognised GitHub URL", "url", scmURL)
		e.nonGitHub.Add(1)
		return &catalog.SourceControlInfo{URL: scmURL}
	}

	rec := &catalog.SourceControlInfo{
		URL:       scmURL,
		Project:   coord.Name,
		Owner:     coord.Owner,
		IssuesURL: issuesURL(scmURL, lbls),
		Labels:    lbls,
	}

	var cached *github.RepoData
	if d, ok := e.repos.Get(scmURL); ok {
		cached = &d
	}
	// Entries without Maven coordinates would all share one key, so their
	// location is derived afresh every time.
	locKey := art.Key()
	cacheLoc := art.GroupID != "" && art.ArtifactID != ""
	var (
		loc    Location
		hasLoc bool
	)
	if cacheLoc {
		loc, hasLoc = e.locations.Get(locKey)
	}

	artifactID := art.ArtifactID
	if artifactID != "" {
		if err := errs.ValidateMavenID(artifactID); err != nil {
			e.logger.Warn("not searching subfolders for artifact", "url", scmURL, "err", err)
			artifactID = ""
		}
	}

	returned := e.opts.Fetcher.Fetch(ctx, github.FetchRequest{
		Repo:        coord,
		Labels:      lbls,
		UsableCache: cached.OwnerAvatarURL() != "",
		NeedListing: !hasLoc,
		ArtifactID:  artifactID,
	})

	data := mergeRepoData(cached, returned)
	e.repos.Set(scmURL, cacheable(data, len(lbls) > 0))

	repo := data.Repo()
	if repo.Issues != nil {
		issues := repo.Issues.TotalCount
		rec.Issues = &issues
	}
	rec.OwnerImageURL = data.OwnerAvatarURL()

	if !hasLoc {
		if l, ok := locate(scmURL, data); ok {
			if cacheLoc {
				e.locations.Set(locKey, l)
			}
			loc, hasLoc = l, true
		}
	}
	if hasLoc {
		rec.ExtensionYamlURL = loc.ExtensionYamlURL
		rec.ExtensionPathInRepo = loc.ExtensionPathInRepo
		rec.ExtensionRootURL = loc.ExtensionRootURL
	}

	if e.opts.Sponsors != nil {
		rec.Sponsors = e.opts.Sponsors.Sponsors(ctx, coord.Owner, coord.Name, rec.ExtensionPathInRepo)
		rec.Contributors = e.opts.Sponsors.Contributors(ctx, coord.Owner, coord.Name, rec.ExtensionPathInRepo)
	}

	if isCustomizedSocialImage(repo.OpenGraphImageURL) {
		rec.SocialImage = repo.OpenGraphImageURL
	}
	if rec.SocialImage != "" && e.opts.Images != nil {
		local, err := e.opts.Images.Fetch(ctx, rec.SocialImage)
		if err != nil {
			e.logger.Warn("could not download social image", "url", rec.SocialImage, "err", err)
		} else {
			rec.ProjectImage = projectImageName(local)
		}
	}
	return rec
}

// locate finds the single extension descriptor in data. Zero or several
// candidates, or no known default branch, find nothing.
func locate(scmURL string, data *github.RepoData) (Location, bool) {
	files := github.ExtensionFiles(data)
	if len(files) != 1 {
		return Location{}, false
	}
	branch := data.Repo().DefaultBranchRef
	if branch == nil || branch.Name == "" {
		return Location{}, false
	}
	yamlPath := files[0]
	pathInRepo := strings.Replace(yamlPath, github.MetaInfDir+github.MetadataFileName, "", 1)
	return Location{
		ExtensionYamlURL:    scmURL + "/blob/" + branch.Name + "/" + yamlPath,
		ExtensionPathInRepo: pathInRepo,
		ExtensionRootURL:    scmURL + "/blob/" + branch.Name + "/" + pathInRepo,
	}, true
}
