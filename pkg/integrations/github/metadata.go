package github

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/quarkusio/extensions-enricher/pkg/observability"
)

// Querier runs a GraphQL query. [GraphQLClient] implements it.
type Querier interface {
	Query(ctx context.Context, query string, v any) error
}

// MetadataFetcher retrieves repository metadata with the minimal query for
// what the caller already has cached.
type MetadataFetcher struct {
	q      Querier
	logger *log.Logger
}

// NewMetadataFetcher creates a fetcher. A nil logger means log.Default().
func NewMetadataFetcher(q Querier, logger *log.Logger) *MetadataFetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &MetadataFetcher{q: q, logger: logger}
}

// Fetch queries GitHub for the fields r lacks. It returns nil when no query
// was needed or the query failed; failures are logged, never returned, so
// callers fall back to cached values. Data that arrived alongside GraphQL
// errors is still returned.
func (f *MetadataFetcher) Fetch(ctx context.Context, r FetchRequest) *RepoData {
	observability.Enrich().OnQuery(ctx, r.Repo.String(), r.Kind())

	query, ok := BuildRepoQuery(r)
	if !ok {
		return nil
	}

	var data RepoData
	err := f.q.Query(ctx, query, &data)
	if err != nil {
		var qe *QueryError
		if errors.As(err, &qe) && (data.Repository != nil || data.RepositoryOwner != nil) {
			f.logger.Debug("partial repository data", "repo", r.Repo, "err", err)
			return &data
		}
		f.logger.Warn("could not fetch repository data", "repo", r.Repo, "err", err)
		return nil
	}
	return &data
}
