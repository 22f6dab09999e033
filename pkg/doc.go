// Package pkg provides the libraries behind the extensions enricher.
//
// # Overview
//
// The enricher reads extension catalog entries, looks up each entry's source
// repository on GitHub and emits one source-control record per entry. The
// packages are organized in three layers:
//
//  1. Domain: [catalog] (inbound nodes, emitted records), [labels] (triage
//     bot labels), [sponsors] (contributors and sponsoring companies) and
//     [enrich] (the per-entry orchestration).
//  2. Infrastructure: [cache] (TTL stores with file, SQLite, Redis or no
//     persistence), [images] (social image downloads), [sink] (JSON and
//     MongoDB record output) and [config].
//  3. Integrations: [integrations] (shared HTTP client with auth, rate
//     limiting and retries) and [integrations/github] (GraphQL queries,
//     repository contents, commit history).
//
// # Data Flow
//
//	catalog nodes
//	      ↓
//	[enrich] Bootstrap (bot config + extensions listing → labels)
//	      ↓
//	[enrich] Enrich per node ── [cache] hit? ── [integrations/github] query
//	      ↓                                        ↓
//	[sponsors], [images]                     merge over cached data
//	      ↓
//	[sink] records
//
// # Quick Start
//
//	e := enrich.New(enrich.Options{
//	    Fetcher: github.NewMetadataFetcher(gql, logger),
//	    Content: content,
//	    Listing: gql,
//	})
//	if err := e.Ready(ctx); err != nil { ... }
//	defer e.Persist(context.WithoutCancel(ctx))
//	if err := e.Bootstrap(ctx); err != nil { ... }
//	records, err := e.EnrichAll(ctx, nodes)
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [catalog]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/catalog
// [labels]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/labels
// [sponsors]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/sponsors
// [enrich]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/enrich
// [cache]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/cache
// [images]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/images
// [sink]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/sink
// [config]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/config
// [integrations]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/integrations
// [integrations/github]: https://pkg.go.dev/github.com/quarkusio/extensions-enricher/pkg/integrations/github
package pkg
