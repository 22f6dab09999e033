// Package enrich attaches GitHub source-control information to catalog
// entries.
//
// For each entry that names a source repository, an [Enricher] works out the
// repository coordinates, resolves issue labels for extensions living in the
// canonical repository, fetches only the repository fields its caches lack,
// locates the extension descriptor, looks up contributors and sponsors, and
// emits a [catalog.SourceControlInfo] keyed by the entry's source-control
// identifier.
//
// # Lifecycle
//
//	e := enrich.New(opts)
//	_ = e.Ready(ctx)         // load caches
//	err := e.Bootstrap(ctx)  // canonical-repo label rules
//	recs, err := e.EnrichAll(ctx, nodes)
//	_ = e.Persist(ctx)       // always, even after a failed run
//
// Remote failures during enrichment never fail an entry: the record is built
// from whatever the caches and the successful calls provided.
package enrich
