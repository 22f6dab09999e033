// Package cache provides the named, TTL-bounded stores that let repeated
// enrichment runs skip most GitHub requests.
//
// A [Store] holds typed entries in memory and is loaded from, and flushed
// to, a [Persister] at the start and end of a run:
//
//	p, _ := cache.NewFilePersister(dir)
//	repos := cache.NewStore[RepoData](cache.RepoCacheName, cache.RepoCacheTTL, p)
//	_ = repos.Ready(ctx)
//	defer repos.Persist(ctx)
//
// Persisters exist for a plain directory ([FilePersister]), a SQLite
// database ([SQLitePersister]), Redis ([RedisPersister]), and no storage at
// all ([NullPersister]).
package cache
