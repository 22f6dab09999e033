// Package github talks to the GitHub APIs on behalf of the enricher.
//
// # Repository metadata
//
// [MetadataFetcher] issues one GraphQL query per catalog entry, composed by
// [BuildRepoQuery] from what the caller already has cached. A cold cache
// gets the full query; a warm one asks only for label-filtered issue counts
// or the descriptor listing, or skips the network entirely.
//
// The descriptor location is discovered by probing four candidate META-INF
// directories in the same query:
//
//	runtime/src/main/resources/META-INF/
//	<artifactId>/runtime/src/main/resources/META-INF/
//	<short artifactId>/runtime/src/main/resources/META-INF/
//	extensions/<short artifactId>/runtime/src/main/resources/META-INF/
//
// [ExtensionFiles] unions the listings. Failed queries never surface as
// errors from [MetadataFetcher.Fetch]; the caller keeps its cached values.
//
// # Bootstrap data
//
// [GraphQLClient.ExtensionsListing] reads the two-level extensions/ tree of
// the canonical repository and [ContentClient.RawFile] reads its bot
// configuration. Both are called once per run and their errors propagate.
//
// # Contributors
//
// [GraphQLClient.History] walks the commit history of a path and reports
// the GitHub account behind each commit.
package github
