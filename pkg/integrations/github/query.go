package github

import (
	"fmt"
	"strings"
)

// Kinds of repository query, reported through observability hooks.
const (
	QueryFull    = "full"
	QueryIssues  = "issues"
	QueryListing = "listing"
	QueryNone    = "none"
)

// FetchRequest describes what is already known about a repository so that
// only the missing pieces are queried.
type FetchRequest struct {
	Repo RepoCoordinate

	// Labels restricts the open issue count to issues carrying these labels.
	Labels []string

	// UsableCache is true when the cached record carries an owner avatar,
	// the marker of a complete earlier fetch.
	UsableCache bool

	// NeedListing is true while the extension descriptor location is not
	// cached for this artifact.
	NeedListing bool

	ArtifactID string
}

// Kind classifies the query BuildRepoQuery will produce.
func (r FetchRequest) Kind() string {
	switch {
	case !r.UsableCache:
		return QueryFull
	case len(r.Labels) > 0:
		return QueryIssues
	case r.NeedListing:
		return QueryListing
	default:
		return QueryNone
	}
}

// ShortArtifactID drops the "<repo>-" part of an artifact id, the folder
// name multi-extension repositories tend to use.
func ShortArtifactID(artifactID, repoName string) string {
	return strings.Replace(artifactID, repoName+"-", "", 1)
}

// BuildRepoQuery composes the smallest query that fills in what r lacks.
// It returns false when nothing needs to be fetched.
//
//	no usable cache        -> issues, listing (if needed), social image, avatar
//	usable cache + labels  -> label-filtered issues, listing (if needed)
//	usable cache + listing -> listing only
//	usable cache otherwise -> no query
func BuildRepoQuery(r FetchRequest) (string, bool) {
	var fields []string
	switch r.Kind() {
	case QueryFull:
		fields = append(fields, issuesField(r.Labels))
		if r.NeedListing {
			fields = append(fields, listingFields(r)...)
		}
		fields = append(fields, "openGraphImageUrl")
	case QueryIssues:
		fields = append(fields, issuesField(r.Labels))
		if r.NeedListing {
			fields = append(fields, listingFields(r)...)
		}
	case QueryListing:
		fields = append(fields, listingFields(r)...)
	default:
		return "", false
	}

	var b strings.Builder
	b.WriteString("query {\n")
	fmt.Fprintf(&b, "  repository(owner: %s, name: %s) {\n", quote(r.Repo.Owner), quote(r.Repo.Name))
	for _, f := range fields {
		b.WriteString("    ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("  }\n")
	if r.Kind() == QueryFull {
		fmt.Fprintf(&b, "  repositoryOwner(login: %s) {\n    avatarUrl\n  }\n", quote(r.Repo.Owner))
	}
	b.WriteString("}")
	return b.String(), true
}

func issuesField(labels []string) string {
	if len(labels) == 0 {
		return "issues(states: OPEN) { totalCount }"
	}
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = quote(l)
	}
	return fmt.Sprintf("issues(states: OPEN, filterBy: { labels: [%s] }) { totalCount }", strings.Join(quoted, ", "))
}

func listingFields(r FetchRequest) []string {
	fields := []string{
		"defaultBranchRef { name }",
		treeField("metaInfs", MetaInfDir),
	}
	if r.ArtifactID != "" {
		short := ShortArtifactID(r.ArtifactID, r.Repo.Name)
		fields = append(fields,
			treeField("subfolderMetaInfs", r.ArtifactID+"/"+MetaInfDir),
			treeField("shortenedSubfolderMetaInfs", short+"/"+MetaInfDir),
			treeField("quarkusSubfolderMetaInfs", "extensions/"+short+"/"+MetaInfDir),
		)
	}
	return fields
}

func treeField(alias, dir string) string {
	return fmt.Sprintf("%s: object(expression: %s) { ... on Tree { entries { path } } }", alias, quote("HEAD:"+dir))
}
