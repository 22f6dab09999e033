package github

import "strings"

// Fixed locations of the extension descriptor inside a repository.
const (
	MetaInfDir       = "runtime/src/main/resources/META-INF/"
	MetadataFileName = "quarkus-extension.yaml"
)

// RepoData is the response shape of a repository query. The JSON names match
// the GraphQL aliases, so the same struct is stored in the repository cache.
//
// Every field is optional. A nil field means "not returned", which lets a
// fresh response be merged over a cached one field by field.
type RepoData struct {
	Repository      *Repository      `json:"repository,omitempty"`
	RepositoryOwner *RepositoryOwner `json:"repositoryOwner,omitempty"`
}

// Repository holds the repository-level fields.
type Repository struct {
	Issues           *IssueCount `json:"issues,omitempty"`
	DefaultBranchRef *BranchRef  `json:"defaultBranchRef,omitempty"`

	// Candidate META-INF listings; only MetaInfs is repository-wide.
	MetaInfs                   *Tree `json:"metaInfs,omitempty"`
	SubfolderMetaInfs          *Tree `json:"subfolderMetaInfs,omitempty"`
	ShortenedSubfolderMetaInfs *Tree `json:"shortenedSubfolderMetaInfs,omitempty"`
	QuarkusSubfolderMetaInfs   *Tree `json:"quarkusSubfolderMetaInfs,omitempty"`

	OpenGraphImageURL string `json:"openGraphImageUrl,omitempty"`
}

// RepositoryOwner holds the owner fields.
type RepositoryOwner struct {
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// IssueCount is the totalCount of an issues connection.
type IssueCount struct {
	TotalCount int `json:"totalCount"`
}

// BranchRef names a git ref.
type BranchRef struct {
	Name string `json:"name"`
}

// Tree is a git tree object as returned by an object(expression:) lookup.
type Tree struct {
	Entries []TreeEntry `json:"entries"`
}

// TreeEntry is one entry of a [Tree]. Object is only populated for nested
// listings such as [GraphQLClient.ExtensionsListing].
type TreeEntry struct {
	Name   string `json:"name,omitempty"`
	Path   string `json:"path,omitempty"`
	Type   string `json:"type,omitempty"`
	Object *Tree  `json:"object,omitempty"`
}

// OwnerAvatarURL returns the owner avatar, or "" when absent.
func (d *RepoData) OwnerAvatarURL() string {
	if d == nil || d.RepositoryOwner == nil {
		return ""
	}
	return d.RepositoryOwner.AvatarURL
}

// Repo returns the repository fields, never nil.
func (d *RepoData) Repo() *Repository {
	if d == nil || d.Repository == nil {
		return &Repository{}
	}
	return d.Repository
}

// ExtensionFiles unions the four candidate listings and returns the paths
// that name an extension descriptor.
func ExtensionFiles(d *RepoData) []string {
	r := d.Repo()
	var files []string
	for _, t := range []*Tree{r.MetaInfs, r.SubfolderMetaInfs, r.ShortenedSubfolderMetaInfs, r.QuarkusSubfolderMetaInfs} {
		if t == nil {
			continue
		}
		for _, e := range t.Entries {
			if strings.HasSuffix(e.Path, "/"+MetadataFileName) {
				files = append(files, e.Path)
			}
		}
	}
	return files
}

