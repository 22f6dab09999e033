package github

import (
	"regexp"

	"github.com/quarkusio/extensions-enricher/pkg/integrations"
)

var (
	repoURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/?#]+?)(?:\.git)?(?:[/?#].*)?$`)

	// GitHub logins: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// RepoCoordinate identifies a GitHub repository.
type RepoCoordinate struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (c RepoCoordinate) String() string {
	return c.Owner + "/" + c.Name
}

// URL returns the canonical web URL of the repository.
func (c RepoCoordinate) URL() string {
	return "https://github.com/" + c.Owner + "/" + c.Name
}

// ParseRepoURL extracts the owner and repository name from a github.com URL.
// It accepts https, http, git@ and git:// forms, with or without a .git
// suffix or trailing path. Names that GitHub would reject are refused, which
// also keeps them safe to embed in GraphQL string literals.
func ParseRepoURL(raw string) (RepoCoordinate, bool) {
	m := repoURLPattern.FindStringSubmatch(integrations.NormalizeRepoURL(raw))
	if m == nil {
		return RepoCoordinate{}, false
	}
	c := RepoCoordinate{Owner: m[1], Name: m[2]}
	if !validOwner.MatchString(c.Owner) || !validRepo.MatchString(c.Name) {
		return RepoCoordinate{}, false
	}
	return c, true
}
