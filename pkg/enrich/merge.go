package enrich

import "github.com/quarkusio/extensions-enricher/pkg/integrations/github"

// mergeRepoData overlays returned on cached field by field. A field the
// response carries wins; a field it lacks keeps the cached value. Neither
// argument is modified.
func mergeRepoData(cached, returned *github.RepoData) *github.RepoData {
	out := &github.RepoData{}
	if cached != nil {
		out.RepositoryOwner = cached.RepositoryOwner
		if cached.Repository != nil {
			r := *cached.Repository
			out.Repository = &r
		}
	}
	if returned == nil {
		return out
	}

	if returned.RepositoryOwner != nil {
		out.RepositoryOwner = returned.RepositoryOwner
	}
	rr := returned.Repository
	if rr == nil {
		return out
	}
	if out.Repository == nil {
		out.Repository = &github.Repository{}
	}
	r := out.Repository
	if rr.Issues != nil {
		r.Issues = rr.Issues
	}
	if rr.DefaultBranchRef != nil {
		r.DefaultBranchRef = rr.DefaultBranchRef
	}
	if rr.MetaInfs != nil {
		r.MetaInfs = rr.MetaInfs
	}
	if rr.SubfolderMetaInfs != nil {
		r.SubfolderMetaInfs = rr.SubfolderMetaInfs
	}
	if rr.ShortenedSubfolderMetaInfs != nil {
		r.ShortenedSubfolderMetaInfs = rr.ShortenedSubfolderMetaInfs
	}
	if rr.QuarkusSubfolderMetaInfs != nil {
		r.QuarkusSubfolderMetaInfs = rr.QuarkusSubfolderMetaInfs
	}
	if rr.OpenGraphImageURL != "" {
		r.OpenGraphImageURL = rr.OpenGraphImageURL
	}
	return out
}

// cacheable returns the part of data that may be stored under the
// repository URL. Subfolder listings belong to one artifact and are never
// kept; a label-filtered issue count belongs to one extension and is kept
// only when no labels were used.
func cacheable(data *github.RepoData, hasLabels bool) github.RepoData {
	out := *data
	if data.Repository == nil {
		return out
	}
	r := *data.Repository
	r.SubfolderMetaInfs = nil
	r.ShortenedSubfolderMetaInfs = nil
	r.QuarkusSubfolderMetaInfs = nil
	if hasLabels {
		r.Issues = nil
	}
	out.Repository = &r
	return out
}
