package github

import (
	"context"
	"fmt"
)

// ExtensionsListing returns the top two levels of the extensions/ tree of
// repo. Errors reaching the API are returned; a repository without such a
// tree yields an empty listing.
func (g *GraphQLClient) ExtensionsListing(ctx context.Context, repo RepoCoordinate) ([]TreeEntry, error) {
	query := fmt.Sprintf(`query {
  repository(owner: %s, name: %s) {
    object(expression: "HEAD:extensions") {
      ... on Tree {
        entries {
          name
          type
          object {
            ... on Tree {
              entries { name type }
            }
          }
        }
      }
    }
  }
}`, quote(repo.Owner), quote(repo.Name))

	var data struct {
		Repository *struct {
			Object *Tree `json:"object"`
		} `json:"repository"`
	}
	if err := g.Query(ctx, query, &data); err != nil {
		return nil, fmt.Errorf("list extensions of %s: %w", repo, err)
	}
	if data.Repository == nil || data.Repository.Object == nil {
		return nil, nil
	}
	return data.Repository.Object.Entries, nil
}
