package github

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// maxHistoryPages bounds how many pages of 100 commits are read per path.
const maxHistoryPages = 10

// CommitAuthor is the GitHub account behind a commit.
type CommitAuthor struct {
	Login   string `json:"login"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Company string `json:"company"`
}

type historyResponse struct {
	Repository *struct {
		DefaultBranchRef *struct {
			Target *struct {
				History *struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						Author struct {
							Name string        `json:"name"`
							User *CommitAuthor `json:"user"`
						} `json:"author"`
					} `json:"nodes"`
				} `json:"history"`
			} `json:"target"`
		} `json:"defaultBranchRef"`
	} `json:"repository"`
}

// History returns one CommitAuthor per commit on the default branch since
// the given time, restricted to path when it is not empty. Commits whose
// author has no GitHub account are left out.
func (g *GraphQLClient) History(ctx context.Context, repo RepoCoordinate, path string, since time.Time) ([]CommitAuthor, error) {
	var (
		authors []CommitAuthor
		cursor  string
	)
	for range maxHistoryPages {
		var data historyResponse
		if err := g.Query(ctx, historyQuery(repo, path, since, cursor), &data); err != nil {
			return authors, fmt.Errorf("history of %s: %w", repo, err)
		}
		r := data.Repository
		if r == nil || r.DefaultBranchRef == nil || r.DefaultBranchRef.Target == nil || r.DefaultBranchRef.Target.History == nil {
			return authors, nil
		}
		h := r.DefaultBranchRef.Target.History
		for _, n := range h.Nodes {
			if n.Author.User == nil || n.Author.User.Login == "" {
				continue
			}
			a := *n.Author.User
			if a.Name == "" {
				a.Name = n.Author.Name
			}
			authors = append(authors, a)
		}
		if !h.PageInfo.HasNextPage {
			break
		}
		cursor = h.PageInfo.EndCursor
	}
	return authors, nil
}

func historyQuery(repo RepoCoordinate, path string, since time.Time, cursor string) string {
	args := []string{"first: 100", "since: " + quote(since.UTC().Format(time.RFC3339))}
	if path != "" {
		args = append(args, "path: "+quote(path))
	}
	if cursor != "" {
		args = append(args, "after: "+quote(cursor))
	}
	return fmt.Sprintf(`query {
  repository(owner: %s, name: %s) {
    defaultBranchRef {
      target {
        ... on Commit {
          history(%s) {
            pageInfo { hasNextPage endCursor }
            nodes { author { name user { login name url company } } }
          }
        }
      }
    }
  }
}`, quote(repo.Owner), quote(repo.Name), strings.Join(args, ", "))
}
