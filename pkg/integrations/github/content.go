package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v75/github"
	"golang.org/x/time/rate"

	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
)

// ContentClient reads files from repositories through the REST contents API.
type ContentClient struct {
	c *gh.Client
	l *rate.Limiter
}

// NewContentClient creates a content client. hc carries authentication
// (see integrations.NewAuthHTTPClient); a nil limiter means no throttling.
func NewContentClient(hc *http.Client, l *rate.Limiter) *ContentClient {
	if l == nil {
		l = rate.NewLimiter(rate.Inf, 0)
	}
	return &ContentClient{c: gh.NewClient(hc), l: l}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func (c *ContentClient) WithBaseURL(base string) (*ContentClient, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c.c.BaseURL = u
	return c, nil
}

// RawFile returns the decoded contents of path in owner/repo. A missing file
// yields "" and no error.
func (c *ContentClient) RawFile(ctx context.Context, owner, repo, path string) (string, error) {
	if err := errs.ValidatePath(path); err != nil {
		return "", err
	}
	if err := c.l.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}
	file, _, _, err := c.c.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		var ghErr *gh.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("get %s from %s/%s: %w", path, owner, repo, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s in %s/%s is a directory", path, owner, repo)
	}
	return file.GetContent()
}
