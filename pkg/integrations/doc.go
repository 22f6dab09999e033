// Package integrations provides the shared HTTP plumbing for talking to
// GitHub and downloading repository images.
//
// The [Client] type applies default headers, a rate limiter, retries with
// exponential backoff for transient failures, and observability hooks:
//
//	hc := integrations.NewAuthHTTPClient(ctx, os.Getenv("GITHUB_TOKEN"))
//	client := integrations.NewClient(nil, integrations.WithHTTPClient(hc))
//	err := client.PostJSON(ctx, "https://api.github.com/graphql", req, &resp)
//
// Status codes map onto errors as follows: 404 is [ErrNotFound], 5xx and
// transport failures are [ErrNetwork] wrapped as retryable, and exhausted
// rate limits surface as a rate-limited error that is not retried.
//
// The [github] subpackage builds the GraphQL and REST clients on top.
//
// [github]: github.com/quarkusio/extensions-enricher/pkg/integrations/github
package integrations
