package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quarkusio/extensions-enricher/pkg/integrations"
)

// DefaultGraphQLURL is the public GitHub GraphQL endpoint.
const DefaultGraphQLURL = "https://api.github.com/graphql"

// GraphQLClient posts queries to the GitHub GraphQL API through the shared
// HTTP client, inheriting its auth, rate limiting and retries.
type GraphQLClient struct {
	*integrations.Client
	url string
}

// NewGraphQLClient creates a client for the endpoint at url.
// An empty url means [DefaultGraphQLURL].
func NewGraphQLClient(c *integrations.Client, url string) *GraphQLClient {
	if url == "" {
		url = DefaultGraphQLURL
	}
	return &GraphQLClient{Client: c, url: url}
}

// GraphQLError is one entry of the errors array of a response.
type GraphQLError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// QueryError reports the errors array of a response. Data may still have
// been decoded when it accompanies the errors.
type QueryError struct {
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Query executes query and decodes the data member into v.
// A response carrying both data and errors decodes the data and returns a
// *QueryError.
func (g *GraphQLClient) Query(ctx context.Context, query string, v any) error {
	var resp graphQLResponse
	if err := g.PostJSON(ctx, g.url, graphQLRequest{Query: query}, &resp); err != nil {
		return err
	}
	if len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, v); err != nil {
			return fmt.Errorf("decode graphql data: %w", err)
		}
	}
	if len(resp.Errors) > 0 {
		return &QueryError{Errors: resp.Errors}
	}
	return nil
}

// quote renders s as a GraphQL string literal. JSON string syntax is a
// subset of GraphQL's.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
