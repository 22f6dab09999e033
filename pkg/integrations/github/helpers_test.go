package github

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quarkusio/extensions-enricher/pkg/integrations"
)

// fakeGitHub serves canned GraphQL responses and repository contents.
type fakeGitHub struct {
	t      *testing.T
	server *httptest.Server

	mu      sync.Mutex
	queries []string
	// respond maps a query to the raw JSON response body.
	respond func(query string) string
	files   map[string]string
}

func newFakeGitHub(t *testing.T, respond func(query string) string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{t: t, respond: respond, files: map[string]string{}}

	r := chi.NewRouter()
	r.Post("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.queries = append(f.queries, req.Query)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.respond(req.Query)))
	})
	r.Get("/repos/{owner}/{repo}/contents/*", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo") + "/" + chi.URLParam(r, "*")
		content, ok := f.files[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
			"path":     chi.URLParam(r, "*"),
		})
	})

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) graphQL() *GraphQLClient {
	c := integrations.NewClient(nil,
		integrations.WithHTTPClient(f.server.Client()),
		integrations.WithRetry(1, time.Millisecond),
	)
	return NewGraphQLClient(c, f.server.URL+"/graphql")
}

func (f *fakeGitHub) content() *ContentClient {
	c, err := NewContentClient(f.server.Client(), nil).WithBaseURL(f.server.URL)
	if err != nil {
		f.t.Fatal(err)
	}
	return c
}

func (f *fakeGitHub) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}
