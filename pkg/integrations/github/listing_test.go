package github

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGraphQLClient_ExtensionsListing(t *testing.T) {
	fake := newFakeGitHub(t, func(q string) string {
		if !strings.Contains(q, `"HEAD:extensions"`) {
			t.Errorf("unexpected query:\n%s", q)
		}
		return `{"data": {"repository": {"object": {"entries": [
			{"name": "arc", "type": "tree", "object": {"entries": [{"name": "runtime", "type": "tree"}]}},
			{"name": "pom.xml", "type": "blob", "object": {}}
		]}}}}`
	})

	entries, err := fake.graphQL().ExtensionsListing(context.Background(), RepoCoordinate{"quarkusio", "quarkus"})
	if err != nil {
		t.Fatalf("ExtensionsListing: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "arc" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Object == nil || entries[0].Object.Entries[0].Name != "runtime" {
		t.Errorf("nested listing lost: %+v", entries[0].Object)
	}
}

func TestGraphQLClient_ExtensionsListingErrors(t *testing.T) {
	fake := newFakeGitHub(t, func(string) string {
		return `{"data": null, "errors": [{"message": "Bad credentials"}]}`
	})
	if _, err := fake.graphQL().ExtensionsListing(context.Background(), RepoCoordinate{"quarkusio", "quarkus"}); err == nil {
		t.Error("ExtensionsListing should propagate errors")
	}
}

func TestGraphQLClient_History(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := newFakeGitHub(t, func(q string) string {
		if !strings.Contains(q, `path: "extensions/arc/"`) || !strings.Contains(q, `since: "2024-01-01T00:00:00Z"`) {
			t.Errorf("history query lacks filters:\n%s", q)
		}
		if !strings.Contains(q, "after:") {
			return `{"data": {"repository": {"defaultBranchRef": {"target": {"history": {
				"pageInfo": {"hasNextPage": true, "endCursor": "c1"},
				"nodes": [
					{"author": {"name": "Ann", "user": {"login": "ann", "name": "", "url": "https://github.com/ann", "company": "@acme"}}},
					{"author": {"name": "ghost", "user": null}}
				]}}}}}}`
		}
		return `{"data": {"repository": {"defaultBranchRef": {"target": {"history": {
			"pageInfo": {"hasNextPage": false, "endCursor": ""},
			"nodes": [{"author": {"name": "Bob", "user": {"login": "bob", "name": "Bob B", "url": "https://github.com/bob", "company": ""}}}]
		}}}}}}`
	})

	authors, err := fake.graphQL().History(context.Background(), RepoCoordinate{"quarkusio", "quarkus"}, "extensions/arc/", since)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(authors) != 2 {
		t.Fatalf("authors = %+v, want 2", authors)
	}
	if authors[0].Login != "ann" || authors[0].Name != "Ann" || authors[0].Company != "@acme" {
		t.Errorf("first author = %+v", authors[0])
	}
	if authors[1].Login != "bob" {
		t.Errorf("second author = %+v", authors[1])
	}
	if n := len(fake.Queries()); n != 2 {
		t.Errorf("%d queries, want 2 pages", n)
	}
}
