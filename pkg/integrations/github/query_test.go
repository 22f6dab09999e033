package github

import (
	"strings"
	"testing"
)

var widget = RepoCoordinate{Owner: "acme", Name: "widget"}

func TestBuildRepoQuery_DecisionTable(t *testing.T) {
	tests := []struct {
		name        string
		req         FetchRequest
		wantOK      bool
		wantKind    string
		contains    []string
		notContains []string
	}{
		{
			name:     "cold cache",
			req:      FetchRequest{Repo: widget, NeedListing: true, ArtifactID: "widget-core"},
			wantOK:   true,
			wantKind: QueryFull,
			contains: []string{
				"issues(states: OPEN) { totalCount }",
				"defaultBranchRef { name }",
				"metaInfs:", "subfolderMetaInfs:", "shortenedSubfolderMetaInfs:", "quarkusSubfolderMetaInfs:",
				"openGraphImageUrl",
				`repositoryOwner(login: "acme")`,
				"avatarUrl",
			},
			notContains: []string{"filterBy"},
		},
		{
			name:        "cold cache, location known",
			req:         FetchRequest{Repo: widget, ArtifactID: "widget-core"},
			wantOK:      true,
			wantKind:    QueryFull,
			contains:    []string{"issues(states: OPEN)", "openGraphImageUrl", "avatarUrl"},
			notContains: []string{"defaultBranchRef", "metaInfs"},
		},
		{
			name:     "cold cache with labels",
			req:      FetchRequest{Repo: widget, Labels: []string{"area/arc", "area/cdi"}},
			wantOK:   true,
			wantKind: QueryFull,
			contains: []string{`filterBy: { labels: ["area/arc", "area/cdi"] }`, "avatarUrl"},
		},
		{
			name:   "usable cache, nothing needed",
			req:    FetchRequest{Repo: widget, UsableCache: true},
			wantOK: false, wantKind: QueryNone,
		},
		{
			name:        "usable cache, listing needed",
			req:         FetchRequest{Repo: widget, UsableCache: true, NeedListing: true, ArtifactID: "widget-core"},
			wantOK:      true,
			wantKind:    QueryListing,
			contains:    []string{"defaultBranchRef { name }", "metaInfs:"},
			notContains: []string{"issues", "openGraphImageUrl", "repositoryOwner"},
		},
		{
			name:        "usable cache, labels",
			req:         FetchRequest{Repo: widget, UsableCache: true, Labels: []string{"area/arc"}},
			wantOK:      true,
			wantKind:    QueryIssues,
			contains:    []string{`filterBy: { labels: ["area/arc"] }`},
			notContains: []string{"metaInfs", "openGraphImageUrl", "repositoryOwner"},
		},
		{
			name:        "usable cache, labels and listing",
			req:         FetchRequest{Repo: widget, UsableCache: true, Labels: []string{"area/arc"}, NeedListing: true, ArtifactID: "widget-core"},
			wantOK:      true,
			wantKind:    QueryIssues,
			contains:    []string{"filterBy", "quarkusSubfolderMetaInfs:"},
			notContains: []string{"openGraphImageUrl", "repositoryOwner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := tt.req.Kind(); kind != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", kind, tt.wantKind)
			}
			q, ok := BuildRepoQuery(tt.req)
			if ok != tt.wantOK {
				t.Fatalf("BuildRepoQuery ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if q != "" {
					t.Errorf("query = %q, want empty", q)
				}
				return
			}
			if !strings.Contains(q, `repository(owner: "acme", name: "widget")`) {
				t.Errorf("query does not target acme/widget:\n%s", q)
			}
			for _, s := range tt.contains {
				if !strings.Contains(q, s) {
					t.Errorf("query missing %q:\n%s", s, q)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(q, s) {
					t.Errorf("query should not contain %q:\n%s", s, q)
				}
			}
		})
	}
}

func TestBuildRepoQuery_ListingCandidates(t *testing.T) {
	q, _ := BuildRepoQuery(FetchRequest{
		Repo:        RepoCoordinate{Owner: "quarkiverse", Name: "quarkus-amazon-services"},
		NeedListing: true,
		ArtifactID:  "quarkus-amazon-services-s3",
	})

	for _, want := range []string{
		`metaInfs: object(expression: "HEAD:runtime/src/main/resources/META-INF/")`,
		`subfolderMetaInfs: object(expression: "HEAD:quarkus-amazon-services-s3/runtime/src/main/resources/META-INF/")`,
		`shortenedSubfolderMetaInfs: object(expression: "HEAD:s3/runtime/src/main/resources/META-INF/")`,
		`quarkusSubfolderMetaInfs: object(expression: "HEAD:extensions/s3/runtime/src/main/resources/META-INF/")`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %s", want)
		}
	}
}

func TestBuildRepoQuery_NoArtifactID(t *testing.T) {
	q, _ := BuildRepoQuery(FetchRequest{Repo: widget, NeedListing: true})
	if !strings.Contains(q, "metaInfs:") {
		t.Error("root listing should still be probed")
	}
	if strings.Contains(q, "subfolderMetaInfs") {
		t.Error("subfolder candidates need an artifact id")
	}
}

func TestBuildRepoQuery_QuotesLabels(t *testing.T) {
	q, _ := BuildRepoQuery(FetchRequest{Repo: widget, Labels: []string{`we"ird`}})
	if !strings.Contains(q, `"we\"ird"`) {
		t.Errorf("label not escaped:\n%s", q)
	}
}

func TestShortArtifactID(t *testing.T) {
	tests := []struct{ artifact, repo, want string }{
		{"quarkus-amazon-services-s3", "quarkus-amazon-services", "s3"},
		{"quarkus-arc", "quarkus", "arc"},
		{"widget", "quarkus", "widget"},
		{"", "quarkus", ""},
	}
	for _, tt := range tests {
		if got := ShortArtifactID(tt.artifact, tt.repo); got != tt.want {
			t.Errorf("ShortArtifactID(%q, %q) = %q, want %q", tt.artifact, tt.repo, got, tt.want)
		}
	}
}
