package github

import (
	"context"
	"strings"
	"testing"
)

func TestMetadataFetcher_Fetch(t *testing.T) {
	fake := newFakeGitHub(t, func(string) string {
		return `{"data": {
			"repository": {
				"issues": {"totalCount": 5},
				"openGraphImageUrl": "https://repository-images.githubusercontent.com/1/x.png",
				"defaultBranchRef": {"name": "main"},
				"metaInfs": null,
				"subfolderMetaInfs": {"entries": [
					{"path": "widget-core/runtime/src/main/resources/META-INF/quarkus-extension.yaml"},
					{"path": "widget-core/runtime/src/main/resources/META-INF/beans.xml"}
				]}
			},
			"repositoryOwner": {"avatarUrl": "https://avatars.githubusercontent.com/u/1"}
		}}`
	})

	f := NewMetadataFetcher(fake.graphQL(), nil)
	data := f.Fetch(context.Background(), FetchRequest{Repo: widget, NeedListing: true, ArtifactID: "widget-core"})
	if data == nil {
		t.Fatal("Fetch returned nil")
	}

	r := data.Repo()
	if r.Issues == nil || r.Issues.TotalCount != 5 {
		t.Errorf("issues = %+v, want 5", r.Issues)
	}
	if r.DefaultBranchRef == nil || r.DefaultBranchRef.Name != "main" {
		t.Errorf("defaultBranchRef = %+v", r.DefaultBranchRef)
	}
	if r.MetaInfs != nil {
		t.Error("null listing should decode as absent")
	}
	if data.OwnerAvatarURL() != "https://avatars.githubusercontent.com/u/1" {
		t.Errorf("avatar = %q", data.OwnerAvatarURL())
	}

	files := ExtensionFiles(data)
	if len(files) != 1 || !strings.HasPrefix(files[0], "widget-core/") {
		t.Errorf("ExtensionFiles = %v", files)
	}
}

func TestMetadataFetcher_SkipsNetwork(t *testing.T) {
	fake := newFakeGitHub(t, func(string) string { return `{"data":{}}` })
	f := NewMetadataFetcher(fake.graphQL(), nil)

	if data := f.Fetch(context.Background(), FetchRequest{Repo: widget, UsableCache: true}); data != nil {
		t.Errorf("Fetch = %+v, want nil", data)
	}
	if n := len(fake.Queries()); n != 0 {
		t.Errorf("%d queries sent, want 0", n)
	}
}

func TestMetadataFetcher_FailuresYieldNil(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"data": {"repository": `},
		{"errors only", `{"data": null, "errors": [{"type": "NOT_FOUND", "message": "Could not resolve to a Repository"}]}`},
		{"wrong shape", `{"data": {"repository": {"issues": "many"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeGitHub(t, func(string) string { return tt.body })
			f := NewMetadataFetcher(fake.graphQL(), nil)
			if data := f.Fetch(context.Background(), FetchRequest{Repo: widget}); data != nil {
				t.Errorf("Fetch = %+v, want nil", data)
			}
		})
	}
}

func TestMetadataFetcher_PartialData(t *testing.T) {
	fake := newFakeGitHub(t, func(string) string {
		return `{"data": {"repository": {"issues": {"totalCount": 2}}, "repositoryOwner": null},
			"errors": [{"message": "owner lookup failed"}]}`
	})
	f := NewMetadataFetcher(fake.graphQL(), nil)

	data := f.Fetch(context.Background(), FetchRequest{Repo: widget})
	if data == nil || data.Repo().Issues == nil || data.Repo().Issues.TotalCount != 2 {
		t.Fatalf("partial data lost: %+v", data)
	}
	if data.RepositoryOwner != nil {
		t.Error("owner should be absent")
	}
}

func TestExtensionFiles(t *testing.T) {
	entry := func(p string) TreeEntry { return TreeEntry{Path: p} }
	data := &RepoData{Repository: &Repository{
		MetaInfs: &Tree{Entries: []TreeEntry{entry("runtime/src/main/resources/META-INF/beans.xml")}},
		SubfolderMetaInfs: &Tree{Entries: []TreeEntry{
			entry("a/runtime/src/main/resources/META-INF/quarkus-extension.yaml"),
		}},
		QuarkusSubfolderMetaInfs: &Tree{Entries: []TreeEntry{
			entry("extensions/a/runtime/src/main/resources/META-INF/quarkus-extension.yaml"),
			entry("extensions/a/runtime/src/main/resources/META-INF/quarkus-extension.yaml.bak"),
		}},
	}}

	files := ExtensionFiles(data)
	if len(files) != 2 {
		t.Errorf("ExtensionFiles = %v, want 2 matches", files)
	}
	if got := ExtensionFiles(nil); got != nil {
		t.Errorf("ExtensionFiles(nil) = %v", got)
	}
}
