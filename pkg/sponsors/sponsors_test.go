package sponsors

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/quarkusio/extensions-enricher/pkg/catalog"
	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
)

type fakeHistory struct {
	mu       sync.Mutex
	calls    int
	authors  []github.CommitAuthor
	err      error
	gotPath  string
	gotSince time.Time
}

func (h *fakeHistory) History(_ context.Context, _ github.RepoCoordinate, path string, since time.Time) ([]github.CommitAuthor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	h.gotPath = path
	h.gotSince = since
	return h.authors, h.err
}

func commits(login, name, company string, n int) []github.CommitAuthor {
	out := make([]github.CommitAuthor, n)
	for i := range out {
		out[i] = github.CommitAuthor{Login: login, Name: name, URL: "https://github.com/" + login, Company: company}
	}
	return out
}

func history() *fakeHistory {
	var a []github.CommitAuthor
	a = append(a, commits("ann", "Ann", "@redhat", 6)...)
	a = append(a, commits("bob", "Bob", "Red Hat", 2)...)
	a = append(a, commits("cat", "Cat", "@acme ", 3)...)
	a = append(a, commits("dan", "Dan", "", 1)...)
	a = append(a, commits("dependabot[bot]", "", "", 5)...)
	a = append(a, commits("eve", "Eve", "Tiny Co", 1)...)
	return &fakeHistory{authors: a}
}

func TestGitHubFinder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	h := history()
	f := NewGitHubFinder(Options{
		History:        h,
		CompanyAliases: map[string]string{"redhat": "Red Hat", "red hat": "Red Hat"},
		Now:            func() time.Time { return now },
	})
	if err := f.Ready(ctx); err != nil {
		t.Fatal(err)
	}

	wantContributors := []catalog.Contributor{
		{Name: "Ann", Login: "ann", Contributions: 6, URL: "https://github.com/ann"},
		{Name: "Cat", Login: "cat", Contributions: 3, URL: "https://github.com/cat"},
		{Name: "Bob", Login: "bob", Contributions: 2, URL: "https://github.com/bob"},
		{Name: "Dan", Login: "dan", Contributions: 1, URL: "https://github.com/dan"},
		{Name: "Eve", Login: "eve", Contributions: 1, URL: "https://github.com/eve"},
	}
	got := f.Contributors(ctx, "quarkiverse", "quarkus-widget", "widget/")
	if diff := cmp.Diff(wantContributors, got); diff != "" {
		t.Errorf("Contributors mismatch (-want +got):\n%s", diff)
	}

	// 13 human commits: Red Hat 8 (61%), acme 3 (23%), Tiny Co 1.
	sponsors := f.Sponsors(ctx, "quarkiverse", "quarkus-widget", "widget/")
	if diff := cmp.Diff([]string{"Red Hat"}, sponsors); diff != "" {
		t.Errorf("Sponsors mismatch (-want +got):\n%s", diff)
	}

	if h.calls != 1 {
		t.Errorf("history read %d times, want 1", h.calls)
	}
	if h.gotPath != "widget/" {
		t.Errorf("path = %q", h.gotPath)
	}
	if want := now.Add(-DefaultWindow); !h.gotSince.Equal(want) {
		t.Errorf("since = %v, want %v", h.gotSince, want)
	}
}

func TestGitHubFinder_Thresholds(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"lower share", Options{MinSharePercent: 20}, []string{"Red Hat", "acme"}},
		{"two people", Options{MinSharePercent: 1, MinContributors: 2}, []string{"Red Hat"}},
		{"everyone", Options{MinSharePercent: 1}, []string{"Red Hat", "acme", "Tiny Co"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.History = history()
			tt.opts.CompanyAliases = map[string]string{"redhat": "Red Hat"}
			f := NewGitHubFinder(tt.opts)
			_ = f.Ready(ctx)

			if diff := cmp.Diff(tt.want, f.Sponsors(ctx, "o", "p", "")); diff != "" {
				t.Errorf("Sponsors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGitHubFinder_HistoryFailure(t *testing.T) {
	ctx := context.Background()
	h := &fakeHistory{err: errors.New("boom")}
	f := NewGitHubFinder(Options{History: h})
	_ = f.Ready(ctx)

	if got := f.Sponsors(ctx, "o", "p", ""); got != nil {
		t.Errorf("Sponsors = %v, want nil", got)
	}
	if got := f.Contributors(ctx, "o", "p", ""); got != nil {
		t.Errorf("Contributors = %v, want nil", got)
	}
	if h.calls != 2 {
		t.Errorf("failures should not be cached: %d calls", h.calls)
	}
}

func TestGitHubFinder_FlushAll(t *testing.T) {
	ctx := context.Background()
	h := history()
	f := NewGitHubFinder(Options{History: h})
	_ = f.Ready(ctx)

	f.Sponsors(ctx, "o", "p", "")
	f.FlushAll()
	f.Sponsors(ctx, "o", "p", "")
	if h.calls != 2 {
		t.Errorf("calls = %d, want 2 after flush", h.calls)
	}
}

func TestGitHubFinder_ConcurrentLookups(t *testing.T) {
	ctx := context.Background()
	h := history()
	f := NewGitHubFinder(Options{History: h})
	_ = f.Ready(ctx)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Contributors(ctx, "o", "p", "x/")
		}()
	}
	wg.Wait()

	if h.calls < 1 || h.calls > 10 {
		t.Errorf("calls = %d", h.calls)
	}
	if len(f.Contributors(ctx, "o", "p", "x/")) != 5 {
		t.Error("cached result lost")
	}
}
