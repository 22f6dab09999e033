package labels

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
)

const botYAML = `
features: [ALL]
triage:
  rules:
    - id: arc
      labels: [area/arc]
      directories:
        - extensions/arc/
        - independent-projects/arc/
    - id: cdi
      labels: [area/cdi, area/arc]
      directories:
        - extensions/arc
    - id: amazon
      labels: [area/amazon-lambda]
      title: "lambda"
      directories:
        - extensions/amazon-lambda
    - id: hibernate
      labels: [area/hibernate-orm]
      directories:
        - extensions/hibernate-orm
    - id: vertx-http
      labels: [area/vertx]
      directories:
        - extensions/vertx-http/
        - extensions/resteasy-reactive/rest-vertx
    - id: rest
      labels: [area/rest]
      directories:
        - extensions/resteasy-reactive/
`

func tree(name string, children ...string) github.TreeEntry {
	e := github.TreeEntry{Name: name, Type: "tree", Object: &github.Tree{}}
	for _, c := range children {
		e.Object.Entries = append(e.Object.Entries, github.TreeEntry{Name: c, Type: "tree"})
	}
	return e
}

var listing = []github.TreeEntry{
	tree("arc", "deployment", "runtime"),
	tree("amazon-lambda-http", "deployment", "runtime"),
	tree("hibernate-orm", "deployment", "runtime"),
	tree("resteasy-reactive", "rest", "rest-client", "rest-vertx"),
	{Name: "pom.xml", Type: "blob"},
}

func TestExtractor_Labels(t *testing.T) {
	e, err := Parse(botYAML, listing)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if e.Rules() != 6 {
		t.Errorf("Rules() = %d, want 6", e.Rules())
	}

	tests := []struct {
		artifact string
		want     []string
	}{
		{"quarkus-arc", []string{"area/arc", "area/cdi"}},
		{"quarkus-hibernate-orm", []string{"area/hibernate-orm"}},
		// directory exists but the amazon-lambda rule points elsewhere
		{"quarkus-amazon-lambda-http", nil},
		{"quarkus-rest", []string{"area/rest"}},
		{"quarkus-resteasy-reactive-rest-client", []string{"area/rest"}},
		{"quarkus-rest-vertx", []string{"area/vertx", "area/rest"}},
		{"quarkus-unknown", nil},
		{"pom.xml", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.artifact, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, e.Labels(tt.artifact)); diff != "" {
				t.Errorf("Labels(%q) mismatch (-want +got):\n%s", tt.artifact, diff)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	e, err := Parse("", listing)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := e.Labels("quarkus-arc"); got != nil {
		t.Errorf("Labels without rules = %v, want nil", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("triage: [unclosed", nil)
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("Parse error = %v, want INVALID_CONFIG", err)
	}
}

func TestNilExtractor(t *testing.T) {
	var e *Extractor
	if got := e.Labels("quarkus-arc"); got != nil {
		t.Errorf("nil extractor Labels = %v", got)
	}
}
