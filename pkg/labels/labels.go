// Package labels maps extensions of the canonical repository to the issue
// labels its triage bot applies.
//
// The bot configuration lists rules, each with labels and the directories
// they cover. An extension's directory is found in the two-level listing of
// the extensions/ tree, and every rule covering that directory contributes
// its labels.
package labels

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	errs "github.com/quarkusio/extensions-enricher/pkg/errors"
	"github.com/quarkusio/extensions-enricher/pkg/integrations/github"
)

// BotConfigPath is the location of the triage bot configuration in the
// canonical repository.
const BotConfigPath = ".github/quarkus-github-bot.yml"

const artifactPrefix = "quarkus-"

type botConfig struct {
	Triage struct {
		Rules []Rule `yaml:"rules"`
	} `yaml:"triage"`
}

// Rule is one triage rule of the bot configuration.
type Rule struct {
	ID          string   `yaml:"id"`
	Labels      []string `yaml:"labels"`
	Directories []string `yaml:"directories"`
}

// Extractor resolves labels for artifact ids.
type Extractor struct {
	rules   []Rule
	listing []github.TreeEntry
}

// Parse builds an extractor from the bot configuration text and the
// extensions/ listing. Empty text yields an extractor without rules.
func Parse(botYAML string, listing []github.TreeEntry) (*Extractor, error) {
	var cfg botConfig
	if strings.TrimSpace(botYAML) != "" {
		if err := yaml.Unmarshal([]byte(botYAML), &cfg); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse bot configuration")
		}
	}
	return &Extractor{rules: cfg.Triage.Rules, listing: listing}, nil
}

// Rules returns the number of triage rules loaded.
func (e *Extractor) Rules() int { return len(e.rules) }

// Labels returns the labels of every rule covering the extension directory
// of artifactID, or nil when the directory is unknown or no rule covers it.
func (e *Extractor) Labels(artifactID string) []string {
	if e == nil || artifactID == "" {
		return nil
	}
	dir := e.directory(strings.TrimPrefix(artifactID, artifactPrefix))
	if dir == "" {
		return nil
	}

	var labels []string
	for _, r := range e.rules {
		if !r.covers(dir) {
			continue
		}
		for _, l := range r.Labels {
			if !slices.Contains(labels, l) {
				labels = append(labels, l)
			}
		}
	}
	return labels
}

// directory finds extensions/<short>/ or extensions/<parent>/<child>/ where
// the child is short, or short without its "<parent>-" prefix.
func (e *Extractor) directory(short string) string {
	for _, top := range e.listing {
		if isTree(top) && top.Name == short {
			return "extensions/" + short + "/"
		}
	}
	for _, top := range e.listing {
		if !isTree(top) || top.Object == nil {
			continue
		}
		trimmed := strings.TrimPrefix(short, top.Name+"-")
		for _, child := range top.Object.Entries {
			if isTree(child) && (child.Name == short || child.Name == trimmed) {
				return "extensions/" + top.Name + "/" + child.Name + "/"
			}
		}
	}
	return ""
}

func (r Rule) covers(dir string) bool {
	for _, d := range r.Directories {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if !strings.HasSuffix(d, "/") {
			d += "/"
		}
		if strings.HasPrefix(dir, d) {
			return true
		}
	}
	return false
}

func isTree(e github.TreeEntry) bool {
	return e.Type == "tree"
}
