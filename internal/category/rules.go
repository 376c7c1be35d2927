// Package category assigns a category to a transaction description via an
// ordered table of substring rules.
package category

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/pocketledger/internal/domain"
)

//go:embed rules.yaml
var embeddedRules []byte

// Rule maps a set of description substrings to one category. Matching is
// case-insensitive. File order is precedence order: earlier rules always
// win, so a grocery chain whose name happens to contain a payee token is
// still Groceries. New merchants are added by appending patterns or rules,
// never by reordering.
type Rule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Category string   `yaml:"category"`
}

type ruleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Engine evaluates rules in order and falls back to Misc.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine from YAML rule data.
func NewEngine(data []byte) (*Engine, error) {
	var rs ruleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules yaml: %w", err)
	}
	if len(rs.Rules) == 0 {
		return nil, fmt.Errorf("rules yaml contains no rules")
	}
	for i, r := range rs.Rules {
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d (%s): category is empty", i, r.Name)
		}
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no patterns", i, r.Name)
		}
		for _, p := range r.Patterns {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("rule %d (%s): empty pattern", i, r.Name)
			}
		}
	}
	return &Engine{rules: rs.Rules}, nil
}

// LoadEmbedded loads the compiled-in default rule table.
func LoadEmbedded() (*Engine, error) {
	return NewEngine(embeddedRules)
}

// LoadFromFile loads a rule table from disk, for users who maintain their
// own merchant list.
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	eng, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("loading rules from %q: %w", path, err)
	}
	return eng, nil
}

// Match returns the category of the first rule whose pattern appears in
// description, or ("", false) when nothing matches.
func (e *Engine) Match(description string) (string, bool) {
	desc := strings.ToLower(description)
	for _, r := range e.rules {
		for _, p := range r.Patterns {
			if strings.Contains(desc, strings.ToLower(p)) {
				return r.Category, true
			}
		}
	}
	return "", false
}

// Categorize is Match with the Misc fallback applied.
func (e *Engine) Categorize(description string) string {
	if cat, ok := e.Match(description); ok {
		return cat
	}
	return domain.CategoryMisc
}

// Rules returns a copy of the rule table in precedence order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
