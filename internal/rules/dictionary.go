// Package rules is the deterministic rule-engine boundary. The screening
// core only consumes the PatternMatches a Matcher produces.
package rules

import (
	_ "embed"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/adscreen/internal/model"
	"github.com/sells-group/adscreen/internal/textspan"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// contextRadius is the rune radius of PatternMatch.Context.
const contextRadius = 50

// Matcher produces rule matches for a text.
type Matcher interface {
	Match(text string) []model.PatternMatch
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(text string) []model.PatternMatch

// Match calls f.
func (f MatcherFunc) Match(text string) []model.PatternMatch { return f(text) }

// Rule is one dictionary entry.
type Rule struct {
	ID          string             `yaml:"id"`
	Type        string             `yaml:"type"`
	Severity    string             `yaml:"severity"`
	Confidence  float64            `yaml:"confidence"`
	Description string             `yaml:"description"`
	Pattern     string             `yaml:"pattern"`
	Legal       []model.LegalBasis `yaml:"legal"`

	re *regexp.Regexp
}

// Dictionary is a regex-backed Matcher.
type Dictionary struct {
	rules []Rule
}

// DefaultDictionary returns a Dictionary built from the embedded rule set.
func DefaultDictionary() (*Dictionary, error) {
	return ParseDictionary(defaultDictionary)
}

// LoadDictionary reads a rule set from a YAML file. An empty path returns
// the embedded rule set.
func LoadDictionary(path string) (*Dictionary, error) {
	if path == "" {
		return DefaultDictionary()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}
	return ParseDictionary(data)
}

// ParseDictionary decodes and compiles a rule set.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "rules: parse")
	}

	seen := make(map[string]bool, len(doc.Rules))
	for i := range doc.Rules {
		r := &doc.Rules[i]
		if r.ID == "" {
			return nil, eris.Errorf("rules: rule %d has no id", i)
		}
		if seen[r.ID] {
			return nil, eris.Errorf("rules: duplicate rule id %q", r.ID)
		}
		seen[r.ID] = true

		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "rules: compile %s", r.ID)
		}
		r.re = re
		r.Confidence = model.ClampConfidence(r.Confidence)
	}

	return &Dictionary{rules: doc.Rules}, nil
}

// Len returns the number of rules.
func (d *Dictionary) Len() int { return len(d.rules) }

// Match returns every non-overlapping hit of every rule, in rule order and
// then text order.
func (d *Dictionary) Match(text string) []model.PatternMatch {
	var out []model.PatternMatch
	for i := range d.rules {
		r := &d.rules[i]
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			ctx, _ := textspan.Window(text, loc[0], loc[1], contextRadius)
			out = append(out, model.PatternMatch{
				RuleID:      r.ID,
				MatchedText: text[loc[0]:loc[1]],
				Context:     ctx,
				Confidence:  r.Confidence,
				Position:    loc[0],
				EndPosition: loc[1],
				Type:        model.ParseViolationType(r.Type),
				Severity:    model.ParseSeverity(r.Severity),
				Description: r.Description,
				LegalBasis:  r.Legal,
			})
		}
	}
	return out
}
