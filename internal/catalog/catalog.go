// Package catalog holds the declarative signal tables used by the screening
// analyzers. Tables are YAML (pattern, label, weight) compiled once at startup
// so that what counts as a signal stays separate from how matching runs.
package catalog

import (
	_ "embed"
	"os"
	"regexp"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed signals.yaml
var defaultSignals []byte

// Entry is a single catalog signal. Which descriptive fields are set depends
// on the table: intent signals carry Name and Weight, audience signals carry
// Label (and Risk for vulnerable groups), ambiguous expressions carry
// Category and Description.
type Entry struct {
	Name        string  `yaml:"name"`
	Label       string  `yaml:"label"`
	Category    string  `yaml:"category"`
	Description string  `yaml:"description"`
	Risk        string  `yaml:"risk"`
	Weight      float64 `yaml:"weight"`
	Pattern     string  `yaml:"pattern"`

	re *regexp.Regexp
}

// Catalogs is the full set of signal tables.
type Catalogs struct {
	Ambiguous []Entry         `yaml:"ambiguous"`
	Intent    IntentCatalog   `yaml:"intent"`
	Shapes    ShapeCatalog    `yaml:"shapes"`
	Audience  AudienceCatalog `yaml:"audience"`
	Context   ContextCatalog  `yaml:"context"`
}

// IntentCatalog holds the signed advertising-intent signals.
type IntentCatalog struct {
	Positive []Entry `yaml:"positive"`
	Negative []Entry `yaml:"negative"`
}

// ShapeCatalog holds document-shape patterns used as type fallbacks.
type ShapeCatalog struct {
	FAQ           Entry `yaml:"faq"`
	Review        Entry `yaml:"review"`
	Informational Entry `yaml:"informational"`
}

// AudienceCatalog holds demographic and vulnerable-group signals.
type AudienceCatalog struct {
	Age        []Entry `yaml:"age"`
	Gender     []Entry `yaml:"gender"`
	Concern    []Entry `yaml:"concern"`
	Vulnerable []Entry `yaml:"vulnerable"`
}

// ContextCatalog holds mitigating and aggravating sentence signals.
type ContextCatalog struct {
	Disclaimer   []Entry `yaml:"disclaimer"`
	Evidence     []Entry `yaml:"evidence"`
	Conditional  []Entry `yaml:"conditional"`
	Certainty    []Entry `yaml:"certainty"`
	Guarantee    []Entry `yaml:"guarantee"`
	NoSideEffect []Entry `yaml:"no_side_effect"`
}

var loadDefault = sync.OnceValues(func() (*Catalogs, error) {
	return Parse(defaultSignals)
})

// Default returns the embedded catalogs. The result is shared and must not
// be modified.
func Default() (*Catalogs, error) {
	return loadDefault()
}

// Load reads catalogs from a YAML file. An empty path returns Default.
func Load(path string) (*Catalogs, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	return Parse(data)
}

// Parse decodes and compiles catalogs from YAML.
func Parse(data []byte) (*Catalogs, error) {
	var c Catalogs
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "catalog: parse")
	}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogs) compile() error {
	tables := map[string][]Entry{
		"ambiguous":              c.Ambiguous,
		"intent.positive":        c.Intent.Positive,
		"intent.negative":        c.Intent.Negative,
		"audience.age":           c.Audience.Age,
		"audience.gender":        c.Audience.Gender,
		"audience.concern":       c.Audience.Concern,
		"audience.vulnerable":    c.Audience.Vulnerable,
		"context.disclaimer":     c.Context.Disclaimer,
		"context.evidence":       c.Context.Evidence,
		"context.conditional":    c.Context.Conditional,
		"context.certainty":      c.Context.Certainty,
		"context.guarantee":      c.Context.Guarantee,
		"context.no_side_effect": c.Context.NoSideEffect,
	}
	for table, entries := range tables {
		// Entries share backing arrays with c, so compiling in place sticks.
		for i := range entries {
			if err := entries[i].compile(); err != nil {
				return eris.Wrapf(err, "catalog: %s[%d]", table, i)
			}
		}
	}

	for _, e := range []*Entry{&c.Shapes.FAQ, &c.Shapes.Review, &c.Shapes.Informational} {
		if e.Pattern == "" {
			continue
		}
		if err := e.compile(); err != nil {
			return eris.Wrapf(err, "catalog: shapes.%s", e.Name)
		}
	}
	return nil
}

func (e *Entry) compile() error {
	if e.Pattern == "" {
		return eris.New("empty pattern")
	}
	re, err := regexp.Compile(e.Pattern)
	if err != nil {
		return eris.Wrapf(err, "compile %q", e.Pattern)
	}
	e.re = re
	return nil
}

// MatchString reports whether the entry fires anywhere in text.
func (e *Entry) MatchString(text string) bool {
	return e.re != nil && e.re.MatchString(text)
}

// Find returns the first occurrence of the entry in text, or "".
func (e *Entry) Find(text string) string {
	if e.re == nil {
		return ""
	}
	return e.re.FindString(text)
}

// FindAllIndex returns every non-overlapping occurrence as byte spans.
func (e *Entry) FindAllIndex(text string) [][]int {
	if e.re == nil {
		return nil
	}
	return e.re.FindAllStringIndex(text, -1)
}

// FirstMatch returns the first entry in order that fires in text and the
// substring it matched.
func FirstMatch(entries []Entry, text string) (*Entry, string) {
	for i := range entries {
		if m := entries[i].Find(text); m != "" {
			return &entries[i], m
		}
	}
	return nil, ""
}

// AnyMatch reports whether any entry fires in text.
func AnyMatch(entries []Entry, text string) bool {
	e, _ := FirstMatch(entries, text)
	return e != nil
}
