// Package audience detects targeted demographics and vulnerable-group
// exploitation signals.
package audience

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/adscreen/internal/catalog"
	"github.com/sells-group/adscreen/internal/model"
)

// Analyzer evaluates the audience catalogs. Each table is presence-only:
// a label is reported once no matter how often it fires.
type Analyzer struct {
	cat catalog.AudienceCatalog
}

// NewAnalyzer creates an Analyzer over the catalog's audience tables.
func NewAnalyzer(c *catalog.Catalogs) *Analyzer {
	return &Analyzer{cat: c.Audience}
}

// Analyze reports which audiences text addresses.
func (a *Analyzer) Analyze(text string) model.TargetAudienceAnalysis {
	res := model.TargetAudienceAnalysis{
		AgeTargeting:         labels(a.cat.Age, text),
		GenderTargeting:      labels(a.cat.Gender, text),
		ConcernTargeting:     labels(a.cat.Concern, text),
		VulnerableGroupTypes: []string{},
	}

	for i := range a.cat.Vulnerable {
		v := &a.cat.Vulnerable[i]
		if v.MatchString(text) {
			res.VulnerableGroupTypes = append(res.VulnerableGroupTypes, fmt.Sprintf("%s: %s", v.Label, v.Risk))
		}
	}
	res.TargetsVulnerableGroups = len(res.VulnerableGroupTypes) > 0

	if res.TargetsVulnerableGroups {
		zap.L().Debug("audience: vulnerable groups targeted",
			zap.Strings("groups", res.VulnerableGroupTypes),
		)
	}
	return res
}

func labels(entries []catalog.Entry, text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for i := range entries {
		e := &entries[i]
		if seen[e.Label] || !e.MatchString(text) {
			continue
		}
		seen[e.Label] = true
		out = append(out, e.Label)
	}
	return out
}
