// Package judge selects screening candidates for external AI review and folds
// the AI verdicts back into violation records.
package judge

import (
	"fmt"
	"math"

	"github.com/sells-group/adscreen/internal/model"
)

// Defaults for candidate selection.
const (
	DefaultConfidenceThreshold = 0.7
	DefaultMaxTargets          = 5
)

// SelectTargets returns rule matches below threshold followed by the
// ambiguous targets, truncated to limit. Low-confidence matches come first.
func SelectTargets(matches []model.PatternMatch, ambiguous []model.Target, threshold float64, limit int) []model.Target {
	if limit <= 0 {
		return nil
	}

	targets := make([]model.Target, 0, min(limit, len(matches)+len(ambiguous)))
	for _, m := range matches {
		if len(targets) == limit {
			return targets
		}
		if m.Confidence >= threshold {
			continue
		}
		targets = append(targets, model.Target{
			Text:    m.MatchedText,
			Context: m.Context,
			Reason:  fmt.Sprintf("low confidence (%d%%)", int(math.Round(m.Confidence*100))),
		})
	}
	for _, t := range ambiguous {
		if len(targets) == limit {
			break
		}
		targets = append(targets, t)
	}
	return targets
}
