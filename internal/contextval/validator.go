// Package contextval reassesses rule matches against the sentence they sit
// in, producing a signed confidence adjustment.
package contextval

import (
	"math"
	"strings"

	"github.com/sells-group/adscreen/internal/catalog"
	"github.com/sells-group/adscreen/internal/model"
	"github.com/sells-group/adscreen/internal/textspan"
)

// Adjustment weights.
const (
	disclaimerWeight   = -0.15
	evidenceWeight     = -0.10
	conditionalWeight  = -0.10
	certaintyWeight    = 0.20
	guaranteeWeight    = 0.15
	noSideEffectWeight = 0.15

	minAdjustment = -0.45
	maxAdjustment = 0.50

	// violationThreshold is the adjusted confidence at which a match is a
	// likely violation.
	violationThreshold = 0.7
)

// Validator applies the context catalogs to individual matches.
type Validator struct {
	cat catalog.ContextCatalog
}

// NewValidator creates a Validator over the catalog's context tables.
func NewValidator(c *catalog.Catalogs) *Validator {
	return &Validator{cat: c.Context}
}

// Validate reassesses match within text. Evidence is looked for in the whole
// text; every other signal only in the enclosing sentence.
func (v *Validator) Validate(text string, match model.PatternMatch) model.ContextValidation {
	sentence := textspan.SentenceText(text, match.Position, match.EndPosition)

	var res model.ContextValidation
	var adj float64
	var mitigating, aggravating []string

	if e, m := catalog.FirstMatch(v.cat.Disclaimer, sentence); e != nil {
		res.HasDisclaimer = true
		res.DisclaimerContent = m
		adj += disclaimerWeight
		mitigating = append(mitigating, "면책 문구("+m+")")
	}
	if catalog.AnyMatch(v.cat.Evidence, text) {
		res.HasObjectiveEvidence = true
		adj += evidenceWeight
		mitigating = append(mitigating, "객관적 근거")
	}
	if catalog.AnyMatch(v.cat.Conditional, sentence) {
		res.UsesConditionalLanguage = true
		adj += conditionalWeight
		mitigating = append(mitigating, "조건부 표현")
	}
	if catalog.AnyMatch(v.cat.Certainty, sentence) {
		adj += certaintyWeight
		aggravating = append(aggravating, "단정적 표현")
	}
	if catalog.AnyMatch(v.cat.Guarantee, sentence) {
		adj += guaranteeWeight
		aggravating = append(aggravating, "보장·약속 표현")
	}
	if catalog.AnyMatch(v.cat.NoSideEffect, sentence) {
		adj += noSideEffectWeight
		aggravating = append(aggravating, "부작용 부재 단정")
	}

	res.ConfidenceAdjustment = clampAdjustment(math.Round(adj*1000) / 1000)
	res.IsLikelyViolation = match.Confidence+res.ConfidenceAdjustment >= violationThreshold
	res.Reasoning = reasoning(mitigating, aggravating, res.IsLikelyViolation)
	return res
}

// Adjusted returns the match confidence after applying the validation,
// clamped to [0,1].
func Adjusted(match model.PatternMatch, cv model.ContextValidation) float64 {
	return model.ClampConfidence(math.Round((match.Confidence+cv.ConfidenceAdjustment)*1000) / 1000)
}

func clampAdjustment(a float64) float64 {
	return math.Max(minAdjustment, math.Min(maxAdjustment, a))
}

func reasoning(mitigating, aggravating []string, likely bool) string {
	var b strings.Builder
	switch {
	case len(mitigating) == 0 && len(aggravating) == 0:
		b.WriteString("문맥상 특이 신호가 없습니다")
	default:
		var parts []string
		if len(mitigating) > 0 {
			parts = append(parts, "완화 신호: "+strings.Join(mitigating, ", "))
		}
		if len(aggravating) > 0 {
			parts = append(parts, "강화 신호: "+strings.Join(aggravating, ", "))
		}
		b.WriteString(strings.Join(parts, "; "))
	}
	if likely {
		b.WriteString(" → 위반 가능성 높음")
	} else {
		b.WriteString(" → 위반 가능성 낮음")
	}
	return b.String()
}
