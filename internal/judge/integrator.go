package judge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adscreen/internal/model"
)

// Judge asks an external reviewer whether text, read within surrounding, breaks the
// advertising rules.
type Judge interface {
	Judge(ctx context.Context, text, surrounding string) (*model.AIAnalysisResult, error)
}

// Acceptance thresholds for AI verdicts.
const (
	acceptThreshold    = 0.7
	violationThreshold = 0.85
	highSeverity       = 0.9
)

// typePhrase maps a phrase found in the AI violation label to a type.
type typePhrase struct {
	Phrases []string
	Type    model.ViolationType
}

// typeTable is evaluated top to bottom; the first entry with a matching
// phrase wins.
var typeTable = []typePhrase{
	{Phrases: []string{"보장", "guarantee"}, Type: model.ViolationGuarantee},
	{Phrases: []string{"허위", "거짓", "false"}, Type: model.ViolationFalseClaim},
	{Phrases: []string{"과장", "exaggerat"}, Type: model.ViolationExaggeration},
	{Phrases: []string{"비교", "compar"}, Type: model.ViolationComparison},
	{Phrases: []string{"할인", "가격", "유인", "price"}, Type: model.ViolationPriceInducement},
	{Phrases: []string{"전후", "before"}, Type: model.ViolationBeforeAfter},
	{Phrases: []string{"후기", "경험담", "체험", "testimonial"}, Type: model.ViolationTestimonial},
}

// ResolveType maps a free-text AI label to a violation type.
func ResolveType(label string) model.ViolationType {
	lower := strings.ToLower(label)
	for _, row := range typeTable {
		for _, p := range row.Phrases {
			if strings.Contains(lower, p) {
				return row.Type
			}
		}
	}
	return model.ViolationOther
}

var articleRe = regexp.MustCompile(`^(.*?)\s*(제\s*\d+\s*조.*)$`)

// ParseLegalReference splits "의료법 제56조 제2항" into law and article.
func ParseLegalReference(ref string) []model.LegalBasis {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if m := articleRe.FindStringSubmatch(ref); m != nil && strings.TrimSpace(m[1]) != "" {
		return []model.LegalBasis{{Law: strings.TrimSpace(m[1]), Article: strings.TrimSpace(m[2]), Description: ref}}
	}
	return []model.LegalBasis{{Law: ref, Description: ref}}
}

// Integration is the outcome of judging a batch of targets.
type Integration struct {
	Judgments     []model.Judgment
	NewViolations []model.ViolationResult
}

// Integrator runs a Judge over targets one at a time.
type Integrator struct {
	judge Judge
	log   *zap.Logger
}

// NewIntegrator creates an Integrator around j.
func NewIntegrator(j Judge) *Integrator {
	return &Integrator{judge: j, log: zap.L().With(zap.String("component", "judge.integrator"))}
}

// Integrate judges each target in order. A failed call is logged and the
// target skipped. Accepted verdicts on text not already caught by a rule
// match become new violations. Cancellation of ctx skips the remaining
// targets.
func (in *Integrator) Integrate(ctx context.Context, targets []model.Target, matches []model.PatternMatch) Integration {
	var out Integration
	if in == nil || in.judge == nil {
		return out
	}

	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		seen[m.MatchedText] = struct{}{}
	}

	for i, t := range targets {
		if ctx.Err() != nil {
			in.log.Warn("judgment stopped early",
				zap.Int("remaining", len(targets)-i),
				zap.Error(ctx.Err()),
			)
			break
		}

		res, err := in.call(ctx, t)
		if err != nil {
			in.log.Warn("ai judgment failed, skipping target",
				zap.String("text", t.Text),
				zap.Error(err),
			)
			continue
		}

		out.Judgments = append(out.Judgments, model.Judgment{Target: t, Result: *res})
		if !res.IsViolation || res.Confidence < acceptThreshold {
			continue
		}
		if _, dup := seen[t.Text]; dup {
			continue
		}
		out.NewViolations = append(out.NewViolations, toViolation(t, *res))
	}
	return out
}

func (in *Integrator) call(ctx context.Context, t model.Target) (res *model.AIAnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("judge panicked: %v", r)
		}
	}()
	res, err = in.judge.Judge(ctx, t.Text, t.Context)
	if err == nil && res == nil {
		err = eris.New("judge returned no result")
	}
	return res, err
}

func toViolation(t model.Target, res model.AIAnalysisResult) model.ViolationResult {
	conf := model.ClampConfidence(res.Confidence)

	status := model.StatusLikely
	if conf >= violationThreshold {
		status = model.StatusViolation
	}
	severity := model.SeverityMedium
	if conf >= highSeverity {
		severity = model.SeverityHigh
	}

	desc := res.Reasoning
	if desc == "" {
		desc = fmt.Sprintf("AI 검토 결과 위반 의심: %s", t.Reason)
	}

	return model.ViolationResult{
		Type:        ResolveType(res.ViolationType),
		Status:      status,
		Severity:    severity,
		MatchedText: t.Text,
		Description: desc,
		LegalBasis:  ParseLegalReference(res.LegalReference),
		Confidence:  conf,
		Source:      model.SourceAI,
	}
}
