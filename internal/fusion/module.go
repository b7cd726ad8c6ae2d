// Package fusion is the rule+AI screening module: it layers ambiguity,
// intent, audience and context signals over deterministic rule matches and
// optionally asks an AI judge about the doubtful ones.
package fusion

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adscreen/internal/ambiguous"
	"github.com/sells-group/adscreen/internal/audience"
	"github.com/sells-group/adscreen/internal/catalog"
	"github.com/sells-group/adscreen/internal/contextval"
	"github.com/sells-group/adscreen/internal/intent"
	"github.com/sells-group/adscreen/internal/judge"
	"github.com/sells-group/adscreen/internal/model"
	"github.com/sells-group/adscreen/internal/rules"
	"github.com/sells-group/adscreen/internal/textspan"
)

const (
	// Name is the dispatcher registration name.
	Name    = "ruleAIModule"
	Version = "1.0.0"

	violationThreshold = 0.85
)

// Options tunes AI candidate selection. Zero values take the judge defaults;
// a negative threshold sends no rule match to review and a negative cap
// turns review off.
type Options struct {
	ConfidenceThreshold float64
	MaxAIAnalysis       int
	// Judge is optional; without it no AI review happens.
	Judge judge.Judge
}

// Module implements dispatch.Module.
type Module struct {
	matcher    rules.Matcher
	scanner    *ambiguous.Scanner
	intent     *intent.Analyzer
	audience   *audience.Analyzer
	validator  *contextval.Validator
	integrator *judge.Integrator
	threshold  float64
	maxTargets int
}

// New builds the module. Analyzers share c; matcher supplies rule hits.
func New(c *catalog.Catalogs, matcher rules.Matcher, opts Options) (*Module, error) {
	if c == nil {
		return nil, eris.New("fusion: catalogs are required")
	}
	if matcher == nil {
		return nil, eris.New("fusion: rule matcher is required")
	}
	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = judge.DefaultConfidenceThreshold
	}
	if opts.MaxAIAnalysis == 0 {
		opts.MaxAIAnalysis = judge.DefaultMaxTargets
	}

	m := &Module{
		matcher:    matcher,
		scanner:    ambiguous.NewScanner(c),
		intent:     intent.NewAnalyzer(c),
		audience:   audience.NewAnalyzer(c),
		validator:  contextval.NewValidator(c),
		threshold:  opts.ConfidenceThreshold,
		maxTargets: opts.MaxAIAnalysis,
	}
	if opts.Judge != nil {
		m.integrator = judge.NewIntegrator(opts.Judge)
	}
	return m, nil
}

func (m *Module) Name() string    { return Name }
func (m *Module) Version() string { return Version }
func (m *Module) Enabled() bool   { return true }

// Analyze screens input.Text. Direct rule violations come first, AI-derived
// ones after them.
func (m *Module) Analyze(ctx context.Context, input model.ModuleInput) (*model.ModuleResult, error) {
	start := time.Now()
	text := textspan.Normalize(input.Text)

	matches := m.matcher.Match(text)
	targets := m.scanner.Scan(text)
	ia := m.intent.Analyze(text)
	ta := m.audience.Analyze(text)

	details := &model.ScreeningDetails{
		Intent:           &ia,
		Audience:         &ta,
		AmbiguousTargets: targets,
	}

	violations := make([]model.ViolationResult, 0, len(matches))
	for _, pm := range matches {
		cv := m.validator.Validate(text, pm)
		details.ContextValidations = append(details.ContextValidations, model.MatchValidation{Match: pm, Validation: cv})
		violations = append(violations, directViolation(pm, cv))
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "fusion: analyze")
	}

	if m.integrator != nil {
		selected := judge.SelectTargets(matches, targets, m.threshold, m.maxTargets)
		if len(selected) > 0 {
			res := m.integrator.Integrate(ctx, selected, matches)
			details.Judgments = res.Judgments
			violations = append(violations, res.NewViolations...)
		}
	}

	zap.L().Debug("fusion analysis complete",
		zap.String("component", "fusion"),
		zap.Int("matches", len(matches)),
		zap.Int("ambiguous", len(targets)),
		zap.String("document_type", string(ia.DocumentType)),
		zap.Int("violations", len(violations)),
	)

	return &model.ModuleResult{
		ModuleName:     Name,
		Version:        Version,
		Violations:     violations,
		ProcessingTime: time.Since(start).Milliseconds(),
		Details:        details,
	}, nil
}

// directViolation grades a rule match by its context-adjusted confidence.
func directViolation(pm model.PatternMatch, cv model.ContextValidation) model.ViolationResult {
	conf := contextval.Adjusted(pm, cv)

	status := model.StatusPossible
	switch {
	case conf >= violationThreshold:
		status = model.StatusViolation
	case cv.IsLikelyViolation:
		status = model.StatusLikely
	}

	desc := pm.Description
	if cv.Reasoning != "" {
		if desc != "" {
			desc += " (" + cv.Reasoning + ")"
		} else {
			desc = cv.Reasoning
		}
	}

	return model.ViolationResult{
		Type:        pm.Type,
		Status:      status,
		Severity:    pm.Severity,
		MatchedText: pm.MatchedText,
		Description: desc,
		LegalBasis:  pm.LegalBasis,
		Confidence:  conf,
		Source:      model.SourceRule,
	}
}
