package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adscreen/internal/catalog"
	"github.com/sells-group/adscreen/internal/config"
	"github.com/sells-group/adscreen/internal/dispatch"
	"github.com/sells-group/adscreen/internal/fusion"
	"github.com/sells-group/adscreen/internal/judge"
	"github.com/sells-group/adscreen/internal/resilience"
	"github.com/sells-group/adscreen/internal/rules"
	"github.com/sells-group/adscreen/pkg/anthropic"
)

// screeningEnv holds the process-wide collaborators shared by every request.
type screeningEnv struct {
	Dispatcher *dispatch.Dispatcher
}

// newScreeningEnv loads catalogs and rules, builds the optional AI judge and
// registers the screening modules.
func newScreeningEnv(c *config.Config) (*screeningEnv, error) {
	log := zap.L().With(zap.String("component", "compose"))

	// Empty paths select the embedded catalogs and rules.
	catalogs, err := catalog.Load(c.Analyzer.CatalogPath)
	if err != nil {
		return nil, eris.Wrap(err, "compose: load catalogs")
	}
	dict, err := rules.LoadDictionary(c.Analyzer.RulesPath)
	if err != nil {
		return nil, eris.Wrap(err, "compose: load rules")
	}

	j, err := buildJudge(c)
	if err != nil {
		return nil, err
	}

	opts := fusionOptions(c.Analyzer)
	if j != nil {
		opts.Judge = j
	}
	mod, err := fusion.New(catalogs, dict, opts)
	if err != nil {
		return nil, err
	}

	d := dispatch.NewDispatcher(dispatch.Defaults{
		Parallel:        c.Routing.Parallel,
		Timeout:         time.Duration(c.Routing.TimeoutMs) * time.Millisecond,
		ContinueOnError: c.Routing.ContinueOnError,
	})
	if err := d.Register(mod); err != nil {
		return nil, err
	}

	log.Info("screening environment ready",
		zap.Int("rules", dict.Len()),
		zap.String("judge", c.Analyzer.Provider),
		zap.Int("modules", len(d.Modules())),
	)
	return &screeningEnv{Dispatcher: d}, nil
}

// fusionOptions maps analyzer config onto fusion options. Config zeros are
// literal: threshold 0 sends no rule match to review and max_ai_analysis 0
// disables review, while fusion reads zero as "use default".
func fusionOptions(a config.AnalyzerConfig) fusion.Options {
	opts := fusion.Options{
		ConfidenceThreshold: a.ConfidenceThreshold,
		MaxAIAnalysis:       a.MaxAIAnalysis,
	}
	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = -1
	}
	if opts.MaxAIAnalysis == 0 {
		opts.MaxAIAnalysis = -1
	}
	return opts
}

// buildJudge returns nil when AI review is off.
func buildJudge(c *config.Config) (*judge.AnthropicJudge, error) {
	switch c.Analyzer.Provider {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderAnthropic:
		if c.Anthropic.Key == "" {
			return nil, eris.New("compose: anthropic.key is required for the anthropic judge")
		}
		client := anthropic.NewClient(c.Anthropic.Key)
		return judge.NewAnthropicJudge(client, judge.AnthropicConfig{
			Model:             c.Anthropic.Model,
			MaxTokens:         c.Anthropic.MaxTokens,
			RequestsPerSecond: c.Anthropic.RequestsPerSecond,
			Burst:             c.Anthropic.Burst,
			Retry:             resilience.NewPolicy(c.Retry.MaxAttempts, c.Retry.InitialBackoffMs, c.Retry.MaxBackoffMs),
		}), nil
	default:
		return nil, eris.Errorf("compose: unknown analyzer provider %q", c.Analyzer.Provider)
	}
}
