package dispatch

import (
	"context"
	"sync/atomic"

	"github.com/sells-group/adscreen/internal/model"
)

// stubModule is a configurable Module for dispatcher tests.
type stubModule struct {
	name     string
	version  string
	disabled bool
	analyze  func(ctx context.Context, in model.ModuleInput) (*model.ModuleResult, error)
	calls    atomic.Int32
}

func (s *stubModule) Name() string    { return s.name }
func (s *stubModule) Version() string { return s.version }
func (s *stubModule) Enabled() bool   { return !s.disabled }

func (s *stubModule) Analyze(ctx context.Context, in model.ModuleInput) (*model.ModuleResult, error) {
	s.calls.Add(1)
	if s.analyze == nil {
		return &model.ModuleResult{}, nil
	}
	return s.analyze(ctx, in)
}

func returning(vs ...model.ViolationResult) func(context.Context, model.ModuleInput) (*model.ModuleResult, error) {
	return func(context.Context, model.ModuleInput) (*model.ModuleResult, error) {
		return &model.ModuleResult{Violations: vs}, nil
	}
}

func failing(err error) func(context.Context, model.ModuleInput) (*model.ModuleResult, error) {
	return func(context.Context, model.ModuleInput) (*model.ModuleResult, error) {
		return nil, err
	}
}

// hang blocks until release is closed, ignoring ctx.
func hang(release <-chan struct{}) func(context.Context, model.ModuleInput) (*model.ModuleResult, error) {
	return func(context.Context, model.ModuleInput) (*model.ModuleResult, error) {
		<-release
		return &model.ModuleResult{Violations: []model.ViolationResult{{MatchedText: "late"}}}, nil
	}
}

func violation(sev model.Severity, conf float64) model.ViolationResult {
	return model.ViolationResult{Type: model.ViolationOther, Status: model.StatusLikely, Severity: sev, Confidence: conf}
}

func boolPtr(b bool) *bool { return &b }
