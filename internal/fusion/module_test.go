package fusion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/adscreen/internal/catalog"
	"github.com/sells-group/adscreen/internal/model"
	"github.com/sells-group/adscreen/internal/rules"
)

type mockJudge struct {
	mock.Mock
}

func (m *mockJudge) Judge(ctx context.Context, text, surrounding string) (*model.AIAnalysisResult, error) {
	args := m.Called(ctx, text, surrounding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AIAnalysisResult), args.Error(1)
}

func newModule(t *testing.T, opts Options) *Module {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	dict, err := rules.DefaultDictionary()
	require.NoError(t, err)
	m, err := New(c, dict, opts)
	require.NoError(t, err)
	return m
}

func TestNew_RequiresCollaborators(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	_, err = New(nil, rules.MatcherFunc(func(string) []model.PatternMatch { return nil }), Options{})
	assert.Error(t, err)
	_, err = New(c, nil, Options{})
	assert.Error(t, err)
}

func TestModule_Identity(t *testing.T) {
	m := newModule(t, Options{})
	assert.Equal(t, "ruleAIModule", m.Name())
	assert.Equal(t, Version, m.Version())
	assert.True(t, m.Enabled())
}

func TestAnalyze_GuaranteeIsViolation(t *testing.T) {
	m := newModule(t, Options{})
	res, err := m.Analyze(context.Background(), model.ModuleInput{Text: "저희 병원은 효과를 보장합니다. 지금 바로 예약하세요!"})
	require.NoError(t, err)

	require.Len(t, res.Violations, 1)
	v := res.Violations[0]
	assert.Equal(t, model.ViolationGuarantee, v.Type)
	assert.Equal(t, model.StatusViolation, v.Status)
	assert.Equal(t, model.SeverityHigh, v.Severity)
	assert.Equal(t, model.SourceRule, v.Source)
	assert.Equal(t, 1.0, v.Confidence)
	assert.NotEmpty(t, v.LegalBasis)

	require.NotNil(t, res.Details)
	require.Len(t, res.Details.ContextValidations, 1)
	assert.InDelta(t, 0.15, res.Details.ContextValidations[0].Validation.ConfidenceAdjustment, 1e-9)
	assert.True(t, res.Details.Intent.HasCallToAction)
	assert.Empty(t, res.Details.Judgments)
}

func TestAnalyze_DisclaimerLowersToPossible(t *testing.T) {
	j := &mockJudge{}
	j.On("Judge", mock.Anything, "최고의", mock.Anything).
		Return(&model.AIAnalysisResult{IsViolation: true, Confidence: 0.9, ViolationType: "과장"}, nil)

	m := newModule(t, Options{Judge: j})
	res, err := m.Analyze(context.Background(), model.ModuleInput{Text: "최고의 결과를 드리지만 개인 차이가 있을 수 있습니다."})
	require.NoError(t, err)

	require.Len(t, res.Violations, 1, "ai verdict on an already matched phrase adds nothing")
	v := res.Violations[0]
	assert.Equal(t, model.StatusPossible, v.Status)
	assert.InDelta(t, 0.5, v.Confidence, 1e-9)
	assert.True(t, res.Details.ContextValidations[0].Validation.HasDisclaimer)

	// Once as a low-confidence match, once as an ambiguous hit.
	assert.Len(t, res.Details.Judgments, 2)
	j.AssertNumberOfCalls(t, "Judge", 2)
}

func TestAnalyze_AIViolationAppendedAfterRuleViolations(t *testing.T) {
	j := &mockJudge{}
	j.On("Judge", mock.Anything, "최고의", mock.Anything).
		Return(&model.AIAnalysisResult{IsViolation: false, Confidence: 0.4}, nil)
	j.On("Judge", mock.Anything, "최고의 명의", mock.Anything).
		Return(&model.AIAnalysisResult{IsViolation: true, Confidence: 0.88, ViolationType: "과장 광고", Reasoning: "근거 없는 권위 표현"}, nil)

	m := newModule(t, Options{Judge: j})
	res, err := m.Analyze(context.Background(), model.ModuleInput{Text: "최고의 명의가 직접 시술합니다."})
	require.NoError(t, err)

	require.Len(t, res.Violations, 2)
	assert.Equal(t, model.SourceRule, res.Violations[0].Source)
	ai := res.Violations[1]
	assert.Equal(t, model.SourceAI, ai.Source)
	assert.Equal(t, "최고의 명의", ai.MatchedText)
	assert.Equal(t, model.ViolationExaggeration, ai.Type)
	assert.Equal(t, model.StatusViolation, ai.Status)
	assert.Equal(t, model.SeverityMedium, ai.Severity)
}

func TestAnalyze_RespectsAICap(t *testing.T) {
	j := &mockJudge{}
	m := newModule(t, Options{Judge: j, MaxAIAnalysis: -1})
	res, err := m.Analyze(context.Background(), model.ModuleInput{Text: "최고의 명의가 강력 추천합니다."})
	require.NoError(t, err)
	assert.Empty(t, res.Details.Judgments)
	j.AssertNotCalled(t, "Judge", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_EmptyText(t *testing.T) {
	m := newModule(t, Options{})
	res, err := m.Analyze(context.Background(), model.ModuleInput{})
	require.NoError(t, err)
	assert.Empty(t, res.Violations)
	assert.Equal(t, model.DocUnknown, res.Details.Intent.DocumentType)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newModule(t, Options{})
	_, err := m.Analyze(ctx, model.ModuleInput{Text: "효과를 보장합니다"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_CustomMatcher(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	text := "많은 분들이 효과를 보셨습니다. 개인 차이가 있을 수 있습니다."
	matcher := rules.MatcherFunc(func(s string) []model.PatternMatch {
		return []model.PatternMatch{{
			MatchedText: s, Confidence: 0.7, Position: 0, EndPosition: len(s),
			Type: model.ViolationTestimonial, Severity: model.SeverityMedium,
		}}
	})
	m, err := New(c, matcher, Options{})
	require.NoError(t, err)

	res, err := m.Analyze(context.Background(), model.ModuleInput{Text: text})
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)
	assert.InDelta(t, 0.55, res.Violations[0].Confidence, 1e-9)
	assert.Equal(t, model.StatusPossible, res.Violations[0].Status)
}

func TestAnalyze_NegativeThresholdSkipsRuleMatches(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	matcher := rules.MatcherFunc(func(s string) []model.PatternMatch {
		return []model.PatternMatch{{
			MatchedText: "상담", Confidence: 0.1, Position: 0, EndPosition: len("상담"),
			Type: model.ViolationExaggeration, Severity: model.SeverityLow,
		}}
	})
	j := &mockJudge{}
	m, err := New(c, matcher, Options{Judge: j, ConfidenceThreshold: -1})
	require.NoError(t, err)

	res, err := m.Analyze(context.Background(), model.ModuleInput{Text: "상담 안내입니다"})
	require.NoError(t, err)
	assert.Empty(t, res.Details.Judgments)
	j.AssertNotCalled(t, "Judge", mock.Anything, mock.Anything, mock.Anything)
}

func TestDirectViolation_Grades(t *testing.T) {
	pm := model.PatternMatch{MatchedText: "x", Confidence: 0.8, Description: "desc"}

	v := directViolation(pm, model.ContextValidation{ConfidenceAdjustment: 0.1, IsLikelyViolation: true, Reasoning: "r"})
	assert.Equal(t, model.StatusViolation, v.Status)
	assert.Equal(t, "desc (r)", v.Description)

	v = directViolation(pm, model.ContextValidation{IsLikelyViolation: true})
	assert.Equal(t, model.StatusLikely, v.Status)
	assert.Equal(t, "desc", v.Description)

	v = directViolation(pm, model.ContextValidation{ConfidenceAdjustment: -0.2})
	assert.Equal(t, model.StatusPossible, v.Status)
	assert.InDelta(t, 0.6, v.Confidence, 1e-9)
}
