package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/adscreen/internal/resilience"
	"github.com/sells-group/adscreen/pkg/anthropic"
)

func fastPolicy() resilience.Policy {
	return resilience.Policy{Backoff: resilience.Backoff{
		MaxAttempts: 3,
		Initial:     time.Millisecond,
		Max:         time.Millisecond,
		Multiplier:  1,
	}}
}

func TestAnthropicJudge_Judge(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.Temperature != nil && *req.Temperature == 0 &&
			len(req.System) == 1 && req.System[0].CacheControl != nil &&
			len(req.Messages) == 1 &&
			assert.Contains(t, req.Messages[0].Content, "100% 완치") &&
			assert.Contains(t, req.Messages[0].Content, "주변 문맥")
	})).Return(textResponse(`{"is_violation": true, "confidence": 0.93, "violation_type": "보장", "reasoning": "완치 단정"}`), nil)

	j := NewAnthropicJudge(client, AnthropicConfig{Model: "claude-haiku-4-5-20251001", Retry: fastPolicy()})
	res, err := j.Judge(context.Background(), "100% 완치", "이 시술은 100% 완치를 약속합니다")
	require.NoError(t, err)
	assert.True(t, res.IsViolation)
	assert.InDelta(t, 0.93, res.Confidence, 1e-9)
	client.AssertExpectations(t)
}

func TestAnthropicJudge_RetriesTransient(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, resilience.NewTransientError(errors.New("overloaded"), 529)).Once()
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"is_violation": false, "confidence": 0.2, "reasoning": "ok"}`), nil).Once()

	j := NewAnthropicJudge(client, AnthropicConfig{Model: "m", Retry: fastPolicy()})
	res, err := j.Judge(context.Background(), "x", "")
	require.NoError(t, err)
	assert.False(t, res.IsViolation)
	client.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestAnthropicJudge_PermanentErrorNotRetried(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("invalid api key"))

	j := NewAnthropicJudge(client, AnthropicConfig{Model: "m", Retry: fastPolicy()})
	_, err := j.Judge(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "judge: review")
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestAnthropicJudge_MalformedReplyFallsBack(t *testing.T) {
	client := &mockAnthropicClient{}
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("판단 불가"), nil)

	j := NewAnthropicJudge(client, AnthropicConfig{Model: "m"})
	res, err := j.Judge(context.Background(), "x", "")
	require.NoError(t, err)
	assert.False(t, res.IsViolation)
	assert.Equal(t, 0.5, res.Confidence)
	assert.Equal(t, "판단 불가", res.Reasoning)
}

func TestAnthropicJudge_CancelledContext(t *testing.T) {
	client := &mockAnthropicClient{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	j := NewAnthropicJudge(client, AnthropicConfig{Model: "m", RequestsPerSecond: 1, Retry: fastPolicy()})
	_, err := j.Judge(ctx, "x", "")
	require.Error(t, err)
	client.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestUserPrompt(t *testing.T) {
	assert.Equal(t, "검토 대상 표현: a\n", userPrompt("a", "  "))
	assert.Contains(t, userPrompt("a", "b"), "주변 문맥: b")
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(resilience.NewTransientError(errors.New("x"), 503)))
	assert.False(t, retryable(errors.New("bad request")))
}
