package judge

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/adscreen/internal/model"
	"github.com/sells-group/adscreen/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Judge Mock ---

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

type panicJudge struct{}

func (panicJudge) Judge(context.Context, string, string) (*model.AIAnalysisResult, error) {
	panic("boom")
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 20},
	}
}
