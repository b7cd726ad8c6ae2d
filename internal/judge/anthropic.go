package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/adscreen/internal/model"
	"github.com/sells-group/adscreen/internal/resilience"
	"github.com/sells-group/adscreen/pkg/anthropic"
)

const systemPrompt = `당신은 한국 의료법 및 의료광고 심의 기준에 정통한 의료광고 검토자입니다.
주어진 표현이 주변 문맥 안에서 의료법 제56조 등 의료광고 규정을 위반하는지 판단하십시오.

다음 JSON 객체 하나만 출력하십시오. 다른 설명은 붙이지 마십시오.
{
  "is_violation": true 또는 false,
  "confidence": 0.0에서 1.0 사이의 숫자,
  "violation_type": "보장 | 허위 | 과장 | 비교 | 가격 유인 | 전후 사진 | 치료 경험담 | 기타",
  "reasoning": "판단 근거",
  "suggestion": "수정 제안 (선택)",
  "legal_reference": "관련 법 조항, 예: 의료법 제56조 제2항 (선택)"
}`

// AnthropicConfig configures AnthropicJudge.
type AnthropicConfig struct {
	Model             string
	MaxTokens         int64
	RequestsPerSecond float64
	Burst             int
	Retry             resilience.Policy
}

// AnthropicJudge implements Judge with a Claude model.
type AnthropicJudge struct {
	client  anthropic.Client
	cfg     AnthropicConfig
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewAnthropicJudge creates a judge. Calls are paced by a token bucket and
// transient transport failures are retried under cfg.Retry.
func NewAnthropicJudge(client anthropic.Client, cfg AnthropicConfig) *AnthropicJudge {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = resilience.DefaultPolicy()
	}
	if cfg.Retry.Retryable == nil {
		cfg.Retry.Retryable = retryable
	}
	if cfg.Retry.OnRetry == nil {
		cfg.Retry.OnRetry = resilience.LogRetries("anthropic", "judge")
	}

	return &AnthropicJudge{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		log:     zap.L().With(zap.String("component", "judge.anthropic")),
	}
}

// Judge implements Judge.
func (j *AnthropicJudge) Judge(ctx context.Context, text, surrounding string) (*model.AIAnalysisResult, error) {
	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       j.cfg.Model,
		MaxTokens:   j.cfg.MaxTokens,
		System:      anthropic.CachedSystem(systemPrompt),
		Messages:    []anthropic.Message{{Role: "user", Content: userPrompt(text, surrounding)}},
		Temperature: &temp,
	}

	resp, err := resilience.Call(ctx, j.cfg.Retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		if err := j.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "judge: rate limit wait")
		}
		return j.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "judge: review %q", text)
	}

	resp.Usage.LogCost(j.cfg.Model, "judge")
	res := ParseJudgment(resp.Text())
	j.log.Debug("ai judgment",
		zap.String("text", text),
		zap.Bool("is_violation", res.IsViolation),
		zap.Float64("confidence", res.Confidence),
	)
	return &res, nil
}

func userPrompt(text, surrounding string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "검토 대상 표현: %s\n", text)
	if strings.TrimSpace(surrounding) != "" {
		fmt.Fprintf(&b, "주변 문맥: %s\n", surrounding)
	}
	return b.String()
}

func retryable(err error) bool {
	return resilience.IsTransient(err) || resilience.IsTransientStatus(anthropic.StatusCode(err))
}
