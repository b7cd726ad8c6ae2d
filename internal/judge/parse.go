package judge

import (
	"encoding/json"
	"strings"

	"github.com/sells-group/adscreen/internal/model"
)

// verdict accepts both snake_case and camelCase keys.
type verdict struct {
	IsViolation         *bool    `json:"is_violation"`
	IsViolationCamel    *bool    `json:"isViolation"`
	Confidence          *float64 `json:"confidence"`
	ViolationType       string   `json:"violation_type"`
	ViolationTypeCamel  string   `json:"violationType"`
	Reasoning           string   `json:"reasoning"`
	Suggestion          string   `json:"suggestion"`
	LegalReference      string   `json:"legal_reference"`
	LegalReferenceCamel string   `json:"legalReference"`
}

// ParseJudgment decodes a raw AI reply. It never fails: a reply that is not
// a JSON verdict with is_violation, confidence and a non-blank reasoning
// becomes a non-violation at confidence 0.5 whose reasoning is the raw text.
func ParseJudgment(raw string) model.AIAnalysisResult {
	fallback := model.AIAnalysisResult{IsViolation: false, Confidence: 0.5, Reasoning: raw}

	var v verdict
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &v); err != nil {
		return fallback
	}
	isViolation := v.IsViolation
	if isViolation == nil {
		isViolation = v.IsViolationCamel
	}
	if isViolation == nil || v.Confidence == nil || strings.TrimSpace(v.Reasoning) == "" {
		return fallback
	}

	return model.AIAnalysisResult{
		IsViolation:    *isViolation,
		Confidence:     model.ClampConfidence(*v.Confidence),
		ViolationType:  firstNonEmpty(v.ViolationType, v.ViolationTypeCamel),
		Reasoning:      v.Reasoning,
		Suggestion:     v.Suggestion,
		LegalReference: firstNonEmpty(v.LegalReference, v.LegalReferenceCamel),
	}
}

// cleanJSON strips markdown fences and surrounding prose from a model reply.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
