package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/adscreen/internal/model"
)

func TestDefaultDictionary(t *testing.T) {
	d, err := DefaultDictionary()
	require.NoError(t, err)
	assert.Greater(t, d.Len(), 5)
}

func TestDictionary_Match(t *testing.T) {
	d, err := DefaultDictionary()
	require.NoError(t, err)

	text := "국내 1위 병원에서 효과를 보장합니다. 부작용 없는 시술, 30% 할인!"
	matches := d.Match(text)
	require.NotEmpty(t, matches)

	byRule := make(map[string]model.PatternMatch)
	for _, m := range matches {
		byRule[m.RuleID] = m
		assert.LessOrEqual(t, m.Position, m.EndPosition)
		assert.LessOrEqual(t, m.EndPosition, len(text))
		assert.Equal(t, text[m.Position:m.EndPosition], m.MatchedText)
		assert.Contains(t, m.Context, m.MatchedText)
	}

	g, ok := byRule["effect_guarantee"]
	require.True(t, ok)
	assert.Equal(t, model.ViolationGuarantee, g.Type)
	assert.Equal(t, model.SeverityHigh, g.Severity)
	assert.InDelta(t, 0.9, g.Confidence, 0.001)
	require.Len(t, g.LegalBasis, 1)
	assert.Equal(t, "의료법", g.LegalBasis[0].Law)

	assert.Contains(t, byRule, "no_side_effect")
	assert.Contains(t, byRule, "superlative")
	assert.Contains(t, byRule, "price_inducement")
}

func TestDictionary_GlobalScan(t *testing.T) {
	d, err := ParseDictionary([]byte("rules:\n  - id: r\n    type: other\n    confidence: 1.5\n    pattern: '특가'\n"))
	require.NoError(t, err)

	matches := d.Match(strings.Repeat("특가 ", 3))
	assert.Len(t, matches, 3)
	assert.Equal(t, 1.0, matches[0].Confidence, "confidence is clamped")
	assert.Equal(t, model.SeverityLow, matches[0].Severity)
}

func TestDictionary_EmptyText(t *testing.T) {
	d, err := DefaultDictionary()
	require.NoError(t, err)
	assert.Empty(t, d.Match(""))
}

func TestParseDictionary_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing id", "rules:\n  - pattern: 'x'\n", "no id"},
		{"duplicate", "rules:\n  - id: a\n    pattern: 'x'\n  - id: a\n    pattern: 'y'\n", "duplicate"},
		{"bad regex", "rules:\n  - id: a\n    pattern: '(x'\n", "compile a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDictionary([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMatcherFunc(t *testing.T) {
	m := MatcherFunc(func(text string) []model.PatternMatch {
		return []model.PatternMatch{{MatchedText: text}}
	})
	assert.Equal(t, "x", m.Match("x")[0].MatchedText)
}
