package ambiguous

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/adscreen/internal/catalog"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewScanner(c)
}

func TestScan_FindsCategories(t *testing.T) {
	s := newTestScanner(t)

	targets := s.Scan("많은 분들이 효과를 보셨습니다. 통증 없이 바로 일상으로 복귀하세요.")
	require.NotEmpty(t, targets)

	var reasons []string
	for _, tg := range targets {
		reasons = append(reasons, tg.Reason)
		assert.Contains(t, tg.Context, tg.Text)
	}
	joined := strings.Join(reasons, "|")
	assert.Contains(t, joined, "social_proof: ")
	assert.Contains(t, joined, "effect_experience: ")
	assert.Contains(t, joined, "painless: ")
	assert.Contains(t, joined, "rapid_recovery: ")
}

func TestScan_ContextWindow(t *testing.T) {
	s := newTestScanner(t)
	text := strings.Repeat("가", 120) + "권위자" + strings.Repeat("나", 120)

	targets := s.Scan(text)
	require.Len(t, targets, 1)
	assert.Equal(t, "권위자", targets[0].Text)
	assert.Equal(t, 103, utf8.RuneCountInString(targets[0].Context))
}

func TestScan_DeduplicatesSameOffsets(t *testing.T) {
	s := newTestScanner(t)
	// Both hits sit deep in the text, so both are 50 runes into their windows.
	text := strings.Repeat("가", 60) + "권위자" + strings.Repeat("나", 60) + "권위자" + strings.Repeat("다", 60)

	targets := s.Scan(text)
	assert.Len(t, targets, 1)
}

func TestScan_KeepsDistinctOffsets(t *testing.T) {
	s := newTestScanner(t)
	// First hit is 2 runes into its window, second is 50.
	text := "가 권위자" + strings.Repeat("나", 80) + "권위자"

	targets := s.Scan(text)
	assert.Len(t, targets, 2)
}

func TestScan_Expertise(t *testing.T) {
	s := newTestScanner(t)
	tests := []struct {
		text string
		want string
	}{
		{"소문난 명의가 직접 진료합니다", "소문난 명의"},
		{"성형외과 명의에게 맡기세요", "성형외과 명의"},
		{"국내 권위자의 시술", "권위자"},
		{"성형 분야의 대가", "분야의 대가"},
		{"3,000명의 환자가 선택한 병원입니다", ""},
		{"노력의 대가를 누리세요", ""},
		{"10명의 의료진", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var got []string
			for _, tg := range s.Scan(tt.text) {
				if strings.HasPrefix(tg.Reason, "expertise: ") {
					got = append(got, tg.Text)
				}
			}
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestIsDuplicate_Boundary(t *testing.T) {
	kept := []hit{{text: "명의", offset: 20}}

	assert.True(t, isDuplicate(kept, "명의", 20))
	assert.True(t, isDuplicate(kept, "명의", 29))
	assert.True(t, isDuplicate(kept, "명의", 11))
	assert.False(t, isDuplicate(kept, "명의", 30))
	assert.False(t, isDuplicate(kept, "명의", 10))
	assert.False(t, isDuplicate(kept, "대가", 20))
}

func TestScan_RepeatedCopyCollapses(t *testing.T) {
	s := newTestScanner(t)
	text := strings.Repeat("최고의 시술을 강력 추천합니다. ", 10)

	targets := s.Scan(text)
	counts := make(map[string]int)
	for _, tg := range targets {
		counts[tg.Text]++
	}
	// Each copy is 18 runes long, so hits settle at window offset 50 from
	// the fourth copy on and collapse into the first such hit.
	assert.Equal(t, 4, counts["최고의"])
	assert.Equal(t, 3, counts["강력 추천"])
}

func TestScan_EmptyText(t *testing.T) {
	s := newTestScanner(t)
	assert.Empty(t, s.Scan(""))
	assert.Empty(t, s.Scan("평범한 진료 시간 안내입니다"))
}
