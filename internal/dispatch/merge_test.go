package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/adscreen/internal/model"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		vs     []model.ViolationResult
		prices int
		failed int
		want   string
	}{
		{"clean", nil, 0, 0, "no violations found"},
		{"single", []model.ViolationResult{violation(model.SeverityHigh, 1)}, 0, 0, "1 violation found (critical 1, major 0, minor 0)"},
		{"with prices and failures", []model.ViolationResult{violation(model.SeverityMedium, 1), violation(model.SeverityMedium, 1)}, 3, 1,
			"2 violations found (critical 0, major 2, minor 0); 3 prices extracted; 1 module failed"},
		{"unknown severity is minor", []model.ViolationResult{violation("", 1)}, 0, 0, "1 violation found (critical 0, major 0, minor 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(tt.vs, tt.prices, tt.failed))
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	results := []model.ModuleResult{{ModuleName: "a", Violations: []model.ViolationResult{violation(model.SeverityHigh, 1.5)}}}
	out := merge(results)
	assert.Equal(t, 1.0, out.Violations[0].Confidence)
	assert.Equal(t, 1.5, results[0].Violations[0].Confidence)
}

func TestOverallConfidence(t *testing.T) {
	assert.Equal(t, 1.0, overallConfidence(nil))
	assert.InDelta(t, 0.6, overallConfidence([]model.ViolationResult{violation(model.SeverityLow, 0.4), violation(model.SeverityLow, 0.8)}), 1e-9)
}
