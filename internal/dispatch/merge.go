package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/adscreen/internal/model"
)

// merge concatenates module results in order. Confidence is the mean
// violation confidence, or exactly 1 when nothing was found.
func merge(results []model.ModuleResult) *model.ModuleOutput {
	out := &model.ModuleOutput{
		ID:         uuid.NewString(),
		Violations: []model.ViolationResult{},
		AnalyzedAt: time.Now().UTC(),
		Modules:    make([]model.ModuleResult, 0, len(results)),
	}

	var failed int
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		vs := make([]model.ViolationResult, len(r.Violations))
		for i, v := range r.Violations {
			v.Confidence = model.ClampConfidence(v.Confidence)
			vs[i] = v
		}
		r.Violations = vs
		out.Violations = append(out.Violations, vs...)
		out.Prices = append(out.Prices, r.Prices...)
		out.Modules = append(out.Modules, r)
	}

	out.Confidence = overallConfidence(out.Violations)
	out.Summary = summarize(out.Violations, len(out.Prices), failed)
	return out
}

func overallConfidence(vs []model.ViolationResult) float64 {
	if len(vs) == 0 {
		return 1.0
	}
	var sum float64
	for _, v := range vs {
		sum += v.Confidence
	}
	return model.ClampConfidence(sum / float64(len(vs)))
}

func summarize(vs []model.ViolationResult, prices, failed int) string {
	var b strings.Builder
	if len(vs) == 0 {
		b.WriteString("no violations found")
	} else {
		counts := map[string]int{}
		for _, v := range vs {
			counts[v.Severity.Bucket()]++
		}
		fmt.Fprintf(&b, "%d %s found (critical %d, major %d, minor %d)",
			len(vs), plural(len(vs), "violation", "violations"),
			counts["critical"], counts["major"], counts["minor"])
	}
	if prices > 0 {
		fmt.Fprintf(&b, "; %d %s extracted", prices, plural(prices, "price", "prices"))
	}
	if failed > 0 {
		fmt.Fprintf(&b, "; %d %s failed", failed, plural(failed, "module", "modules"))
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
