// Package ambiguous surfaces heuristically suspicious phrases that the
// deterministic rule engine may have missed.
package ambiguous

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/adscreen/internal/catalog"
	"github.com/sells-group/adscreen/internal/model"
	"github.com/sells-group/adscreen/internal/textspan"
)

const (
	// contextRadius is the rune radius around a hit kept as Target.Context.
	contextRadius = 50
	// dedupDistance is the context-relative rune distance under which two
	// identical hits count as the same target.
	dedupDistance = 10
)

// Scanner scans text against the ambiguous-expression catalog.
type Scanner struct {
	entries []catalog.Entry
}

// NewScanner creates a Scanner over the catalog's ambiguous table.
func NewScanner(c *catalog.Catalogs) *Scanner {
	return &Scanner{entries: c.Ambiguous}
}

type hit struct {
	text   string
	offset int
}

// Scan returns every ambiguous hit in text, in catalog order then text
// order, with near-duplicates removed.
func (s *Scanner) Scan(text string) []model.Target {
	if text == "" {
		return nil
	}

	var (
		targets []model.Target
		kept    []hit
	)
	for i := range s.entries {
		e := &s.entries[i]
		for _, loc := range e.FindAllIndex(text) {
			matched := text[loc[0]:loc[1]]
			window, offset := textspan.Window(text, loc[0], loc[1], contextRadius)

			if isDuplicate(kept, matched, offset) {
				continue
			}
			kept = append(kept, hit{text: matched, offset: offset})
			targets = append(targets, model.Target{
				Text:    matched,
				Context: window,
				Reason:  fmt.Sprintf("%s: %s", e.Category, e.Description),
			})
		}
	}

	if len(targets) > 0 {
		zap.L().Debug("ambiguous: scan complete",
			zap.Int("targets", len(targets)),
			zap.Int("text_len", len(text)),
		)
	}
	return targets
}

func isDuplicate(kept []hit, text string, offset int) bool {
	for _, k := range kept {
		if k.text != text {
			continue
		}
		d := k.offset - offset
		if d < 0 {
			d = -d
		}
		if d < dedupDistance {
			return true
		}
	}
	return false
}
