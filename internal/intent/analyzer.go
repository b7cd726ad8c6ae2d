// Package intent scores advertising intent and classifies document type.
package intent

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/adscreen/internal/catalog"
	"github.com/sells-group/adscreen/internal/model"
)

// advertisingThreshold is the intent probability at which an otherwise
// unclassified document is treated as an advertisement.
const advertisingThreshold = 0.5

// documentRule is one step of the document-type priority chain.
type documentRule struct {
	Name    string
	Matches func(ev evidence) bool
	Type    model.DocumentType
}

// evidence is what the priority chain evaluates.
type evidence struct {
	fired       map[string]bool
	probability float64
	text        string
	shapes      *catalog.ShapeCatalog
}

// documentChain is evaluated top to bottom; the first matching rule wins.
var documentChain = []documentRule{
	{"legal_reference", func(ev evidence) bool { return ev.fired["legal_reference"] }, model.DocRegulation},
	{"news_article", func(ev evidence) bool { return ev.fired["news_article"] }, model.DocNews},
	{"educational_purpose", func(ev evidence) bool { return ev.fired["educational_purpose"] }, model.DocEducation},
	{"research_reference", func(ev evidence) bool { return ev.fired["research_reference"] }, model.DocInformation},
	{"advertising_intent", func(ev evidence) bool { return ev.probability >= advertisingThreshold }, model.DocAdvertisement},
	{"faq_shape", func(ev evidence) bool { return ev.shapes.FAQ.MatchString(ev.text) }, model.DocFAQ},
	{"review_shape", func(ev evidence) bool { return ev.shapes.Review.MatchString(ev.text) }, model.DocReview},
	{"informational_shape", func(ev evidence) bool { return ev.shapes.Informational.MatchString(ev.text) }, model.DocInformation},
}

// flagRule derives a boolean flag from fired signal names.
type flagRule struct {
	Substrings []string
	Set        func(a *model.IntentAnalysis)
}

var flagRules = []flagRule{
	{[]string{"promotion", "free_offer", "discount"}, func(a *model.IntentAnalysis) { a.HasPromotionalElements = true }},
	{[]string{"call_to_action", "click_action"}, func(a *model.IntentAnalysis) { a.HasCallToAction = true }},
	{[]string{"urgency"}, func(a *model.IntentAnalysis) { a.HasUrgency = true }},
	{[]string{"price", "discount"}, func(a *model.IntentAnalysis) { a.HasPriceInfo = true }},
	{[]string{"contact"}, func(a *model.IntentAnalysis) { a.HasContactInfo = true }},
}

// Analyzer scores advertising intent from the intent catalog.
type Analyzer struct {
	signals []catalog.Entry
	shapes  catalog.ShapeCatalog
}

// NewAnalyzer creates an Analyzer over the catalog's intent and shape tables.
func NewAnalyzer(c *catalog.Catalogs) *Analyzer {
	signals := make([]catalog.Entry, 0, len(c.Intent.Positive)+len(c.Intent.Negative))
	signals = append(signals, c.Intent.Positive...)
	signals = append(signals, c.Intent.Negative...)
	return &Analyzer{signals: signals, shapes: c.Shapes}
}

// Analyze scores text. Empty text yields an UNKNOWN document with zero intent.
func (a *Analyzer) Analyze(text string) model.IntentAnalysis {
	res := model.IntentAnalysis{AdvertisingSignals: []string{}}
	fired := make(map[string]bool)

	var sum float64
	for i := range a.signals {
		s := &a.signals[i]
		if !s.MatchString(text) {
			continue
		}
		sum += s.Weight
		fired[s.Name] = true
		res.AdvertisingSignals = append(res.AdvertisingSignals, s.Name)
	}
	res.AdvertisingIntentProbability = model.ClampConfidence(math.Round(sum*1000) / 1000)

	for _, fr := range flagRules {
		if anyContains(res.AdvertisingSignals, fr.Substrings) {
			fr.Set(&res)
		}
	}

	res.DocumentType = a.classify(evidence{
		fired:       fired,
		probability: res.AdvertisingIntentProbability,
		text:        text,
		shapes:      &a.shapes,
	})
	res.Confidence = math.Min(0.95, 0.6+0.05*float64(len(res.AdvertisingSignals)))

	zap.L().Debug("intent: analyzed",
		zap.String("document_type", string(res.DocumentType)),
		zap.Float64("probability", res.AdvertisingIntentProbability),
		zap.Strings("signals", res.AdvertisingSignals),
	)
	return res
}

func (a *Analyzer) classify(ev evidence) model.DocumentType {
	for _, r := range documentChain {
		if r.Matches(ev) {
			return r.Type
		}
	}
	return model.DocUnknown
}

func anyContains(names, substrings []string) bool {
	for _, n := range names {
		for _, s := range substrings {
			if strings.Contains(n, s) {
				return true
			}
		}
	}
	return false
}
