package model

// ViolationType classifies what kind of statutory problem a finding represents.
type ViolationType string

const (
	ViolationGuarantee       ViolationType = "guarantee"
	ViolationFalseClaim      ViolationType = "false_claim"
	ViolationExaggeration    ViolationType = "exaggeration"
	ViolationComparison      ViolationType = "comparison"
	ViolationPriceInducement ViolationType = "price_inducement"
	ViolationBeforeAfter     ViolationType = "before_after"
	ViolationTestimonial     ViolationType = "testimonial"
	ViolationOther           ViolationType = "other"
)

// AllViolationTypes returns all defined violation types.
func AllViolationTypes() []ViolationType {
	return []ViolationType{
		ViolationGuarantee,
		ViolationFalseClaim,
		ViolationExaggeration,
		ViolationComparison,
		ViolationPriceInducement,
		ViolationBeforeAfter,
		ViolationTestimonial,
		ViolationOther,
	}
}

// ParseViolationType converts a string into a ViolationType, defaulting to other.
func ParseViolationType(s string) ViolationType {
	for _, t := range AllViolationTypes() {
		if string(t) == s {
			return t
		}
	}
	return ViolationOther
}

// ViolationStatus grades how certain a finding is.
type ViolationStatus string

const (
	StatusViolation ViolationStatus = "violation"
	StatusLikely    ViolationStatus = "likely"
	StatusPossible  ViolationStatus = "possible"
	StatusClean     ViolationStatus = "clean"
)

// Severity is the impact bucket of a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Bucket returns the summary label for the severity (critical/major/minor).
func (s Severity) Bucket() string {
	switch s {
	case SeverityHigh:
		return "critical"
	case SeverityMedium:
		return "major"
	default:
		return "minor"
	}
}

// ParseSeverity converts a string into a Severity, defaulting to low.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityHigh, SeverityMedium:
		return Severity(s)
	default:
		return SeverityLow
	}
}

// ViolationSource records which signal produced a finding.
type ViolationSource string

const (
	SourceRule ViolationSource = "rule"
	SourceAI   ViolationSource = "ai"
)

// LegalBasis cites the statute a finding relates to.
type LegalBasis struct {
	Law         string `json:"law" yaml:"law"`
	Article     string `json:"article" yaml:"article"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// ViolationResult is a single graded finding surfaced to callers.
type ViolationResult struct {
	Type        ViolationType   `json:"type"`
	Status      ViolationStatus `json:"status"`
	Severity    Severity        `json:"severity"`
	MatchedText string          `json:"matched_text"`
	Description string          `json:"description"`
	LegalBasis  []LegalBasis    `json:"legal_basis,omitempty"`
	Confidence  float64         `json:"confidence"`
	Source      ViolationSource `json:"source,omitempty"`
}

// PatternMatch is a single deterministic rule-engine hit. Position and
// EndPosition are byte offsets into the analyzed text.
type PatternMatch struct {
	RuleID      string        `json:"rule_id,omitempty"`
	MatchedText string        `json:"matched_text"`
	Context     string        `json:"context"`
	Confidence  float64       `json:"confidence"`
	Position    int           `json:"position"`
	EndPosition int           `json:"end_position"`
	Type        ViolationType `json:"type,omitempty"`
	Severity    Severity      `json:"severity,omitempty"`
	Description string        `json:"description,omitempty"`
	LegalBasis  []LegalBasis  `json:"legal_basis,omitempty"`
}

// ClampConfidence bounds a confidence value to [0, 1].
func ClampConfidence(c float64) float64 {
	if c != c { // NaN
		return 0
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
