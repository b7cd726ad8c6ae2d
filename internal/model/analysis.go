package model

// AIAnalysisResult is the verdict returned by the external AI judge.
type AIAnalysisResult struct {
	IsViolation    bool    `json:"is_violation"`
	Confidence     float64 `json:"confidence"`
	ViolationType  string  `json:"violation_type,omitempty"`
	Reasoning      string  `json:"reasoning"`
	Suggestion     string  `json:"suggestion,omitempty"`
	LegalReference string  `json:"legal_reference,omitempty"`
}

// DocumentType is the coarse genre of the analyzed text.
type DocumentType string

const (
	DocAdvertisement DocumentType = "ADVERTISEMENT"
	DocInformation   DocumentType = "INFORMATION"
	DocRegulation    DocumentType = "REGULATION"
	DocEducation     DocumentType = "EDUCATION"
	DocNews          DocumentType = "NEWS"
	DocReview        DocumentType = "REVIEW"
	DocFAQ           DocumentType = "FAQ"
	DocUnknown       DocumentType = "UNKNOWN"
)

// IntentAnalysis scores how strongly a text reads as advertising.
type IntentAnalysis struct {
	DocumentType                 DocumentType `json:"document_type"`
	AdvertisingIntentProbability float64      `json:"advertising_intent_probability"`
	HasPromotionalElements       bool         `json:"has_promotional_elements"`
	HasCallToAction              bool         `json:"has_call_to_action"`
	HasUrgency                   bool         `json:"has_urgency"`
	HasPriceInfo                 bool         `json:"has_price_info"`
	HasContactInfo               bool         `json:"has_contact_info"`
	AdvertisingSignals           []string     `json:"advertising_signals"`
	Confidence                   float64      `json:"confidence"`
}

// TargetAudienceAnalysis lists the demographics a text addresses.
type TargetAudienceAnalysis struct {
	AgeTargeting            []string `json:"age_targeting"`
	GenderTargeting         []string `json:"gender_targeting"`
	ConcernTargeting        []string `json:"concern_targeting"`
	TargetsVulnerableGroups bool     `json:"targets_vulnerable_groups"`
	VulnerableGroupTypes    []string `json:"vulnerable_group_types"`
}

// ContextValidation is the sentence-level reassessment of one rule match.
type ContextValidation struct {
	IsLikelyViolation       bool    `json:"is_likely_violation"`
	Reasoning               string  `json:"reasoning"`
	HasDisclaimer           bool    `json:"has_disclaimer"`
	HasObjectiveEvidence    bool    `json:"has_objective_evidence"`
	UsesConditionalLanguage bool    `json:"uses_conditional_language"`
	DisclaimerContent       string  `json:"disclaimer_content,omitempty"`
	ConfidenceAdjustment    float64 `json:"confidence_adjustment"`
}

// Target is a phrase selected for external AI review.
type Target struct {
	Text    string `json:"text"`
	Context string `json:"context"`
	Reason  string `json:"reason"`
}

// Judgment pairs a reviewed target with the AI verdict.
type Judgment struct {
	Target Target           `json:"target"`
	Result AIAnalysisResult `json:"result"`
}

// MatchValidation pairs a rule match with its context reassessment.
type MatchValidation struct {
	Match      PatternMatch      `json:"match"`
	Validation ContextValidation `json:"validation"`
}

// ScreeningDetails carries the intermediate signals behind a module verdict.
type ScreeningDetails struct {
	Intent             *IntentAnalysis         `json:"intent,omitempty"`
	Audience           *TargetAudienceAnalysis `json:"audience,omitempty"`
	ContextValidations []MatchValidation       `json:"context_validations,omitempty"`
	AmbiguousTargets   []Target                `json:"ambiguous_targets,omitempty"`
	Judgments          []Judgment              `json:"judgments,omitempty"`
}
