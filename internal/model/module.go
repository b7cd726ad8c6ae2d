package model

import "time"

// ModuleInput is the immutable request snapshot handed to every module.
type ModuleInput struct {
	Text string `json:"text"`
}

// Price is an extracted price mention. Produced by pricing modules only.
type Price struct {
	Item     string  `json:"item"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Text     string  `json:"text,omitempty"`
}

// ModuleResult is the output of one analysis module.
type ModuleResult struct {
	ModuleName     string            `json:"module_name"`
	Version        string            `json:"version,omitempty"`
	Violations     []ViolationResult `json:"violations"`
	Prices         []Price           `json:"prices,omitempty"`
	ProcessingTime int64             `json:"processing_time_ms"`
	Error          string            `json:"error,omitempty"`
	Details        *ScreeningDetails `json:"details,omitempty"`
}

// ModuleOutput is the merged verdict across all dispatched modules.
type ModuleOutput struct {
	ID             string            `json:"id"`
	Violations     []ViolationResult `json:"violations"`
	Prices         []Price           `json:"prices,omitempty"`
	Summary        string            `json:"summary"`
	Confidence     float64           `json:"confidence"`
	ProcessingTime int64             `json:"processing_time_ms"`
	AnalyzedAt     time.Time         `json:"analyzed_at"`
	Modules        []ModuleResult    `json:"modules,omitempty"`
}
