package model

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string  `json:"name"`
	RawScore   float64 `json:"raw_score"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Commentary string  `json:"commentary"`
}

// ScoreTier maps a total score range to a descriptive stance.
type ScoreTier struct {
	Label string `json:"label"`
}

// Score is the composite factor evaluation for one security.
type Score struct {
	Factors    []FactorScore `json:"factors"`
	TotalScore float64       `json:"total_score"`
	Tier       ScoreTier     `json:"tier"`
	WarningMsg string        `json:"warning,omitempty"`
}
