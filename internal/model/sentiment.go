package model

// Sentiment labels.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// SentimentThreshold separates neutral from polar labels.
const SentimentThreshold = 0.15

// SentimentResult is the reduced tone of a security's news.
type SentimentResult struct {
	AvgScore float64 `json:"avg_score"`
	Label    string  `json:"label"`
	Count    int     `json:"count"`
}

// SentimentLabel maps an average score to its label.
func SentimentLabel(score float64) string {
	switch {
	case score > SentimentThreshold:
		return LabelPositive
	case score < -SentimentThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// CompetitorStats summarises peer P/E ratios.
type CompetitorStats struct {
	AvgPE float64 `json:"avg_pe"`
	MinPE float64 `json:"min_pe"`
	MaxPE float64 `json:"max_pe"`
	Count int     `json:"count"`
}
