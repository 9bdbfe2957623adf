package model

import "time"

// Overview is the consolidated snapshot for one security. It is a view,
// recomputed per request, and never nil.
type Overview struct {
	RequestID       string             `json:"request_id"`
	Ticker          string             `json:"ticker"`
	Fundamentals    Fundamentals       `json:"fundamentals"`
	Analytics       Analytics          `json:"analytics"`
	Sentiment       *SentimentResult   `json:"sentiment"`
	News            []NewsItem         `json:"news"`
	Competitors     []string           `json:"competitors"`
	CompetitorStats *CompetitorStats   `json:"competitor_stats"`
	Score           *Score             `json:"score"`
	Sentences       []string           `json:"sentences"`
	Narrative       string             `json:"narrative"`
	Sources         map[FetchKind]Tier `json:"sources"`
	Series          PriceSeries        `json:"-"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// RelativePoint is one date of a base-100 normalized two-security series.
type RelativePoint struct {
	Date time.Time `json:"date"`
	A    float64   `json:"a"`
	B    float64   `json:"b"`
}

// Comparison reports two overviews side by side, keyed by ticker.
type Comparison struct {
	Tickers         [2]string                   `json:"tickers"`
	Metrics         map[string]Analytics        `json:"metrics"`
	Fundamentals    map[string]Fundamentals     `json:"fundamentals"`
	Competitors     map[string][]string         `json:"competitors"`
	CompetitorStats map[string]*CompetitorStats `json:"competitor_stats"`
	Sentiment       map[string]*SentimentResult `json:"sentiment"`
	Scores          map[string]*Score           `json:"scores"`
	ScoreDelta      *float64                    `json:"score_delta"`
	SentimentDelta  *float64                    `json:"sentiment_delta"`
	Relative        []RelativePoint             `json:"relative"`
}
