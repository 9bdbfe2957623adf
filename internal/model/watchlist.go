package model

import "time"

// Favorite is one watchlist entry.
type Favorite struct {
	Ticker   string    `json:"ticker"`
	Category string    `json:"category"`
	AddedAt  time.Time `json:"added_at"`
}

// ETF is one entry of the discovery universe.
type ETF struct {
	Ticker      string   `json:"ticker" yaml:"ticker"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Themes      []string `json:"themes" yaml:"themes"`
}

// Snapshot is a recorded point-in-time summary of an overview.
type Snapshot struct {
	Ticker     string    `json:"ticker"`
	TakenAt    time.Time `json:"taken_at"`
	LastClose  *float64  `json:"last_close"`
	TotalScore *float64  `json:"total_score"`
	Tier       string    `json:"tier"`
	Sentiment  *float64  `json:"sentiment"`
}

// SnapshotOf summarises ov.
func SnapshotOf(ov *Overview) Snapshot {
	s := Snapshot{Ticker: ov.Ticker, TakenAt: ov.GeneratedAt, LastClose: ov.Analytics.LastClose}
	if ov.Score != nil {
		s.TotalScore = Float(ov.Score.TotalScore)
		s.Tier = ov.Score.Tier.Label
	}
	if ov.Sentiment != nil {
		s.Sentiment = Float(ov.Sentiment.AvgScore)
	}
	return s
}
