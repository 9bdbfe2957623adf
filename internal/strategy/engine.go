// Package strategy turns analytics and sentiment into a composite score.
// The score is descriptive; it never selects between securities.
package strategy

import (
	"MarketOverview/internal/calculator"
	"MarketOverview/internal/model"
)

// Tiers maps a total score to a stance, highest first.
var Tiers = []struct {
	MinScore float64
	Tier     model.ScoreTier
}{
	{1.2, model.ScoreTier{Label: "strong buy"}},
	{0.4, model.ScoreTier{Label: "buy"}},
	{-0.4, model.ScoreTier{Label: "hold"}},
	{-1.2, model.ScoreTier{Label: "sell"}},
}

// DefaultTier is used for scores below every threshold.
var DefaultTier = model.ScoreTier{Label: "strong sell"}

// OverboughtRSI triggers a warning on the score.
const OverboughtRSI = 85

func mapTier(total float64) model.ScoreTier {
	for _, t := range Tiers {
		if total >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

// Evaluate scores a security. It returns nil when analytics are not
// available.
func Evaluate(a model.Analytics, s *model.SentimentResult) *model.Score {
	if !a.Available() {
		return nil
	}

	others := []factor{scoreDeviation(a), scoreRSI(a), scoreTrend(a), scoreSentiment(s)}
	sum, n := 0.0, 0
	for _, f := range others {
		if f.ok {
			sum += f.score.RawScore
			n++
		}
	}
	othersAvg := 0.0
	if n > 0 {
		othersAvg = sum / float64(n)
	}
	all := []factor{others[0], others[1], score52WeekPosition(a, othersAvg), others[2], others[3]}

	weights := 0.0
	for _, f := range all {
		if f.ok {
			weights += f.score.Weight
		}
	}
	if weights == 0 {
		return nil
	}

	score := &model.Score{Factors: []model.FactorScore{}}
	total := 0.0
	for _, f := range all {
		if !f.ok {
			continue
		}
		fs := f.score
		fs.Weight = calculator.Round(fs.Weight/weights, 4)
		fs.Weighted = calculator.Round(fs.RawScore*fs.Weight, 4)
		total += fs.RawScore * f.score.Weight / weights
		score.Factors = append(score.Factors, fs)
	}
	score.TotalScore = calculator.Round(total, 3)
	score.Tier = mapTier(score.TotalScore)

	if a.RSI14 != nil && *a.RSI14 > OverboughtRSI {
		score.WarningMsg = "RSI above 85: overbought, consider taking profit"
	}
	return score
}
