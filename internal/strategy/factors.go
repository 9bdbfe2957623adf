package strategy

import (
	"fmt"
	"math"

	"MarketOverview/internal/model"
)

// Base factor weights. They are renormalized over the factors that have
// data, so a missing factor never drags the total toward zero.
const (
	weightDeviation = 0.30
	weightRSI       = 0.25
	weightPosition  = 0.15
	weightTrend     = 0.15
	weightSentiment = 0.15
)

// factor is a scored input before weight normalization. ok is false when
// the underlying metric is unavailable.
type factor struct {
	score model.FactorScore
	ok    bool
}

func newFactor(name string, raw, weight float64, commentary string) factor {
	return factor{
		score: model.FactorScore{Name: name, RawScore: raw, Weight: weight, Commentary: commentary},
		ok:    true,
	}
}

// band maps v onto the first threshold it does not exceed.
func band(v float64, limits []float64, scores []float64) float64 {
	for i, l := range limits {
		if v <= l {
			return scores[i]
		}
	}
	return scores[len(scores)-1]
}

var ladder = []float64{2.0, 1.5, 1.0, 0.5, 0, -0.5, -1.0, -1.5, -2.0}

// scoreDeviation scores the distance of the last close from SMA50, or
// SMA20 when the long average is not yet defined.
func scoreDeviation(a model.Analytics) factor {
	base, label := a.SMA50, "SMA50"
	if base == nil {
		base, label = a.SMA20, "SMA20"
	}
	if base == nil || *base == 0 || a.LastClose == nil {
		return factor{}
	}
	dev := (*a.LastClose - *base) / *base * 100
	raw := band(dev, []float64{-20, -10, -5, 0, 5, 10, 15, 20}, ladder)
	return newFactor("sma_deviation", raw, weightDeviation, fmt.Sprintf("%+.1f%% vs %s", dev, label))
}

func scoreRSI(a model.Analytics) factor {
	if a.RSI14 == nil {
		return factor{}
	}
	rsi := *a.RSI14
	raw := band(rsi, []float64{25, 30, 40, 45, 55, 60, 70, 80}, ladder)
	return newFactor("rsi14", raw, weightRSI, fmt.Sprintf("RSI=%.0f", rsi))
}

// score52WeekPosition gives -2 near the yearly high only when the other
// factors agree the security is stretched; otherwise it caps at -1.
func score52WeekPosition(a model.Analytics, othersAvg float64) factor {
	if a.Position52w == nil {
		return factor{}
	}
	pos := *a.Position52w * 100
	raw := band(pos, []float64{10, 20, 30, 40, 60, 70, 80, 95}, ladder)
	if pos > 95 && othersAvg >= -1 {
		raw = -1.0
	}
	return newFactor("52w_position", raw, weightPosition, fmt.Sprintf("position=%.0f%%", pos))
}

// scoreTrend reads moving-average alignment together with the 30-day
// change.
func scoreTrend(a model.Analytics) factor {
	if a.LastClose == nil || a.SMA20 == nil || a.SMA50 == nil {
		return factor{}
	}
	last, short, long := *a.LastClose, *a.SMA20, *a.SMA50
	bullish := last > short && short > long
	bearish := last < short && short < long
	strong := a.Trend30 != nil && math.Abs(*a.Trend30) >= 10

	var raw float64
	var commentary string
	switch {
	case bullish && strong:
		raw, commentary = 1.5, "bullish alignment, strong 30d move"
	case bullish:
		raw, commentary = 1.0, "bullish alignment"
	case bearish && strong:
		raw, commentary = -1.0, "bearish alignment, strong 30d move"
	case bearish:
		raw, commentary = -0.5, "bearish alignment"
	default:
		commentary = "range-bound"
	}
	return newFactor("trend", raw, weightTrend, commentary)
}

func scoreSentiment(s *model.SentimentResult) factor {
	if s == nil {
		return factor{}
	}
	raw := math.Max(-2, math.Min(2, s.AvgScore*2))
	return newFactor("sentiment", raw, weightSentiment, fmt.Sprintf("%s (%.3f)", s.Label, s.AvgScore))
}
