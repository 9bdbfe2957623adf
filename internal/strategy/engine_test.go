package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketOverview/internal/model"
)

func analytics(last, sma20, sma50, rsi, pos, trend float64) model.Analytics {
	return model.Analytics{
		LastClose:   model.Float(last),
		SMA20:       model.Float(sma20),
		SMA50:       model.Float(sma50),
		RSI14:       model.Float(rsi),
		Position52w: model.Float(pos),
		Trend30:     model.Float(trend),
		Points:      250,
	}
}

func factorByName(s *model.Score, name string) (model.FactorScore, bool) {
	for _, f := range s.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return model.FactorScore{}, false
}

func TestEvaluate_NormalMarket(t *testing.T) {
	s := Evaluate(analytics(102, 101, 100, 50, 0.5, 2), &model.SentimentResult{AvgScore: 0, Label: model.LabelNeutral, Count: 5})
	require.NotNil(t, s)
	assert.Len(t, s.Factors, 5)
	assert.Empty(t, s.WarningMsg)
	assert.Equal(t, "hold", s.Tier.Label)

	weights := 0.0
	for _, f := range s.Factors {
		weights += f.Weight
	}
	assert.InDelta(t, 1.0, weights, 1e-3)
}

func TestEvaluate_Oversold(t *testing.T) {
	s := Evaluate(analytics(70, 80, 90, 20, 0.05, -20), &model.SentimentResult{AvgScore: 0.5, Label: model.LabelPositive})
	require.NotNil(t, s)
	assert.GreaterOrEqual(t, s.TotalScore, 1.0)
	assert.Contains(t, []string{"strong buy", "buy"}, s.Tier.Label)
}

func TestEvaluate_OverboughtWarning(t *testing.T) {
	s := Evaluate(analytics(130, 120, 100, 90, 1.0, 25), &model.SentimentResult{AvgScore: -0.5, Label: model.LabelNegative})
	require.NotNil(t, s)
	assert.LessOrEqual(t, s.TotalScore, -0.5)
	assert.NotEmpty(t, s.WarningMsg)
}

func TestEvaluate_Unavailable(t *testing.T) {
	assert.Nil(t, Evaluate(model.Analytics{}, nil))
}

func TestEvaluate_RenormalizesMissingFactors(t *testing.T) {
	a := model.Analytics{LastClose: model.Float(100), RSI14: model.Float(20), Points: 20}
	s := Evaluate(a, nil)
	require.NotNil(t, s)
	require.Len(t, s.Factors, 1)
	assert.Equal(t, 1.0, s.Factors[0].Weight)
	assert.Equal(t, 2.0, s.TotalScore)
	assert.Equal(t, "strong buy", s.Tier.Label)
}

func TestMapTier_AllBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		label string
	}{
		{2.0, "strong buy"},
		{1.2, "strong buy"},
		{1.0, "buy"},
		{0.4, "buy"},
		{0.0, "hold"},
		{-0.4, "hold"},
		{-0.8, "sell"},
		{-1.2, "sell"},
		{-1.6, "strong sell"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, mapTier(tt.score).Label, "score %.1f", tt.score)
	}
}

func TestPosition_NonlinearCap(t *testing.T) {
	// Near the high with otherwise neutral factors: capped at -1.
	s := Evaluate(analytics(101, 100.5, 100, 50, 0.99, 1), nil)
	f, ok := factorByName(s, "52w_position")
	require.True(t, ok)
	assert.Equal(t, -1.0, f.RawScore)

	// Near the high with stretched factors: full -2.
	s = Evaluate(analytics(130, 120, 100, 90, 0.99, 1), &model.SentimentResult{AvgScore: -1, Label: model.LabelNegative})
	f, ok = factorByName(s, "52w_position")
	require.True(t, ok)
	assert.Equal(t, -2.0, f.RawScore)
}

func TestTrend_BullBear(t *testing.T) {
	s := Evaluate(analytics(120, 110, 100, 50, 0.9, 15), nil)
	f, _ := factorByName(s, "trend")
	assert.Equal(t, 1.5, f.RawScore)

	s = Evaluate(analytics(90, 95, 100, 50, 0.1, -3), nil)
	f, _ = factorByName(s, "trend")
	assert.Equal(t, -0.5, f.RawScore)
}
