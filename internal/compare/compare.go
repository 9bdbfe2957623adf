// Package compare reports two overviews side by side.
package compare

import (
	"context"

	"golang.org/x/sync/errgroup"

	"MarketOverview/internal/calculator"
	"MarketOverview/internal/model"
)

// Composer is satisfied by *overview.Composer.
type Composer interface {
	Compose(ctx context.Context, ticker string) *model.Overview
}

type Engine struct {
	composer Composer
}

func New(c Composer) *Engine {
	return &Engine{composer: c}
}

// Compare composes both tickers in parallel. Swapping a and b swaps the map
// keys and negates the deltas; no winner is chosen.
func (e *Engine) Compare(ctx context.Context, a, b string) *model.Comparison {
	a, b = model.CanonicalTicker(a), model.CanonicalTicker(b)

	var ovA, ovB *model.Overview
	var g errgroup.Group
	g.Go(func() error {
		ovA = e.composer.Compose(ctx, a)
		return nil
	})
	g.Go(func() error {
		ovB = e.composer.Compose(ctx, b)
		return nil
	})
	_ = g.Wait()

	return Build(ovA, ovB)
}

// Build assembles a comparison from two composed overviews.
func Build(a, b *model.Overview) *model.Comparison {
	c := &model.Comparison{
		Tickers:         [2]string{a.Ticker, b.Ticker},
		Metrics:         map[string]model.Analytics{},
		Fundamentals:    map[string]model.Fundamentals{},
		Competitors:     map[string][]string{},
		CompetitorStats: map[string]*model.CompetitorStats{},
		Sentiment:       map[string]*model.SentimentResult{},
		Scores:          map[string]*model.Score{},
		Relative:        []model.RelativePoint{},
	}
	for _, ov := range []*model.Overview{a, b} {
		c.Metrics[ov.Ticker] = ov.Analytics
		c.Fundamentals[ov.Ticker] = ov.Fundamentals
		c.Competitors[ov.Ticker] = ov.Competitors
		c.CompetitorStats[ov.Ticker] = ov.CompetitorStats
		c.Sentiment[ov.Ticker] = ov.Sentiment
		c.Scores[ov.Ticker] = ov.Score
	}

	if a.Score != nil && b.Score != nil {
		c.ScoreDelta = model.Float(calculator.Round(a.Score.TotalScore-b.Score.TotalScore, 3))
	}
	if a.Sentiment != nil && b.Sentiment != nil {
		c.SentimentDelta = model.Float(calculator.Round(a.Sentiment.AvgScore-b.Sentiment.AvgScore, 3))
	}
	if a.Analytics.Available() && b.Analytics.Available() {
		if rel := calculator.RelativePerformance(a.Series, b.Series); rel != nil {
			c.Relative = rel
		}
	}
	return c
}
