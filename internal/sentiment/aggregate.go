package sentiment

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"MarketOverview/internal/calculator"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
)

// Window is the number of leading news items that are scored.
const Window = 15

// Aggregator reduces a news list to one SentimentResult.
type Aggregator struct {
	Scorer      Scorer
	Window      int
	Concurrency int
}

// NewAggregator returns an aggregator with the default window.
func NewAggregator(s Scorer) *Aggregator {
	return &Aggregator{Scorer: s, Window: Window, Concurrency: 4}
}

// Aggregate averages the scores of at most the first Window items. Items
// that fail to score are skipped. It returns nil when nothing was scored.
func (a *Aggregator) Aggregate(ctx context.Context, items []model.NewsItem) *model.SentimentResult {
	window := a.Window
	if window <= 0 {
		window = Window
	}
	if len(items) > window {
		items = items[:window]
	}
	if len(items) == 0 {
		return nil
	}

	scores := make([]*float64, len(items))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if a.Concurrency > 0 {
		g.SetLimit(a.Concurrency)
	}
	for i, item := range items {
		text := strings.TrimSpace(item.Title + ". " + item.Body)
		if text == "." {
			continue
		}
		g.Go(func() error {
			v, err := a.Scorer.Score(gctx, text)
			if err != nil {
				logger.Get().Debugw("headline scoring failed", "title", item.Title, "error", err)
				return nil
			}
			v = Clamp(v)
			mu.Lock()
			scores[i] = &v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sum, n := 0.0, 0
	for _, s := range scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := calculator.Round(sum/float64(n), 3)
	return &model.SentimentResult{AvgScore: avg, Label: model.SentimentLabel(avg), Count: n}
}
