// Package overview assembles the per-security snapshot from the fallback
// resolver, analytics, sentiment and peer benchmark.
package overview

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"MarketOverview/internal/calculator"
	"MarketOverview/internal/fallback"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/normalize"
	"MarketOverview/internal/strategy"
)

// Source is satisfied by *fallback.Resolver.
type Source interface {
	Fundamentals(ctx context.Context, ticker string) (normalize.Result, fallback.Outcome)
	Prices(ctx context.Context, ticker string) (model.PriceSeries, fallback.Outcome)
	News(ctx context.Context, ticker string) ([]model.NewsItem, fallback.Outcome)
}

// Benchmarker is satisfied by *benchmark.Benchmarker.
type Benchmarker interface {
	Benchmark(ctx context.Context, peers []string) *model.CompetitorStats
}

// SentimentAggregator is satisfied by *sentiment.Aggregator.
type SentimentAggregator interface {
	Aggregate(ctx context.Context, items []model.NewsItem) *model.SentimentResult
}

type Options struct {
	RiskFree float64
	// Per-kind timeouts; zero means no limit beyond the caller's context.
	FundamentalsTimeout time.Duration
	PricesTimeout       time.Duration
	NewsTimeout         time.Duration
	// SyntheticAnalytics lets synthetic prices and news feed analytics
	// and sentiment.
	SyntheticAnalytics bool
	Clock              func() time.Time
}

type Composer struct {
	src       Source
	bench     Benchmarker
	sentiment SentimentAggregator
	opts      Options
}

func New(src Source, bench Benchmarker, agg SentimentAggregator, opts Options) *Composer {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Composer{src: src, bench: bench, sentiment: agg, opts: opts}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Compose builds the overview for ticker. It never fails: each leg that
// cannot be resolved leaves its field unavailable.
func (c *Composer) Compose(ctx context.Context, ticker string) *model.Overview {
	ticker = model.CanonicalTicker(ticker)
	log := logger.Get().With("ticker", ticker)
	ov := &model.Overview{
		RequestID:   uuid.NewString(),
		Ticker:      ticker,
		News:        []model.NewsItem{},
		Competitors: []string{},
		Sentences:   []string{},
		Sources:     map[model.FetchKind]model.Tier{},
		Series:      model.PriceSeries{Ticker: ticker, Points: []model.PricePoint{}},
	}

	var (
		fund      normalize.Result
		fundOut   fallback.Outcome
		series    model.PriceSeries
		priceOut  fallback.Outcome
		news      []model.NewsItem
		newsOut   fallback.Outcome
		peerStats *model.CompetitorStats
		mood      *model.SentimentResult
	)

	// Legs never return errors so one failure does not cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		fctx, cancel := withTimeout(ctx, c.opts.FundamentalsTimeout)
		fund, fundOut = c.src.Fundamentals(fctx, ticker)
		cancel()
		if c.bench == nil || len(fund.Competitors) == 0 || !c.usable(fundOut.Tier) {
			return nil
		}
		bctx, cancel := withTimeout(ctx, c.opts.FundamentalsTimeout)
		defer cancel()
		peerStats = c.bench.Benchmark(bctx, fund.Competitors)
		return nil
	})
	g.Go(func() error {
		pctx, cancel := withTimeout(ctx, c.opts.PricesTimeout)
		defer cancel()
		series, priceOut = c.src.Prices(pctx, ticker)
		return nil
	})
	g.Go(func() error {
		nctx, cancel := withTimeout(ctx, c.opts.NewsTimeout)
		defer cancel()
		news, newsOut = c.src.News(nctx, ticker)
		if c.sentiment != nil && c.usable(newsOut.Tier) {
			mood = c.sentiment.Aggregate(nctx, news)
		}
		return nil
	})
	_ = g.Wait()

	for kind, out := range map[model.FetchKind]fallback.Outcome{
		model.KindFundamentals: fundOut,
		model.KindPrices:       priceOut,
		model.KindNews:         newsOut,
	} {
		if out.Tier == "" {
			out.Tier = model.TierUnavailable
		}
		ov.Sources[kind] = out.Tier
		if len(out.Errors) > 0 {
			log.Warnw("fetch degraded", "kind", kind, "tier", out.Tier, "errors", len(out.Errors))
		}
	}

	ov.Fundamentals = fund.Fundamentals
	if fund.Competitors != nil {
		ov.Competitors = fund.Competitors
	}
	ov.CompetitorStats = peerStats
	if news != nil {
		ov.News = news
	}
	if series.Points != nil {
		ov.Series = series
	}
	if c.usable(priceOut.Tier) {
		ov.Analytics = calculator.Analyze(series, calculator.Options{RiskFree: c.opts.RiskFree})
	}
	ov.Sentiment = mood
	ov.Score = strategy.Evaluate(ov.Analytics, ov.Sentiment)

	ov.Sentences = Narrative(ov.Fundamentals, ov.Analytics.Trend30, ov.Sentiment, ov.CompetitorStats)
	ov.Narrative = joinSentences(ov.Sentences)
	ov.GeneratedAt = c.opts.Clock().UTC()

	log.Debugw("overview composed",
		"fundamentals", ov.Sources[model.KindFundamentals],
		"prices", ov.Sources[model.KindPrices],
		"news", ov.Sources[model.KindNews])
	return ov
}

func (c *Composer) usable(t model.Tier) bool {
	return t.Trusted() || (c.opts.SyntheticAnalytics && t == model.TierSynthetic)
}
