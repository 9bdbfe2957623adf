// Package benchmark summarises competitor valuations.
package benchmark

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"MarketOverview/internal/calculator"
	"MarketOverview/internal/fallback"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/normalize"
)

const (
	// MaxPeers caps how many competitors are fetched.
	MaxPeers = 8
	// MinSamples is the fewest usable P/E values that produce stats.
	MinSamples = 3
)

// FundamentalsSource is satisfied by *fallback.Resolver.
type FundamentalsSource interface {
	Fundamentals(ctx context.Context, ticker string) (normalize.Result, fallback.Outcome)
}

type Benchmarker struct {
	src         FundamentalsSource
	maxPeers    int
	concurrency int
}

// New creates a Benchmarker. Non-positive maxPeers or concurrency select
// the defaults.
func New(src FundamentalsSource, maxPeers, concurrency int) *Benchmarker {
	if maxPeers <= 0 {
		maxPeers = MaxPeers
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Benchmarker{src: src, maxPeers: maxPeers, concurrency: concurrency}
}

// Benchmark fetches the first maxPeers competitors and reduces their P/E
// ratios. Unknown, zero and synthetic values are ignored. It returns nil
// with fewer than MinSamples usable values.
func (b *Benchmarker) Benchmark(ctx context.Context, peers []string) *model.CompetitorStats {
	if len(peers) > b.maxPeers {
		peers = peers[:b.maxPeers]
	}
	if len(peers) < MinSamples {
		return nil
	}

	var (
		mu  sync.Mutex
		pes []float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, peer := range peers {
		g.Go(func() error {
			res, out := b.src.Fundamentals(gctx, peer)
			pe := res.Fundamentals.PERatio
			if !out.Tier.Trusted() || !pe.Known || pe.Value == 0 {
				logger.Get().Debugw("peer skipped", "peer", peer, "tier", out.Tier)
				return nil
			}
			mu.Lock()
			pes = append(pes, pe.Value)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return Summarise(pes)
}

// Summarise returns avg/min/max of values, rounded to two places, or nil
// with fewer than MinSamples values.
func Summarise(values []float64) *model.CompetitorStats {
	if len(values) < MinSamples {
		return nil
	}
	lo, hi, sum := values[0], values[0], 0.0
	for _, v := range values {
		sum += v
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return &model.CompetitorStats{
		AvgPE: calculator.Round(sum/float64(len(values)), 2),
		MinPE: calculator.Round(lo, 2),
		MaxPE: calculator.Round(hi, 2),
		Count: len(values),
	}
}
