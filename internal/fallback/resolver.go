// Package fallback resolves each fetch kind through the ordered tiers
// live, cache, synthetic and unavailable.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketOverview/internal/cache"
	"MarketOverview/internal/collector"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/normalize"
)

// Options tunes a Resolver.
type Options struct {
	// Synthetic enables the deterministic placeholder tier.
	Synthetic bool
	// Retries is the number of extra attempts per gateway for Timeout and
	// RateLimited failures.
	Retries int
	// Backoff is the delay before the first retry; it doubles each time.
	Backoff     time.Duration
	HistoryDays int
	NewsLimit   int
	// CacheTTL is how long stored fundamentals stay fresh.
	CacheTTL time.Duration
	Clock    func() time.Time
}

// Outcome reports how a value was obtained.
type Outcome struct {
	Tier   model.Tier
	Source string
	Errors []error
}

// Resolver walks the fallback tiers for each fetch kind. It never returns
// an error; failures are reported in the Outcome.
type Resolver struct {
	gateways []collector.Gateway
	store    *cache.Store[model.FundamentalsRecord]
	opts     Options
}

// New creates a Resolver. store may be nil, which disables the cache tier.
func New(gateways []collector.Gateway, store *cache.Store[model.FundamentalsRecord], opts Options) *Resolver {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 400
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.FundamentalsTTL
	}
	return &Resolver{gateways: gateways, store: store, opts: opts}
}

type attempt[T any] struct {
	tier   model.Tier
	source string
	run    func(ctx context.Context) (T, error)
}

var errEmpty = errors.New("empty payload")

// resolve runs attempts in order until one yields a non-empty value.
func resolve[T any](ctx context.Context, kind model.FetchKind, ticker string, attempts []attempt[T], empty func(T) bool, unavailable T) (T, Outcome) {
	var out Outcome
	for _, a := range attempts {
		v, err := a.run(ctx)
		if err == nil && empty(v) {
			err = fmt.Errorf("%s %s: %w", a.source, ticker, errEmpty)
		}
		if err != nil {
			logger.Get().Debugw("fallback tier failed", "kind", kind, "ticker", ticker, "tier", a.tier, "source", a.source, "error", err)
			out.Errors = append(out.Errors, err)
			continue
		}
		out.Tier, out.Source = a.tier, a.source
		if a.tier != model.TierLive {
			logger.Get().Infow("served from fallback tier", "kind", kind, "ticker", ticker, "tier", a.tier, "source", a.source)
		}
		return v, out
	}
	out.Tier, out.Source = model.TierUnavailable, ""
	logger.Get().Warnw("all tiers exhausted", "kind", kind, "ticker", ticker, "errors", len(out.Errors))
	return unavailable, out
}

// fetchLive calls one gateway, retrying retryable failures with exponential backoff.
func (r *Resolver) fetchLive(ctx context.Context, g collector.Gateway, kind model.FetchKind, ticker string, p collector.Params) (collector.RawPayload, error) {
	var lastErr error
	for i := 0; i <= r.opts.Retries; i++ {
		payload, err := collector.Guard(ctx, g, kind, ticker, p)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		var fe *collector.FetchError
		if !errors.As(err, &fe) || !fe.Retryable() || i == r.opts.Retries {
			break
		}
		backoff := r.opts.Backoff * time.Duration(1<<uint(i))
		logger.Get().Debugw("retrying gateway", "gateway", g.Name(), "kind", kind, "ticker", ticker, "attempt", i+1, "backoff", backoff, "error", err)
		select {
		case <-ctx.Done():
			return nil, collector.Classify(g.Name(), kind, ticker, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return nil, lastErr
}

func (r *Resolver) liveAttempts(kind model.FetchKind, ticker string, p collector.Params) []attempt[collector.RawPayload] {
	var out []attempt[collector.RawPayload]
	for _, g := range r.gateways {
		if !g.Supports(kind) {
			continue
		}
		g := g
		out = append(out, attempt[collector.RawPayload]{
			tier:   model.TierLive,
			source: g.Name(),
			run: func(ctx context.Context) (collector.RawPayload, error) {
				return r.fetchLive(ctx, g, kind, ticker, p)
			},
		})
	}
	return out
}

func parseError(source string, kind model.FetchKind, ticker string, err error) error {
	return &collector.FetchError{Gateway: source, Kind: kind, Ticker: ticker, Code: collector.ParseError, Err: err}
}

// Fundamentals resolves normalized fundamentals and the peer list. A live
// result refreshes the cache.
func (r *Resolver) Fundamentals(ctx context.Context, ticker string) (normalize.Result, Outcome) {
	ticker = model.CanonicalTicker(ticker)
	var attempts []attempt[normalize.Result]
	for _, live := range r.liveAttempts(model.KindFundamentals, ticker, collector.Params{}) {
		attempts = append(attempts, attempt[normalize.Result]{
			tier:   model.TierLive,
			source: live.source,
			run: func(ctx context.Context) (normalize.Result, error) {
				raw, err := live.run(ctx)
				if err != nil {
					return normalize.Result{}, err
				}
				res, err := normalize.Normalize(raw, ticker)
				if err != nil {
					return normalize.Result{}, parseError(live.source, model.KindFundamentals, ticker, err)
				}
				if res.Fundamentals.Known() {
					r.remember(ticker, res)
				}
				return res, nil
			},
		})
	}
	if r.store != nil {
		attempts = append(attempts, attempt[normalize.Result]{
			tier:   model.TierCache,
			source: "cache",
			run: func(context.Context) (normalize.Result, error) {
				entry, ok := r.store.Get(ticker)
				if !ok {
					return normalize.Result{}, fmt.Errorf("cache miss for %s", ticker)
				}
				return normalize.Result{Fundamentals: entry.Payload.Fundamentals, Competitors: entry.Payload.Competitors}, nil
			},
		})
	}
	if r.opts.Synthetic {
		attempts = append(attempts, attempt[normalize.Result]{
			tier:   model.TierSynthetic,
			source: "synthetic",
			run: func(context.Context) (normalize.Result, error) {
				return syntheticFundamentals(ticker), nil
			},
		})
	}
	res, out := resolve(ctx, model.KindFundamentals, ticker, attempts,
		func(v normalize.Result) bool { return !v.Fundamentals.Known() },
		normalize.Result{Competitors: []string{}})
	if res.Competitors == nil {
		res.Competitors = []string{}
	}
	return res, out
}

func (r *Resolver) remember(ticker string, res normalize.Result) {
	if r.store == nil {
		return
	}
	if err := r.store.Put(ticker, res.Record(), r.opts.CacheTTL); err != nil {
		logger.Get().Warnw("cache write failed", "ticker", ticker, "error", err)
	}
}

// CachedTickers lists tickers with a stored fundamentals record, fresh or
// not.
func (r *Resolver) CachedTickers() []string {
	if r.store == nil {
		return nil
	}
	return r.store.Keys()
}

// RefreshFundamentals bypasses the cache and re-fetches fundamentals from
// the live tier, storing a success.
func (r *Resolver) RefreshFundamentals(ctx context.Context, ticker string) error {
	ticker = model.CanonicalTicker(ticker)
	var errs []error
	for _, live := range r.liveAttempts(model.KindFundamentals, ticker, collector.Params{}) {
		raw, err := live.run(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := normalize.Normalize(raw, ticker)
		if err != nil {
			errs = append(errs, parseError(live.source, model.KindFundamentals, ticker, err))
			continue
		}
		if !res.Fundamentals.Known() {
			errs = append(errs, fmt.Errorf("%s %s: %w", live.source, ticker, errEmpty))
			continue
		}
		r.remember(ticker, res)
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("no gateway serves fundamentals for %s", ticker)
	}
	return fmt.Errorf("refresh %s: %w", ticker, errors.Join(errs...))
}

// Prices resolves the daily price history.
func (r *Resolver) Prices(ctx context.Context, ticker string) (model.PriceSeries, Outcome) {
	ticker = model.CanonicalTicker(ticker)
	now := r.opts.Clock()
	p := collector.Params{From: now.AddDate(0, 0, -r.opts.HistoryDays), To: now}

	var attempts []attempt[model.PriceSeries]
	for _, live := range r.liveAttempts(model.KindPrices, ticker, p) {
		attempts = append(attempts, attempt[model.PriceSeries]{
			tier:   model.TierLive,
			source: live.source,
			run: func(ctx context.Context) (model.PriceSeries, error) {
				raw, err := live.run(ctx)
				if err != nil {
					return model.PriceSeries{}, err
				}
				s, err := collector.DecodePrices(ticker, raw)
				if err != nil {
					return model.PriceSeries{}, parseError(live.source, model.KindPrices, ticker, err)
				}
				return s, nil
			},
		})
	}
	if r.opts.Synthetic {
		attempts = append(attempts, attempt[model.PriceSeries]{
			tier:   model.TierSynthetic,
			source: "synthetic",
			run: func(context.Context) (model.PriceSeries, error) {
				return syntheticPrices(ticker, now, 90), nil
			},
		})
	}
	return resolve(ctx, model.KindPrices, ticker, attempts,
		func(s model.PriceSeries) bool { return s.Len() == 0 },
		model.PriceSeries{Ticker: ticker, Points: []model.PricePoint{}})
}

// News resolves recent headlines.
func (r *Resolver) News(ctx context.Context, ticker string) ([]model.NewsItem, Outcome) {
	ticker = model.CanonicalTicker(ticker)
	now := r.opts.Clock()
	p := collector.Params{To: now, Limit: r.opts.NewsLimit}

	var attempts []attempt[[]model.NewsItem]
	for _, live := range r.liveAttempts(model.KindNews, ticker, p) {
		attempts = append(attempts, attempt[[]model.NewsItem]{
			tier:   model.TierLive,
			source: live.source,
			run: func(ctx context.Context) ([]model.NewsItem, error) {
				raw, err := live.run(ctx)
				if err != nil {
					return nil, err
				}
				items, err := collector.DecodeNews(raw)
				if err != nil {
					return nil, parseError(live.source, model.KindNews, ticker, err)
				}
				return items, nil
			},
		})
	}
	if r.opts.Synthetic {
		attempts = append(attempts, attempt[[]model.NewsItem]{
			tier:   model.TierSynthetic,
			source: "synthetic",
			run: func(context.Context) ([]model.NewsItem, error) {
				return syntheticNews(ticker, now), nil
			},
		})
	}
	return resolve(ctx, model.KindNews, ticker, attempts,
		func(items []model.NewsItem) bool { return len(items) == 0 },
		[]model.NewsItem{})
}
