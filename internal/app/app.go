// Package app wires the configured gateways, resolver, engines and stores
// into one graph shared by the CLI, the HTTP server and the scheduler.
package app

import (
	"context"
	"fmt"

	"MarketOverview/internal/benchmark"
	"MarketOverview/internal/cache"
	"MarketOverview/internal/collector"
	"MarketOverview/internal/compare"
	"MarketOverview/internal/config"
	"MarketOverview/internal/discovery"
	"MarketOverview/internal/fallback"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/notifier"
	"MarketOverview/internal/overview"
	"MarketOverview/internal/scheduler"
	"MarketOverview/internal/sentiment"
	"MarketOverview/internal/server"
	"MarketOverview/internal/watchlist"
)

// App holds the wired components.
type App struct {
	Config    *config.Config
	Resolver  *fallback.Resolver
	Composer  *overview.Composer
	Compare   *compare.Engine
	Watchlist watchlist.Store
	Universe  *discovery.Universe
	Notifier  notifier.Notifier
	Telegram  *notifier.TelegramNotifier
}

// New builds the component graph from cfg. Optional pieces degrade
// instead of failing: an unusable cache disables the cache tier and an
// unusable watchlist database falls back to memory.
func New(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var store *cache.Store[model.FundamentalsRecord]
	if s, err := cache.Open[model.FundamentalsRecord](cfg.Cache.Path); err != nil {
		logger.Get().Warnw("cache disabled", "path", cfg.Cache.Path, "error", err)
	} else {
		store = s
	}

	a.Resolver = fallback.New(Gateways(cfg), store, fallback.Options{
		Synthetic:   cfg.Fallback.Synthetic,
		Retries:     cfg.Fallback.Retries,
		Backoff:     cfg.Fallback.Backoff,
		HistoryDays: cfg.Analytics.HistoryDays,
		NewsLimit:   cfg.Analytics.NewsLimit,
		CacheTTL:    cfg.Cache.TTL,
	})

	scorer, err := Scorer(cfg)
	if err != nil {
		return nil, err
	}

	a.Composer = overview.New(
		a.Resolver,
		benchmark.New(a.Resolver, cfg.Benchmark.MaxPeers, cfg.Benchmark.Concurrency),
		sentiment.NewAggregator(scorer),
		overview.Options{
			RiskFree:            cfg.Analytics.RiskFreeRate,
			FundamentalsTimeout: cfg.Overview.FundamentalsTimeout,
			PricesTimeout:       cfg.Overview.PricesTimeout,
			NewsTimeout:         cfg.Overview.NewsTimeout,
			SyntheticAnalytics:  cfg.Fallback.SyntheticAnalytics,
		},
	)
	a.Compare = compare.New(a.Composer)

	if wl, err := watchlist.OpenSQLite(cfg.Watchlist.Path); err != nil {
		logger.Get().Warnw("watchlist database unavailable, using memory", "path", cfg.Watchlist.Path, "error", err)
		a.Watchlist = watchlist.NewMemoryStore()
	} else {
		a.Watchlist = wl
	}

	u, err := discovery.Load(cfg.Discovery.UniversePath)
	if err != nil {
		_ = a.Watchlist.Close()
		return nil, fmt.Errorf("load etf universe: %w", err)
	}
	a.Universe = u

	if cfg.TelegramEnabled() {
		a.Telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		a.Notifier = a.Telegram
	} else {
		a.Notifier = notifier.LogNotifier{}
	}
	return a, nil
}

// Gateways returns the live data providers in fallback order.
func Gateways(cfg *config.Config) []collector.Gateway {
	var gws []collector.Gateway
	if cfg.EODHD.APIKey != "" {
		gws = append(gws, collector.NewEODHDGateway(cfg.EODHD.APIKey, cfg.Proxy, cfg.EODHD.Timeout,
			collector.WithEODHDBaseURL(cfg.EODHD.BaseURL),
			collector.WithEODHDRateLimit(cfg.EODHD.RateLimit),
		))
	} else {
		logger.Get().Warnw("EODHD_API_KEY not set, eodhd gateway disabled")
	}
	if cfg.Yahoo.Enabled {
		gws = append(gws, collector.NewYahooGateway(cfg.Proxy, cfg.Yahoo.Timeout))
	}
	if cfg.RSS.Enabled {
		gws = append(gws, collector.NewRSSGateway(cfg.RSS.URLTemplate, cfg.Proxy, cfg.RSS.Timeout))
	}
	return gws
}

// Scorer returns the configured headline scorer.
func Scorer(cfg *config.Config) (sentiment.Scorer, error) {
	switch cfg.Sentiment.Scorer {
	case "claude":
		s, err := sentiment.NewClaudeScorer(cfg.Anthropic.APIKey, cfg.Sentiment.Model, cfg.Sentiment.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("claude scorer: %w", err)
		}
		return s, nil
	default:
		return sentiment.NewLexiconScorer(), nil
	}
}

// Server builds the HTTP API over the wired components.
func (a *App) Server() *server.Server {
	return server.New(a.Config.Server.Addr, a.Config.Server.Mode, server.Deps{
		Composer:  a.Composer,
		Comparer:  a.Compare,
		News:      a.Resolver,
		Watchlist: a.Watchlist,
		Universe:  a.Universe,
	})
}

// Scheduler builds the cron scheduler bound to ctx.
func (a *App) Scheduler(ctx context.Context) *scheduler.Scheduler {
	return scheduler.NewScheduler(ctx, a.Resolver, a.Composer, a.Watchlist, a.Notifier)
}

// Close releases the watchlist database.
func (a *App) Close() error {
	if a.Watchlist == nil {
		return nil
	}
	return a.Watchlist.Close()
}
