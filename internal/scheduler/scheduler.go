// Package scheduler runs the cache refresh and watchlist digest cron jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/notifier"
	"MarketOverview/internal/watchlist"
)

// Refresher is satisfied by *fallback.Resolver.
type Refresher interface {
	RefreshFundamentals(ctx context.Context, ticker string) error
	CachedTickers() []string
}

// Composer is satisfied by *overview.Composer.
type Composer interface {
	Compose(ctx context.Context, ticker string) *model.Overview
}

type retrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron        *cron.Cron
	Refresher   Refresher
	Composer    Composer
	Watchlist   watchlist.Store
	Notifier    notifier.Notifier
	Ctx         context.Context
	Concurrency int
	Now         func() time.Time
}

// NewScheduler creates a Scheduler using six-field cron specs.
func NewScheduler(ctx context.Context, ref Refresher, comp Composer, wl watchlist.Store, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Refresher:   ref,
		Composer:    comp,
		Watchlist:   wl,
		Notifier:    n,
		Ctx:         ctx,
		Concurrency: 4,
		Now:         time.Now,
	}
}

// RegisterAll registers the refresh job and, when digestCron is set, the
// digest job.
func (s *Scheduler) RegisterAll(refreshCron, digestCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if digestCron == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Get().Infow("scheduler started", "jobs", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Get().Infow("scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	if err := s.RunRefreshNow(s.Ctx); err != nil {
		logger.Get().Errorw("refresh task", "error", err)
	}
}

func (s *Scheduler) digestTask() {
	if _, err := s.RunDigestNow(s.Ctx); err != nil {
		logger.Get().Errorw("digest task", "error", err)
	}
}

func (s *Scheduler) tickers() ([]string, error) {
	if s.Watchlist == nil {
		return nil, nil
	}
	return s.Watchlist.Tickers()
}

// RunRefreshNow re-fetches fundamentals for every watched or cached ticker
// so the cache stays warm. Failures are joined; one ticker never stops the
// rest.
func (s *Scheduler) RunRefreshNow(ctx context.Context) error {
	tickers, err := s.tickers()
	if err != nil {
		return fmt.Errorf("list watchlist: %w", err)
	}
	tickers = union(tickers, s.Refresher.CachedTickers())
	logger.Get().Infow("running refresh task", "tickers", len(tickers))

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for _, t := range tickers {
		g.Go(func() error {
			if err := s.Refresher.RefreshFundamentals(gctx, t); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d refreshes failed: %w", len(errs), len(tickers), errors.Join(errs...))
	}
	return nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			t = model.CanonicalTicker(t)
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// RunDigestNow composes every watched ticker, records a snapshot of each
// and sends the digest. It returns the message sent.
func (s *Scheduler) RunDigestNow(ctx context.Context) (string, error) {
	tickers, err := s.tickers()
	if err != nil {
		return "", fmt.Errorf("list watchlist: %w", err)
	}
	logger.Get().Infow("running digest task", "tickers", len(tickers))

	overviews := make([]*model.Overview, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, t := range tickers {
		g.Go(func() error {
			overviews[i] = s.Composer.Compose(gctx, t)
			return nil
		})
	}
	_ = g.Wait()

	for _, ov := range overviews {
		if err := s.Watchlist.RecordSnapshot(model.SnapshotOf(ov)); err != nil {
			logger.Get().Errorw("record snapshot", "ticker", ov.Ticker, "error", err)
		}
	}

	msg := notifier.FormatDigest(overviews, s.Now())
	s.trySend(ctx, msg)
	return msg, nil
}

// HandleCommand answers a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch strings.ToLower(fields[0]) {
	case "/overview":
		if len(fields) < 2 {
			return "usage: /overview TICKER"
		}
		t, err := model.ParseTicker(fields[1])
		if err != nil {
			return err.Error()
		}
		return notifier.FormatOverview(s.Composer.Compose(ctx, t))
	case "/watchlist":
		tickers, err := s.tickers()
		if err != nil {
			return fmt.Sprintf("watchlist unavailable: %v", err)
		}
		if len(tickers) == 0 {
			return "Watchlist is empty."
		}
		return "Watchlist: " + strings.Join(tickers, ", ")
	case "/digest":
		// The digest is delivered by RunDigestNow itself.
		if _, err := s.RunDigestNow(ctx); err != nil {
			return err.Error()
		}
		return ""
	case "/refresh":
		if err := s.RunRefreshNow(ctx); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return "✅ fundamentals refreshed"
	default:
		return "Commands:\n• /overview TICKER\n• /watchlist\n• /digest\n• /refresh"
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	var err error
	if rs, ok := s.Notifier.(retrySender); ok {
		err = rs.SendWithRetry(ctx, text, 3)
	} else {
		err = s.Notifier.Send(ctx, text)
	}
	if err != nil {
		logger.Get().Errorw("send notification", "error", err)
	}
}
