package watchlist

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"MarketOverview/internal/model"
)

// MemoryStore is an in-process Store used when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	favorites []model.Favorite
	snapshots []model.Snapshot
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{now: time.Now} }

func (m *MemoryStore) Add(ticker, category string) error {
	t, err := model.ParseTicker(ticker)
	if err != nil {
		return err
	}
	category = normalizeCategory(category)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.favorites {
		if f.Ticker == t && f.Category == category {
			return nil
		}
	}
	m.favorites = append(m.favorites, model.Favorite{Ticker: t, Category: category, AddedAt: m.now().UTC()})
	return nil
}

func (m *MemoryStore) Remove(ticker, category string) error {
	t := model.CanonicalTicker(ticker)
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.favorites[:0]
	removed := 0
	for _, f := range m.favorites {
		if f.Ticker == t && (category == "" || f.Category == normalizeCategory(category)) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	m.favorites = kept
	if removed == 0 {
		return fmt.Errorf("%s: %w", t, ErrNotFound)
	}
	return nil
}

func (m *MemoryStore) List(category string) ([]model.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Favorite{}
	for _, f := range m.favorites {
		if category == "" || f.Category == normalizeCategory(category) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemoryStore) Categories() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, f := range m.favorites {
		if !seen[f.Category] {
			seen[f.Category] = true
			out = append(out, f.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryStore) Tickers() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, f := range m.favorites {
		if !seen[f.Ticker] {
			seen[f.Ticker] = true
			out = append(out, f.Ticker)
		}
	}
	return out, nil
}

func (m *MemoryStore) RecordSnapshot(s model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.TakenAt.IsZero() {
		s.TakenAt = m.now().UTC()
	}
	m.snapshots = append(m.snapshots, s)
	return nil
}

func (m *MemoryStore) History(ticker string, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	t := model.CanonicalTicker(ticker)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Snapshot{}
	for i := len(m.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		if m.snapshots[i].Ticker == t {
			out = append(out, m.snapshots[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
