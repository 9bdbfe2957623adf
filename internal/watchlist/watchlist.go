// Package watchlist stores favorite tickers by category and the snapshots
// recorded for them.
package watchlist

import (
	"errors"
	"strings"

	"MarketOverview/internal/model"
)

// DefaultCategory holds favorites added without a category.
const DefaultCategory = "general"

// ErrNotFound is returned when removing a favorite that does not exist.
var ErrNotFound = errors.New("favorite not found")

// Store persists the watchlist.
type Store interface {
	// Add is idempotent per ticker and category.
	Add(ticker, category string) error
	// Remove deletes ticker from category, or from every category when
	// category is empty.
	Remove(ticker, category string) error
	// List returns favorites in category, or every favorite when category
	// is empty, oldest first.
	List(category string) ([]model.Favorite, error)
	Categories() ([]string, error)
	// Tickers returns each watched ticker once.
	Tickers() ([]string, error)
	RecordSnapshot(s model.Snapshot) error
	History(ticker string, limit int) ([]model.Snapshot, error)
	Close() error
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return DefaultCategory
	}
	return c
}
