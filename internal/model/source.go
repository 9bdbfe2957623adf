package model

import "time"

// FetchKind identifies one logical upstream fetch.
type FetchKind string

const (
	KindFundamentals FetchKind = "fundamentals"
	KindPrices       FetchKind = "prices"
	KindNews         FetchKind = "news"
)

// Tier is the fallback stage that produced a value.
type Tier string

const (
	TierLive        Tier = "live"
	TierCache       Tier = "cache"
	TierSynthetic   Tier = "synthetic"
	TierUnavailable Tier = "unavailable"
)

// Trusted reports whether data from this tier may feed derived analytics.
func (t Tier) Trusted() bool {
	return t == TierLive || t == TierCache
}

// CacheEntry is a stored payload with its freshness metadata.
type CacheEntry[T any] struct {
	Key       string
	FetchedAt time.Time
	TTL       time.Duration
	Payload   T
}

// Fresh reports whether the entry is still valid at now.
func (e CacheEntry[T]) Fresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}
