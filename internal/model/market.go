package model

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// PricePoint represents a single daily bar.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is ordered by strictly increasing date.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// NewPriceSeries sorts points by date and collapses duplicate dates, keeping
// the last point seen for each day.
func NewPriceSeries(ticker string, points []PricePoint) PriceSeries {
	byDay := make(map[string]int, len(points))
	out := make([]PricePoint, 0, len(points))
	for _, p := range points {
		day := p.Date.UTC().Format("2006-01-02")
		if i, ok := byDay[day]; ok {
			out[i] = p
			continue
		}
		byDay[day] = len(out)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return PriceSeries{Ticker: ticker, Points: out}
}

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

func (s PriceSeries) Len() int { return len(s.Points) }

// NewsItem is a single headline.
type NewsItem struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
}

// CanonicalTicker upper-cases and trims a ticker such as " msft.us ".
func CanonicalTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ErrInvalidTicker is returned for symbols that cannot name a security.
var ErrInvalidTicker = errors.New("invalid ticker")

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9\-]{0,14}(\.[A-Z]{1,6})?$`)

// ParseTicker canonicalizes s and checks it looks like SYMBOL or
// SYMBOL.EXCHANGE.
func ParseTicker(s string) (string, error) {
	t := CanonicalTicker(s)
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTicker, s)
	}
	return t, nil
}
