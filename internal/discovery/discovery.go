// Package discovery finds themed ETFs and searches known tickers.
package discovery

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
)

// MaxResults caps FindETFs and SearchTickers results.
const MaxResults = 8

//go:embed universe.yaml
var defaultUniverse []byte

type universeFile struct {
	ETFs []model.ETF `yaml:"etfs"`
}

// Universe is the searchable set of ETFs.
type Universe struct {
	etfs []model.ETF
}

// Default returns the built-in universe.
func Default() *Universe {
	u, err := parse(defaultUniverse)
	if err != nil {
		panic(fmt.Sprintf("embedded universe: %v", err))
	}
	return u
}

// Load reads a universe file. An empty path selects the built-in set.
func Load(path string) (*Universe, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	u, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse universe %s: %w", path, err)
	}
	logger.Get().Infow("etf universe loaded", "path", path, "etfs", len(u.etfs))
	return u, nil
}

func parse(data []byte) (*Universe, error) {
	var f universeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	u := &Universe{}
	for _, e := range f.ETFs {
		if e.Ticker == "" {
			continue
		}
		e.Ticker = model.CanonicalTicker(e.Ticker)
		for i, t := range e.Themes {
			e.Themes[i] = strings.ToLower(strings.TrimSpace(t))
		}
		u.etfs = append(u.etfs, e)
	}
	return u, nil
}

// Themes lists every theme, sorted.
func (u *Universe) Themes() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, e := range u.etfs {
		for _, t := range e.Themes {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

// FindETFs matches query against themes first. When no theme matches, it
// falls back to ETF names and descriptions.
func (u *Universe) FindETFs(query string) []model.ETF {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.ETF{}
	if q == "" {
		return out
	}
	for _, e := range u.etfs {
		for _, t := range e.Themes {
			if strings.Contains(t, q) || strings.Contains(q, t) {
				out = append(out, e)
				break
			}
		}
	}
	if len(out) == 0 {
		for _, e := range u.etfs {
			if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Description), q) {
				out = append(out, e)
			}
		}
	}
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}

// Match is one SearchTickers hit.
type Match struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`
	Origin string `json:"origin"`
}

// SearchTickers looks query up in the universe and the extra tickers, such
// as the watchlist. Ticker prefix hits rank before name hits.
func (u *Universe) SearchTickers(query string, extra []string) []Match {
	q := strings.ToUpper(strings.TrimSpace(query))
	out := []Match{}
	if q == "" {
		return out
	}

	var prefix, named []Match
	seen := map[string]bool{}
	add := func(list *[]Match, m Match) {
		if !seen[m.Ticker] {
			seen[m.Ticker] = true
			*list = append(*list, m)
		}
	}
	for _, t := range extra {
		t = model.CanonicalTicker(t)
		if strings.HasPrefix(t, q) {
			add(&prefix, Match{Ticker: t, Origin: "watchlist"})
		}
	}
	for _, e := range u.etfs {
		switch {
		case strings.HasPrefix(e.Ticker, q):
			add(&prefix, Match{Ticker: e.Ticker, Name: e.Name, Origin: "etf"})
		case strings.Contains(strings.ToUpper(e.Name), q):
			add(&named, Match{Ticker: e.Ticker, Name: e.Name, Origin: "etf"})
		}
	}
	out = append(append(out, prefix...), named...)
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}
