package collector

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"MarketOverview/internal/model"
)

// wirePrice is the upstream end-of-day row shape.
type wirePrice struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// wireNews is the upstream news row shape.
type wireNews struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Source  string `json:"source,omitempty"`
	Link    string `json:"link,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDate accepts the date layouts seen across providers.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseNumber reads a float from a JSON number or a numeric string.
// Placeholders such as "NA" or "None" report false.
func ParseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if !finite(n) {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil || !finite(f) {
			return 0, false
		}
		return f, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		switch strings.ToLower(s) {
		case "", "na", "n/a", "none", "null", "nan", "-", "unknown":
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !finite(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func finite(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) }

// FoldKey lower-cases a key and strips separators so that "Market_Cap",
// "marketCap" and "market cap" compare equal.
func FoldKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		if r == '_' || r == '-' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func foldRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[FoldKey(k)] = v
	}
	return out
}

func firstString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := row[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func decodeRows(raw RawPayload) ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		// Some providers wrap the list in an object.
		var wrapped map[string]json.RawMessage
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		for _, key := range []string{"data", "items", "results", "news"} {
			if inner, ok := wrapped[key]; ok {
				return decodeRows(RawPayload(inner))
			}
		}
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// DecodePrices converts an end-of-day payload into a PriceSeries. Rows
// without a parsable date or close are skipped.
func DecodePrices(ticker string, raw RawPayload) (model.PriceSeries, error) {
	rows, err := decodeRows(raw)
	if err != nil {
		return model.PriceSeries{Ticker: ticker}, err
	}
	points := make([]model.PricePoint, 0, len(rows))
	for _, r := range rows {
		row := foldRow(r)
		date, err := ParseDate(firstString(row, "date", "datetime", "timestamp"))
		if err != nil {
			continue
		}
		closeVal, ok := ParseNumber(row["adjustedclose"])
		if !ok || closeVal == 0 {
			closeVal, ok = ParseNumber(row["close"])
		}
		if !ok {
			continue
		}
		p := model.PricePoint{Date: date, Close: closeVal}
		p.Open, _ = ParseNumber(row["open"])
		p.High, _ = ParseNumber(row["high"])
		p.Low, _ = ParseNumber(row["low"])
		p.Volume, _ = ParseNumber(row["volume"])
		points = append(points, p)
	}
	return model.NewPriceSeries(ticker, points), nil
}

// DecodeNews converts a news payload into items, newest first as delivered.
func DecodeNews(raw RawPayload) ([]model.NewsItem, error) {
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, err
	}
	items := make([]model.NewsItem, 0, len(rows))
	for _, r := range rows {
		row := foldRow(r)
		title := firstString(row, "title", "headline")
		body := firstString(row, "content", "description", "body", "summary")
		if title == "" && body == "" {
			continue
		}
		item := model.NewsItem{
			Title:  title,
			Body:   body,
			Source: firstString(row, "source", "publisher"),
			URL:    firstString(row, "link", "url"),
		}
		if ts, err := ParseDate(firstString(row, "date", "publishedat", "published")); err == nil {
			item.PublishedAt = ts
		}
		items = append(items, item)
	}
	return items, nil
}
