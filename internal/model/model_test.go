package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundamentals_UnknownFieldsAreKeyed(t *testing.T) {
	data, err := json.Marshal(Fundamentals{Name: Str("Acme"), PERatio: Num(0)})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Len(t, m, 13)
	assert.Equal(t, "Acme", m["name"])
	assert.Equal(t, 0.0, m["pe_ratio"])
	assert.Contains(t, m, "ebitda")
	assert.Nil(t, m["ebitda"])
}

func TestNumber_UnmarshalUnknown(t *testing.T) {
	var f Fundamentals
	require.NoError(t, json.Unmarshal([]byte(`{"name":"unknown","eps":null,"book_value":"unknown","pe_ratio":12.5}`), &f))
	assert.False(t, f.Name.Known)
	assert.False(t, f.EPS.Known)
	assert.False(t, f.BookValue.Known)
	assert.Equal(t, Num(12.5), f.PERatio)
	assert.Equal(t, "unknown", f.EPS.String())
	assert.True(t, f.Known())
	assert.False(t, Fundamentals{}.Known())
}

func TestNewPriceSeries_SortsAndDedupes(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	s := NewPriceSeries("X", []PricePoint{
		{Date: d(3), Close: 3},
		{Date: d(1), Close: 1},
		{Date: d(2), Close: 2},
		{Date: d(3), Close: 33},
	})
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{1, 2, 33}, s.Closes())
	for i := 1; i < s.Len(); i++ {
		assert.True(t, s.Points[i-1].Date.Before(s.Points[i].Date))
	}
}

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		score float64
		label string
	}{
		{0.16, LabelPositive},
		{0.15, LabelNeutral},
		{0.0, LabelNeutral},
		{-0.15, LabelNeutral},
		{-0.2, LabelNegative},
		{1, LabelPositive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, SentimentLabel(tt.score), "score %.2f", tt.score)
	}
}

func TestCacheEntry_Fresh(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	e := CacheEntry[int]{FetchedAt: now.Add(-time.Hour), TTL: time.Hour}
	assert.False(t, e.Fresh(now))
	assert.True(t, e.Fresh(now.Add(-time.Second)))
}

func TestParseTicker(t *testing.T) {
	for _, in := range []string{"msft.us", " GGAL.BA ", "BRK-B", "^GSPC", "7203.T"} {
		_, err := ParseTicker(in)
		assert.NoError(t, err, in)
	}
	got, _ := ParseTicker(" msft.us ")
	assert.Equal(t, "MSFT.US", got)

	for _, in := range []string{"", "MS FT", "../etc", "A.B.C", "TOOLONGSYMBOLXXXXX"} {
		_, err := ParseTicker(in)
		assert.ErrorIs(t, err, ErrInvalidTicker, in)
	}
}
