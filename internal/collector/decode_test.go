package collector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePrices_Tolerant(t *testing.T) {
	raw := RawPayload(`[
		{"Date":"2024-01-03","Open":"2","High":"3","Low":"1","Close":"2.5","Volume":"100"},
		{"date":"2024-01-02 00:00:00","close":2},
		{"date":"bad","close":9},
		{"date":"2024-01-04","close":"NA"},
		{"date":"2024-01-02","close":2.2}
	]`)
	s, err := DecodePrices("X", raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.2, 2.5}, s.Closes())
	assert.Equal(t, 100.0, s.Points[1].Volume)
}

func TestDecodePrices_Wrapped(t *testing.T) {
	s, err := DecodePrices("X", RawPayload(`{"data":[{"date":"2024-01-02","close":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = DecodePrices("X", RawPayload(`"nope"`))
	assert.Error(t, err)
}

func TestDecodeNews_AlternateKeys(t *testing.T) {
	items, err := DecodeNews(RawPayload(`[
		{"headline":"H1","description":"D1","published_at":"2024-01-02T10:00:00"},
		{"title":"T2","content":"C2","date":"2024-01-01"},
		{"foo":"bar"}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "H1", items[0].Title)
	assert.Equal(t, "D1", items[0].Body)
	assert.Equal(t, 10, items[0].PublishedAt.Hour())
	assert.Equal(t, "C2", items[1].Body)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{"12.5", 12.5, true},
		{"1,234", 1234, true},
		{"NA", 0, false},
		{"None", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{"0", 0, true},
		{true, 0, false},
		{"Infinity", 0, false},
		{"-inf", 0, false},
		{"+Inf", 0, false},
		{math.Inf(1), 0, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestRawPayloadEmpty(t *testing.T) {
	for _, s := range []string{"", " ", "null", "[]", "{}", `""`} {
		assert.True(t, RawPayload(s).Empty(), s)
	}
	assert.False(t, RawPayload(`[1]`).Empty())
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "marketcapitalization", FoldKey("Market_Capitalization"))
	assert.Equal(t, "balancesheet", FoldKey("Balance Sheet"))
	assert.Equal(t, "balancesheet", FoldKey("Balance-Sheet"))
}
