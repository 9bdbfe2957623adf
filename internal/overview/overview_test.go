package overview

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketOverview/internal/benchmark"
	"MarketOverview/internal/collector"
	"MarketOverview/internal/fallback"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/normalize"
	"MarketOverview/internal/sentiment"
)

func init() { logger.Init("test") }

var fixedNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// stubSource serves canned results per ticker.
type stubSource struct {
	fund   map[string]normalize.Result
	prices map[string]model.PriceSeries
	news   map[string][]model.NewsItem
	tier   model.Tier
	// pricesBlock makes Prices wait for cancellation.
	pricesBlock bool
}

func (s *stubSource) outcome(ok bool) fallback.Outcome {
	if !ok {
		return fallback.Outcome{Tier: model.TierUnavailable}
	}
	tier := s.tier
	if tier == "" {
		tier = model.TierLive
	}
	return fallback.Outcome{Tier: tier, Source: "stub"}
}

func (s *stubSource) Fundamentals(_ context.Context, t string) (normalize.Result, fallback.Outcome) {
	r, ok := s.fund[t]
	if !ok {
		return normalize.Result{Competitors: []string{}}, s.outcome(false)
	}
	return r, s.outcome(true)
}

func (s *stubSource) Prices(ctx context.Context, t string) (model.PriceSeries, fallback.Outcome) {
	if s.pricesBlock {
		<-ctx.Done()
		return model.PriceSeries{Ticker: t, Points: []model.PricePoint{}}, s.outcome(false)
	}
	p, ok := s.prices[t]
	return p, s.outcome(ok)
}

func (s *stubSource) News(_ context.Context, t string) ([]model.NewsItem, fallback.Outcome) {
	n, ok := s.news[t]
	if !ok {
		return []model.NewsItem{}, s.outcome(false)
	}
	return n, s.outcome(true)
}

// risingSeries closes at 100, 101, ... for n days ending at fixedNow.
func risingSeries(ticker string, n int) model.PriceSeries {
	pts := make([]model.PricePoint, n)
	for i := range pts {
		c := 100 + float64(i)
		pts[i] = model.PricePoint{Date: fixedNow.AddDate(0, 0, i-n+1), Open: c, High: c, Low: c, Close: c}
	}
	return model.NewPriceSeries(ticker, pts)
}

func TestCompose_AllSourcesFail(t *testing.T) {
	mock := collector.NewMockGateway("mock")
	mock.Fail(model.KindFundamentals, context.DeadlineExceeded)
	res := fallback.New([]collector.Gateway{mock}, nil, fallback.Options{Clock: clock})
	c := New(res, benchmark.New(res, 0, 0), sentiment.NewAggregator(sentiment.NewLexiconScorer()), Options{Clock: clock})

	var ov *model.Overview
	require.NotPanics(t, func() { ov = c.Compose(context.Background(), "zzzz") })
	require.NotNil(t, ov)

	assert.Equal(t, "ZZZZ", ov.Ticker)
	assert.NotEmpty(t, ov.RequestID)
	assert.False(t, ov.Fundamentals.Known())
	assert.False(t, ov.Analytics.Available())
	assert.Nil(t, ov.Sentiment)
	assert.Nil(t, ov.CompetitorStats)
	assert.Nil(t, ov.Score)
	assert.Empty(t, ov.Narrative)
	assert.NotNil(t, ov.News)
	assert.NotNil(t, ov.Competitors)
	for _, kind := range []model.FetchKind{model.KindFundamentals, model.KindPrices, model.KindNews} {
		assert.Equal(t, model.TierUnavailable, ov.Sources[kind], kind)
	}

	data, err := json.Marshal(ov)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	fund := decoded["fundamentals"].(map[string]any)
	assert.Len(t, fund, 13)
	assert.Contains(t, fund, "pe_ratio")
	assert.Nil(t, fund["pe_ratio"])
}

func TestCompose_NarrativeOrder(t *testing.T) {
	src := &stubSource{
		fund: map[string]normalize.Result{
			"ACME.US": {
				Fundamentals: model.Fundamentals{
					Name:        model.Str("Acme Corp"),
					PERatio:     model.Num(20),
					Description: model.Str("Acme builds rockets. Acme sells rockets to everyone. The weather is nice."),
				},
				Competitors: []string{"P1.US", "P2.US", "P3.US"},
			},
			"P1.US": {Fundamentals: model.Fundamentals{PERatio: model.Num(10)}},
			"P2.US": {Fundamentals: model.Fundamentals{PERatio: model.Num(12)}},
			"P3.US": {Fundamentals: model.Fundamentals{PERatio: model.Num(14)}},
		},
		prices: map[string]model.PriceSeries{"ACME.US": risingSeries("ACME.US", 60)},
		news: map[string][]model.NewsItem{"ACME.US": {
			{Title: "Acme beats estimates"},
			{Title: "Acme rallies on record profit"},
		}},
	}
	c := New(src, benchmark.New(src, 0, 0), sentiment.NewAggregator(sentiment.StaticScorer(0.4)), Options{Clock: clock})
	ov := c.Compose(context.Background(), "acme.us")

	require.NotNil(t, ov.CompetitorStats)
	assert.Equal(t, 12.0, ov.CompetitorStats.AvgPE)
	require.NotNil(t, ov.Sentiment)
	assert.Equal(t, model.LabelPositive, ov.Sentiment.Label)
	require.True(t, ov.Analytics.Available())
	require.NotNil(t, ov.Score)

	require.Len(t, ov.Sentences, 4)
	assert.Equal(t, "Acme sells rockets to everyone. Acme builds rockets.", ov.Sentences[0])
	assert.Contains(t, ov.Sentences[1], "The price rose")
	assert.Equal(t, "Market sentiment is positive (average 0.4).", ov.Sentences[2])
	assert.Equal(t, "The current P/E (20) is above the peer average (12).", ov.Sentences[3])
	assert.Equal(t, fixedNow, ov.GeneratedAt)
}

func TestCompose_SkipsEqualPE(t *testing.T) {
	f := model.Fundamentals{PERatio: model.Num(12)}
	s := Narrative(f, nil, nil, &model.CompetitorStats{AvgPE: 12, MinPE: 10, MaxPE: 14, Count: 3})
	assert.Empty(t, s)
}

func TestCompose_SyntheticExcludedFromAnalytics(t *testing.T) {
	src := &stubSource{
		tier:   model.TierSynthetic,
		prices: map[string]model.PriceSeries{"DEMO.US": risingSeries("DEMO.US", 40)},
		news:   map[string][]model.NewsItem{"DEMO.US": {{Title: "Demo headline"}}},
	}
	agg := sentiment.NewAggregator(sentiment.StaticScorer(0.5))

	ov := New(src, nil, agg, Options{Clock: clock}).Compose(context.Background(), "DEMO.US")
	assert.False(t, ov.Analytics.Available())
	assert.Nil(t, ov.Sentiment)
	assert.Equal(t, model.TierSynthetic, ov.Sources[model.KindPrices])
	assert.Len(t, ov.Series.Points, 40)

	ov = New(src, nil, agg, Options{Clock: clock, SyntheticAnalytics: true}).Compose(context.Background(), "DEMO.US")
	assert.True(t, ov.Analytics.Available())
	require.NotNil(t, ov.Sentiment)
	assert.Equal(t, 0.5, ov.Sentiment.AvgScore)
}

func TestCompose_SlowLegTimesOut(t *testing.T) {
	src := &stubSource{
		pricesBlock: true,
		fund: map[string]normalize.Result{"ACME.US": {
			Fundamentals: model.Fundamentals{Name: model.Str("Acme")},
			Competitors:  []string{},
		}},
	}
	c := New(src, nil, nil, Options{Clock: clock, PricesTimeout: 50 * time.Millisecond})

	start := time.Now()
	ov := c.Compose(context.Background(), "ACME.US")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, model.TierLive, ov.Sources[model.KindFundamentals])
	assert.Equal(t, model.TierUnavailable, ov.Sources[model.KindPrices])
	assert.Equal(t, "Acme", ov.Fundamentals.Name.Value)
}

func TestExcerpt(t *testing.T) {
	short := "One sentence. Two sentences."
	assert.Equal(t, short, Excerpt(short, 2))

	text := "Cloud software leads. Cloud software and cloud services grow. Offices exist."
	assert.Equal(t, "Cloud software and cloud services grow. Cloud software leads.", Excerpt(text, 2))
}
