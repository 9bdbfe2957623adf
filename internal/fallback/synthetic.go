package fallback

import (
	"hash/fnv"
	"math/rand"
	"time"

	"MarketOverview/internal/model"
	"MarketOverview/internal/normalize"
)

// demoFundamentals are shipped fixtures for well-known demo tickers.
var demoFundamentals = map[string]normalize.Result{
	"MSFT.US": {
		Fundamentals: model.Fundamentals{
			Name:             model.Str("Microsoft Corporation"),
			Country:          model.Str("USA"),
			Sector:           model.Str("Technology"),
			Industry:         model.Str("Software-Infrastructure"),
			MarketCap:        model.Num(2500000000000),
			PERatio:          model.Num(30.5),
			EPS:              model.Num(9.12),
			ProfitMargin:     model.Num(0.36),
			EBITDA:           model.Num(110000000000),
			TotalAssets:      model.Num(350000000000),
			TotalLiabilities: model.Num(150000000000),
			BookValue:        model.Num(25.5),
			Description:      model.Str("Microsoft develops, licenses, and supports software, services, devices, and solutions worldwide."),
		},
		Competitors: []string{"AAPL.US", "GOOGL.US", "AMZN.US", "ORCL.US"},
	},
	"GGAL.BA": {
		Fundamentals: model.Fundamentals{
			Name:         model.Str("Grupo Financiero Galicia S.A."),
			Country:      model.Str("Argentina"),
			Sector:       model.Str("Financial"),
			Industry:     model.Str("Banks-Regional"),
			MarketCap:    model.Num(120000000000),
			PERatio:      model.Num(6.8),
			EPS:          model.Num(2.3),
			ProfitMargin: model.Num(0.15),
			Description:  model.Str("Bank and financial services group with a strong presence in Argentina."),
		},
		Competitors: []string{"BMA.BA", "SUPV.BA", "BBAR.BA"},
	},
}

// demoPrices describes the linear fixture series: close = base + step*i
// for i counting down from 60 to 0 days ago.
var demoPrices = map[string]struct {
	base, step, volume float64
}{
	"MSFT.US": {301, 0.2, 1000000},
	"GGAL.BA": {90.5, 0.1, 200000},
}

var demoNews = map[string][]struct {
	title, body string
	daysAgo     int
}{
	"MSFT.US": {
		{"Microsoft reports strong quarterly earnings", "Microsoft beat expectations.", 1},
		{"Azure growth accelerates", "Cloud business continues to expand.", 3},
	},
	"GGAL.BA": {
		{"Grupo Galicia posts solid retail results", "Positive numbers in consumer loans.", 2},
	},
}

func seed(ticker string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// syntheticFundamentals returns the fixture for ticker or a placeholder
// record carrying only the name.
func syntheticFundamentals(ticker string) normalize.Result {
	if r, ok := demoFundamentals[ticker]; ok {
		r.Competitors = append([]string(nil), r.Competitors...)
		return r
	}
	return normalize.Result{
		Fundamentals: model.Fundamentals{Name: model.Str(ticker)},
		Competitors:  []string{},
	}
}

// syntheticPrices derives a daily series ending at end. The same ticker and
// end date always produce the same series.
func syntheticPrices(ticker string, end time.Time, days int) model.PriceSeries {
	end = day(end)
	if demo, ok := demoPrices[ticker]; ok {
		points := make([]model.PricePoint, 0, 61)
		for i := 60; i >= 0; i-- {
			c := demo.base + float64(i)*demo.step
			points = append(points, model.PricePoint{
				Date:   end.AddDate(0, 0, -i),
				Open:   c - 1,
				High:   c + 1,
				Low:    c - 2,
				Close:  c,
				Volume: demo.volume,
			})
		}
		return model.NewPriceSeries(ticker, points)
	}

	if days <= 0 {
		days = 90
	}
	rng := rand.New(rand.NewSource(seed(ticker)))
	price := 20 + rng.Float64()*180
	points := make([]model.PricePoint, days)
	for i := 0; i < days; i++ {
		price *= 1 + (rng.Float64()-0.5)*0.04
		points[i] = model.PricePoint{
			Date:   end.AddDate(0, 0, -(days - 1 - i)),
			Open:   price * 0.999,
			High:   price * 1.005,
			Low:    price * 0.995,
			Close:  price,
			Volume: float64(100000 + rng.Intn(900000)),
		}
	}
	return model.NewPriceSeries(ticker, points)
}

// syntheticNews returns fixture headlines; other tickers have none.
func syntheticNews(ticker string, now time.Time) []model.NewsItem {
	fixtures := demoNews[ticker]
	items := make([]model.NewsItem, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, model.NewsItem{
			Title:       f.title,
			Body:        f.body,
			PublishedAt: day(now).AddDate(0, 0, -f.daysAgo),
			Source:      "demo",
		})
	}
	return items
}
