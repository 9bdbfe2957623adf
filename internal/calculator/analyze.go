package calculator

import (
	"time"

	"MarketOverview/internal/model"
)

// Indicator windows.
const (
	ShortWindow = 20
	LongWindow  = 50
	RSIPeriod   = 14
	TrendWindow = 30
)

// Options tunes Analyze.
type Options struct {
	// RiskFree is the annual risk-free rate used for the Sharpe ratio.
	RiskFree float64
}

func ptr(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// Analyze derives every indicator the series supports. An empty series
// yields an Analytics with no fields set.
func Analyze(series model.PriceSeries, opts Options) model.Analytics {
	a := model.Analytics{Points: series.Len()}
	if series.Len() == 0 {
		return a
	}
	closes := series.Closes()
	last := closes[len(closes)-1]
	a.LastClose = model.Float(last)

	if v, ok := Last(SMA(closes, ShortWindow)); ok {
		a.SMA20 = model.Float(Round(v, 4))
	}
	if v, ok := Last(SMA(closes, LongWindow)); ok {
		a.SMA50 = model.Float(Round(v, 4))
	}
	if v, ok := Last(EMA(closes, ShortWindow)); ok {
		a.EMA20 = model.Float(Round(v, 4))
	}
	if v, ok := Last(RSI(closes, RSIPeriod)); ok {
		a.RSI14 = model.Float(Round(v, 2))
	}
	a.Volatility = ptr(Volatility(closes))
	a.Sharpe = ptr(Sharpe(closes, opts.RiskFree))
	a.Trend30 = ptr(Trend(closes, TrendWindow))

	if high, low, err := Calculate52WeekRange(series.Points); err == nil {
		a.High52w = model.Float(high)
		a.Low52w = model.Float(low)
		if pos, err := Calculate52WeekPosition(last, high, low); err == nil {
			a.Position52w = model.Float(Round(pos, 4))
		}
	}
	return a
}

// RelativePerformance joins two series on date and rebases both to 100 at
// the first shared date.
func RelativePerformance(a, b model.PriceSeries) []model.RelativePoint {
	byDay := make(map[string]float64, b.Len())
	for _, p := range b.Points {
		byDay[dayKey(p.Date)] = p.Close
	}
	var out []model.RelativePoint
	var baseA, baseB float64
	for _, p := range a.Points {
		closeB, ok := byDay[dayKey(p.Date)]
		if !ok {
			continue
		}
		if out == nil {
			if p.Close == 0 || closeB == 0 {
				continue
			}
			baseA, baseB = p.Close, closeB
		}
		out = append(out, model.RelativePoint{
			Date: p.Date,
			A:    Round(p.Close/baseA*100, 4),
			B:    Round(closeB/baseB*100, 4),
		})
	}
	return out
}

func dayKey(t time.Time) string { return t.UTC().Format("2006-01-02") }
