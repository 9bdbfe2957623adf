package calculator

import (
	"math"
)

// Returns computes daily percentage returns. Changes from a zero close are
// skipped.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdev is the ddof=1 standard deviation; callers ensure len(xs) >= 2.
func sampleStdev(xs []float64) float64 {
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Volatility returns the annualized standard deviation of daily returns,
// rounded to 4 places. It is undefined with fewer than two returns.
func Volatility(closes []float64) (float64, bool) {
	r := Returns(closes)
	if len(r) < 2 {
		return 0, false
	}
	return Round(sampleStdev(r)*math.Sqrt(TradingDaysPerYear), 4), true
}

// Sharpe returns the annualized Sharpe ratio for an annual risk-free rate,
// rounded to 4 places. It is undefined with fewer than two returns or when
// returns do not vary.
func Sharpe(closes []float64, riskFree float64) (float64, bool) {
	r := Returns(closes)
	if len(r) < 2 {
		return 0, false
	}
	sd := sampleStdev(r)
	if sd == 0 {
		return 0, false
	}
	daily := riskFree / TradingDaysPerYear
	excess := make([]float64, len(r))
	for i, x := range r {
		excess[i] = x - daily
	}
	return Round(mean(excess)/sd*math.Sqrt(TradingDaysPerYear), 4), true
}

// Trend returns the percentage change from the close window points back to
// the last close, rounded to 2 places.
func Trend(closes []float64, window int) (float64, bool) {
	n := len(closes)
	if window <= 0 || n < window {
		return 0, false
	}
	base := closes[n-window]
	if base == 0 {
		return 0, false
	}
	return Round((closes[n-1]-base)/base*100, 2), true
}
