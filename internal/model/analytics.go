package model

// Analytics holds the indicators derived from a price series. A nil field
// means the series could not support that indicator.
type Analytics struct {
	LastClose   *float64 `json:"last_close"`
	SMA20       *float64 `json:"sma20"`
	SMA50       *float64 `json:"sma50"`
	EMA20       *float64 `json:"ema20"`
	RSI14       *float64 `json:"rsi14"`
	Volatility  *float64 `json:"volatility"`
	Sharpe      *float64 `json:"sharpe"`
	Trend30     *float64 `json:"trend_30d_pct"`
	High52w     *float64 `json:"high_52w"`
	Low52w      *float64 `json:"low_52w"`
	Position52w *float64 `json:"position_52w"` // 0.0 ~ 1.0
	Points      int      `json:"points"`
}

// Available reports whether any indicator was computed.
func (a Analytics) Available() bool {
	return a.LastClose != nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
