package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MarketOverview/internal/model"
)

// DefaultYahooBaseURL is the public chart API root.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooGateway serves daily prices from the Yahoo Finance chart API.
type YahooGateway struct {
	BaseURL string
	Client  *http.Client
	// SuffixMap rewrites exchange suffixes to Yahoo's convention; an empty
	// value drops the suffix.
	SuffixMap map[string]string
}

// NewYahooGateway creates a gateway with optional proxy support.
func NewYahooGateway(proxyURL string, timeout time.Duration) *YahooGateway {
	return &YahooGateway{
		BaseURL: DefaultYahooBaseURL,
		Client:  newHTTPClient(timeout, proxyURL),
		SuffixMap: map[string]string{
			"US":    "",
			"BA":    ".BA",
			"LSE":   ".L",
			"TO":    ".TO",
			"PA":    ".PA",
			"XETRA": ".DE",
		},
	}
}

func (g *YahooGateway) Name() string { return "yahoo" }

func (g *YahooGateway) Supports(kind model.FetchKind) bool { return kind == model.KindPrices }

// yahooSymbol maps "MSFT.US" to "MSFT" and "GGAL.BA" to "GGAL.BA".
func (g *YahooGateway) yahooSymbol(ticker string) string {
	root, exch, ok := strings.Cut(strings.ToUpper(ticker), ".")
	if !ok {
		return root
	}
	if mapped, found := g.SuffixMap[exch]; found {
		return root + mapped
	}
	return root + "." + exch
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

// chartRange picks the smallest Yahoo range covering the requested window.
func chartRange(p Params) string {
	if p.From.IsZero() {
		return "2y"
	}
	to := p.To
	if to.IsZero() {
		to = time.Now()
	}
	days := int(to.Sub(p.From).Hours() / 24)
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	}
	return "5y"
}

func (g *YahooGateway) Fetch(ctx context.Context, kind model.FetchKind, ticker string, p Params) (RawPayload, error) {
	if !g.Supports(kind) {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: fmt.Errorf("unsupported kind")}
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		g.BaseURL, url.PathEscape(g.yahooSymbol(ticker)), chartRange(p))

	body, err := getBody(ctx, g.Client, g.Name(), kind, ticker, endpoint, http.Header{"User-Agent": {"Mozilla/5.0"}})
	if err != nil {
		return nil, err
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: err}
	}
	if chart.Chart.Error != nil {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: HTTPStatus, Status: http.StatusNotFound,
			Err: fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)}
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: EmptyPayload}
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	rows := make([]wirePrice, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == 0 {
			continue // null bars on holidays
		}
		day := time.Unix(ts, 0).UTC()
		if !p.From.IsZero() && day.Before(p.From) {
			continue
		}
		rows = append(rows, wirePrice{
			Date:   day.Format("2006-01-02"),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}
	out, err := json.Marshal(rows)
	if err != nil {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: err}
	}
	return out, nil
}
