package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"MarketOverview/internal/model"
)

const (
	DefaultEODHDBaseURL = "https://eodhd.com/api"
	defaultNewsDaysBack = 60
	defaultNewsLimit    = 50
)

// EODHDGateway implements Gateway against the EODHD REST API.
type EODHDGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// EODHDOption configures an EODHDGateway.
type EODHDOption func(*EODHDGateway)

// WithEODHDBaseURL overrides the API root.
func WithEODHDBaseURL(u string) EODHDOption {
	return func(g *EODHDGateway) { g.BaseURL = strings.TrimRight(u, "/") }
}

// WithEODHDHTTPClient replaces the HTTP client.
func WithEODHDHTTPClient(c *http.Client) EODHDOption {
	return func(g *EODHDGateway) { g.Client = c }
}

// WithEODHDRateLimit caps outgoing requests per second.
func WithEODHDRateLimit(perSecond float64) EODHDOption {
	return func(g *EODHDGateway) {
		if perSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(perSecond), max(int(perSecond), 1))
		}
	}
}

// NewEODHDGateway creates a gateway with optional proxy support.
func NewEODHDGateway(apiKey, proxyURL string, timeout time.Duration, opts ...EODHDOption) *EODHDGateway {
	g := &EODHDGateway{
		BaseURL: DefaultEODHDBaseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(timeout, proxyURL),
		limiter: rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *EODHDGateway) Name() string { return "eodhd" }

func (g *EODHDGateway) Supports(kind model.FetchKind) bool {
	switch kind {
	case model.KindFundamentals, model.KindPrices, model.KindNews:
		return true
	}
	return false
}

func (g *EODHDGateway) Fetch(ctx context.Context, kind model.FetchKind, ticker string, p Params) (RawPayload, error) {
	if g.APIKey == "" {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: HTTPStatus, Status: http.StatusUnauthorized, Err: fmt.Errorf("api key not configured")}
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: RateLimited, Err: err}
	}

	params := url.Values{}
	params.Set("api_token", g.APIKey)
	params.Set("fmt", "json")

	var path string
	switch kind {
	case model.KindPrices:
		path = "/eod/" + url.PathEscape(ticker)
		if !p.From.IsZero() {
			params.Set("from", p.From.Format("2006-01-02"))
		}
		if !p.To.IsZero() {
			params.Set("to", p.To.Format("2006-01-02"))
		}
	case model.KindFundamentals:
		path = "/fundamentals/" + url.PathEscape(ticker)
	case model.KindNews:
		path = "/news"
		params.Set("symbol", ticker)
		params.Set("s", ticker)
		to := p.To
		if to.IsZero() {
			to = time.Now()
		}
		from := p.From
		if from.IsZero() {
			from = to.AddDate(0, 0, -defaultNewsDaysBack)
		}
		params.Set("from", from.Format("2006-01-02"))
		params.Set("to", to.Format("2006-01-02"))
		limit := p.Limit
		if limit <= 0 {
			limit = defaultNewsLimit
		}
		params.Set("limit", strconv.Itoa(limit))
	default:
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: fmt.Errorf("unsupported kind")}
	}

	body, err := getBody(ctx, g.Client, g.Name(), kind, ticker, g.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: fmt.Errorf("invalid json")}
	}
	return body, nil
}
