package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"MarketOverview/internal/model"
)

// DefaultRSSTemplate is the Yahoo per-symbol headline feed. %s receives the
// ticker root.
const DefaultRSSTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// RSSGateway serves news from a per-ticker RSS/Atom feed.
type RSSGateway struct {
	URLTemplate string
	Client      *http.Client
	parser      *gofeed.Parser
}

// NewRSSGateway creates a gateway; an empty template selects the default.
func NewRSSGateway(urlTemplate, proxyURL string, timeout time.Duration) *RSSGateway {
	if urlTemplate == "" {
		urlTemplate = DefaultRSSTemplate
	}
	return &RSSGateway{
		URLTemplate: urlTemplate,
		Client:      newHTTPClient(timeout, proxyURL),
		parser:      gofeed.NewParser(),
	}
}

func (g *RSSGateway) Name() string { return "rss" }

func (g *RSSGateway) Supports(kind model.FetchKind) bool { return kind == model.KindNews }

func (g *RSSGateway) Fetch(ctx context.Context, kind model.FetchKind, ticker string, p Params) (RawPayload, error) {
	if !g.Supports(kind) {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: fmt.Errorf("unsupported kind")}
	}
	root, _, _ := strings.Cut(strings.ToUpper(ticker), ".")
	endpoint := fmt.Sprintf(g.URLTemplate, url.QueryEscape(root))

	body, err := getBody(ctx, g.Client, g.Name(), kind, ticker, endpoint, http.Header{"User-Agent": {"Mozilla/5.0"}})
	if err != nil {
		return nil, err
	}
	feed, err := g.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: err}
	}

	rows := make([]wireNews, 0, len(feed.Items))
	for _, item := range feed.Items {
		if p.Limit > 0 && len(rows) >= p.Limit {
			break
		}
		row := wireNews{
			Title:   strings.TrimSpace(item.Title),
			Content: strings.TrimSpace(item.Description),
			Source:  feed.Title,
			Link:    item.Link,
		}
		if row.Content == "" {
			row.Content = strings.TrimSpace(item.Content)
		}
		if item.PublishedParsed != nil {
			if !p.From.IsZero() && item.PublishedParsed.Before(p.From) {
				continue
			}
			row.Date = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	out, err := json.Marshal(rows)
	if err != nil {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: err}
	}
	return out, nil
}
