package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketOverview/internal/model"
)

func newTestEODHD(t *testing.T, h http.HandlerFunc) *EODHDGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewEODHDGateway("k", "", 2*time.Second, WithEODHDBaseURL(srv.URL), WithEODHDRateLimit(100))
}

func TestEODHD_PricesRequest(t *testing.T) {
	var gotPath, gotToken, gotFrom, gotFmt string
	g := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("api_token")
		gotFmt = r.URL.Query().Get("fmt")
		gotFrom = r.URL.Query().Get("from")
		_, _ = w.Write([]byte(`[{"date":"2024-01-02","open":1,"high":2,"low":0.5,"close":1.5,"volume":10}]`))
	})

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := g.Fetch(context.Background(), model.KindPrices, "MSFT.US", Params{From: from})
	require.NoError(t, err)
	assert.Equal(t, "/eod/MSFT.US", gotPath)
	assert.Equal(t, "k", gotToken)
	assert.Equal(t, "json", gotFmt)
	assert.Equal(t, "2024-01-01", gotFrom)

	series, err := DecodePrices("MSFT.US", raw)
	require.NoError(t, err)
	require.Equal(t, 1, series.Len())
	assert.Equal(t, 1.5, series.Points[0].Close)
}

func TestEODHD_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   ErrorCode
	}{
		{"rate limited", http.StatusTooManyRequests, "slow down", RateLimited},
		{"server error", http.StatusInternalServerError, "boom", HTTPStatus},
		{"not found", http.StatusNotFound, "", HTTPStatus},
		{"invalid json", http.StatusOK, "<html>", ParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := Guard(context.Background(), g, model.KindFundamentals, "X.US", Params{})
			require.Error(t, err)
			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.code, fe.Code)
			if tt.code == HTTPStatus {
				assert.Equal(t, tt.status, fe.Status)
			}
		})
	}
}

func TestEODHD_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()
	g := NewEODHDGateway("k", "", 50*time.Millisecond, WithEODHDBaseURL(srv.URL))

	_, err := Guard(context.Background(), g, model.KindPrices, "X.US", Params{})
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, Timeout, code)
}

func TestEODHD_EmptyArrayIsEmptyPayload(t *testing.T) {
	g := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := Guard(context.Background(), g, model.KindNews, "X.US", Params{})
	code, _ := CodeOf(err)
	assert.Equal(t, EmptyPayload, code)
}

func TestEODHD_MissingKey(t *testing.T) {
	g := NewEODHDGateway("", "", time.Second)
	_, err := Guard(context.Background(), g, model.KindPrices, "X.US", Params{})
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusUnauthorized, fe.Status)
}

func TestEODHD_NewsParams(t *testing.T) {
	var q map[string][]string
	g := newTestEODHD(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Query()
		_, _ = w.Write([]byte(`[{"title":"t","content":"c","date":"2024-02-01T10:00:00+00:00"}]`))
	})
	raw, err := g.Fetch(context.Background(), model.KindNews, "AAPL.US", Params{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL.US"}, q["symbol"])
	assert.Equal(t, []string{"AAPL.US"}, q["s"])
	assert.Equal(t, []string{"5"}, q["limit"])
	assert.NotEmpty(t, q["from"])

	items, err := DecodeNews(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2024, items[0].PublishedAt.Year())
}

func TestYahoo_ConvertsChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/MSFT", r.URL.Path)
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[1704153600,1704240000,1704326400],
			"indicators":{"quote":[{"open":[1,null,3],"high":[1,null,3],"low":[1,null,3],"close":[10,null,12],"volume":[5,null,7]}]}}]}}`))
	}))
	defer srv.Close()
	g := NewYahooGateway("", time.Second)
	g.BaseURL = srv.URL

	raw, err := Guard(context.Background(), g, model.KindPrices, "MSFT.US", Params{})
	require.NoError(t, err)
	series, err := DecodePrices("MSFT.US", raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12}, series.Closes())
}

func TestYahoo_Symbol(t *testing.T) {
	g := NewYahooGateway("", time.Second)
	assert.Equal(t, "MSFT", g.yahooSymbol("msft.us"))
	assert.Equal(t, "GGAL.BA", g.yahooSymbol("GGAL.BA"))
	assert.Equal(t, "VOD.L", g.yahooSymbol("VOD.LSE"))
	assert.Equal(t, "AAPL", g.yahooSymbol("AAPL"))
	assert.False(t, g.Supports(model.KindNews))
}

const testFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Yahoo! Finance: MSFT News</title>
<item><title>Microsoft beats estimates</title><description>Strong cloud growth.</description>
<link>https://example.com/1</link><pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate></item>
<item><title>Microsoft faces probe</title><description>Regulators open inquiry.</description>
<pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate></item>
</channel></rss>`

func TestRSS_ParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MSFT", r.URL.Query().Get("s"))
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()
	g := NewRSSGateway(srv.URL+"/rss?s=%s", "", time.Second)

	raw, err := Guard(context.Background(), g, model.KindNews, "MSFT.US", Params{})
	require.NoError(t, err)
	items, err := DecodeNews(raw)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Microsoft beats estimates", items[0].Title)
	assert.Equal(t, "Strong cloud growth.", items[0].Body)
	assert.Equal(t, "Yahoo! Finance: MSFT News", items[0].Source)
	assert.Equal(t, 2, items[0].PublishedAt.Day())
}

func TestRSS_GarbageIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer srv.Close()
	g := NewRSSGateway(srv.URL+"/?s=%s", "", time.Second)

	_, err := Guard(context.Background(), g, model.KindNews, "X", Params{})
	code, _ := CodeOf(err)
	assert.Equal(t, ParseError, code)
}

type panicGateway struct{}

func (panicGateway) Name() string { return "panic" }

func (panicGateway) Supports(_ model.FetchKind) bool { return true }

func (panicGateway) Fetch(context.Context, model.FetchKind, string, Params) (RawPayload, error) {
	panic("boom")
}

func TestGuard_RecoversPanic(t *testing.T) {
	_, err := Guard(context.Background(), panicGateway{}, model.KindPrices, "X", Params{})
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ParseError, code)
}

func TestClassify(t *testing.T) {
	err := Classify("g", model.KindNews, "X", context.DeadlineExceeded)
	code, _ := CodeOf(err)
	assert.Equal(t, Timeout, code)

	err = Classify("g", model.KindNews, "X", errors.New("connection refused"))
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, HTTPStatus, fe.Code)
	assert.Equal(t, 0, fe.Status)
	assert.False(t, fe.Retryable())
}

func TestMockGateway(t *testing.T) {
	m := NewMockGateway("m").Set(model.KindNews, "A", `[{"title":"x"}]`)
	m.Fail(model.KindPrices, &FetchError{Code: RateLimited})

	_, err := Guard(context.Background(), m, model.KindNews, "A", Params{})
	assert.NoError(t, err)
	_, err = Guard(context.Background(), m, model.KindNews, "B", Params{})
	code, _ := CodeOf(err)
	assert.Equal(t, EmptyPayload, code)
	_, err = Guard(context.Background(), m, model.KindPrices, "A", Params{})
	code, _ = CodeOf(err)
	assert.Equal(t, RateLimited, code)
	assert.Equal(t, 2, m.Calls(model.KindNews))
}
