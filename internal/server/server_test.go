package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketOverview/internal/discovery"
	"MarketOverview/internal/fallback"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/watchlist"
)

func init() { logger.Init("test") }

// --- stubs ---

type stubComposer struct{ calls []string }

func (s *stubComposer) Compose(_ context.Context, t string) *model.Overview {
	s.calls = append(s.calls, t)
	return &model.Overview{
		Ticker:  t,
		Sources: map[model.FetchKind]model.Tier{model.KindPrices: model.TierLive},
	}
}

type stubComparer struct{}

func (stubComparer) Compare(_ context.Context, a, b string) *model.Comparison {
	return &model.Comparison{Tickers: [2]string{model.CanonicalTicker(a), model.CanonicalTicker(b)}}
}

type stubNews struct{ items []model.NewsItem }

func (s stubNews) News(_ context.Context, _ string) ([]model.NewsItem, fallback.Outcome) {
	return s.items, fallback.Outcome{Tier: model.TierLive, Source: "stub"}
}

// --- router setup ---

func setupRouter(t *testing.T) (*Server, *stubComposer, *watchlist.MemoryStore) {
	t.Helper()
	comp := &stubComposer{}
	wl := watchlist.NewMemoryStore()
	news := stubNews{items: []model.NewsItem{
		{Title: "MSFT beats estimates", PublishedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "Local weather turns cold"},
		{Title: "Earnings season opens"},
	}}
	srv := New(":0", gin.TestMode, Deps{
		Composer:  comp,
		Comparer:  stubComparer{},
		News:      news,
		Watchlist: wl,
		Universe:  discovery.Default(),
	})
	return srv, comp, wl
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error object: %s", w.Body.String())
	return e["code"].(string)
}

// --- tests ---

func TestHealth(t *testing.T) {
	srv, _, _ := setupRouter(t)
	w := do(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestOverview(t *testing.T) {
	srv, comp, _ := setupRouter(t)

	t.Run("canonicalizes ticker", func(t *testing.T) {
		w := do(srv, http.MethodGet, "/api/v1/overview/msft.us", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MSFT.US", decode(t, w)["ticker"])
		assert.Equal(t, []string{"MSFT.US"}, comp.calls)
	})

	t.Run("rejects invalid ticker", func(t *testing.T) {
		w := do(srv, http.MethodGet, "/api/v1/overview/b@d", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_TICKER", errorCode(t, w))
	})
}

func TestCompare(t *testing.T) {
	srv, _, _ := setupRouter(t)

	w := do(srv, http.MethodGet, "/api/v1/compare?a=msft.us&b=AAPL.US", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"MSFT.US", "AAPL.US"}, decode(t, w)["tickers"])

	tests := []struct {
		name  string
		query string
	}{
		{"missing b", "a=MSFT.US"},
		{"invalid a", "a=b@d&b=AAPL.US"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, http.MethodGet, "/api/v1/compare?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
		})
	}
}

func TestNews(t *testing.T) {
	srv, _, _ := setupRouter(t)

	w := do(srv, http.MethodGet, "/api/v1/news/MSFT.US", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["items"], 3)
	assert.Equal(t, "live", body["tier"])

	w = do(srv, http.MethodGet, "/api/v1/news/MSFT.US?relevant=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 2)

	w = do(srv, http.MethodGet, "/api/v1/news/MSFT.US?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = do(srv, http.MethodGet, "/api/v1/news/MSFT.US?limit=0", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(srv, http.MethodGet, "/api/v1/news/MSFT.US?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchlistCRUD(t *testing.T) {
	srv, _, wl := setupRouter(t)

	w := do(srv, http.MethodPost, "/api/v1/watchlist", `{"ticker":"msft.us","category":"Tech"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "MSFT.US", decode(t, w)["ticker"])

	w = do(srv, http.MethodPost, "/api/v1/watchlist", `{"ticker":"GLD.US"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(srv, http.MethodGet, "/api/v1/watchlist?category=tech", "")
	require.Equal(t, http.StatusOK, w.Code)
	favs := decode(t, w)["favorites"].([]any)
	require.Len(t, favs, 1)
	assert.Equal(t, "MSFT.US", favs[0].(map[string]any)["ticker"])

	w = do(srv, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"general", "tech"}, decode(t, w)["categories"])

	w = do(srv, http.MethodDelete, "/api/v1/watchlist/MSFT.US", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(srv, http.MethodDelete, "/api/v1/watchlist/MSFT.US", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	tickers, err := wl.Tickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"GLD.US"}, tickers)
}

func TestWatchlistValidation(t *testing.T) {
	srv, _, _ := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing ticker", `{"category":"tech"}`},
		{"bad ticker", `{"ticker":"b@d"}`},
		{"bad category", `{"ticker":"MSFT.US","category":"<script>"}`},
		{"malformed json", `{"ticker":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, http.MethodPost, "/api/v1/watchlist", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
		})
	}
}

func TestHistory(t *testing.T) {
	srv, _, wl := setupRouter(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, wl.RecordSnapshot(model.Snapshot{
			Ticker:  "MSFT.US",
			TakenAt: time.Date(2026, 3, 1+i, 6, 0, 0, 0, time.UTC),
		}))
	}

	w := do(srv, http.MethodGet, "/api/v1/history/MSFT.US?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["snapshots"], 2)
}

func TestDiscovery(t *testing.T) {
	srv, _, _ := setupRouter(t)

	w := do(srv, http.MethodGet, "/api/v1/etf?q=gold", "")
	require.Equal(t, http.StatusOK, w.Code)
	etfs := decode(t, w)["etfs"].([]any)
	require.Len(t, etfs, 2)
	assert.Equal(t, "GLD.US", etfs[0].(map[string]any)["ticker"])

	w = do(srv, http.MethodGet, "/api/v1/etf", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Empty(t, body["etfs"])
	assert.Contains(t, body["themes"], "gold")

	w = do(srv, http.MethodGet, "/api/v1/search?q=gl", "")
	require.Equal(t, http.StatusOK, w.Code)
	matches := decode(t, w)["matches"].([]any)
	require.NotEmpty(t, matches)
	assert.Equal(t, "GLD.US", matches[0].(map[string]any)["ticker"])

	w = do(srv, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondWithErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) { respondWithError(c, assert.AnError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
