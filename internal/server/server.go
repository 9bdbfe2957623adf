// Package server exposes overviews, comparisons, news, the watchlist and
// ETF discovery over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"MarketOverview/internal/discovery"
	"MarketOverview/internal/fallback"
	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/watchlist"
)

// Composer is satisfied by *overview.Composer.
type Composer interface {
	Compose(ctx context.Context, ticker string) *model.Overview
}

// Comparer is satisfied by *compare.Engine.
type Comparer interface {
	Compare(ctx context.Context, a, b string) *model.Comparison
}

// NewsSource is satisfied by *fallback.Resolver.
type NewsSource interface {
	News(ctx context.Context, ticker string) ([]model.NewsItem, fallback.Outcome)
}

// Deps are the engine components served by the API.
type Deps struct {
	Composer  Composer
	Comparer  Comparer
	News      NewsSource
	Watchlist watchlist.Store
	Universe  *discovery.Universe
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// New builds the router. mode is a gin mode: debug, release or test.
func New(addr, mode string, deps Deps) *Server {
	gin.SetMode(mode)
	RegisterValidators()

	r := gin.New()
	r.Use(RequestLogging(), Recovery())
	registerRoutes(r, &handler{deps: deps})

	return &Server{
		engine: r,
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Get().Infow("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Get().Infow("http server shutting down")
	return s.http.Shutdown(shutdownCtx)
}

func registerRoutes(r *gin.Engine, h *handler) {
	r.GET("/healthz", h.health)

	v1 := r.Group("/api/v1")
	v1.GET("/overview/:ticker", h.overview)
	v1.GET("/compare", h.compare)
	v1.GET("/news/:ticker", h.news)

	v1.GET("/watchlist", h.listWatchlist)
	v1.POST("/watchlist", h.addFavorite)
	v1.DELETE("/watchlist/:ticker", h.removeFavorite)
	v1.GET("/categories", h.categories)
	v1.GET("/history/:ticker", h.history)

	v1.GET("/etf", h.findETFs)
	v1.GET("/search", h.search)
}
