package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"MarketOverview/internal/model"
	"MarketOverview/internal/sentiment"
)

type handler struct {
	deps Deps
}

type tickerURI struct {
	Ticker string `uri:"ticker" binding:"required,ticker"`
}

type compareQuery struct {
	A string `form:"a" binding:"required,ticker"`
	B string `form:"b" binding:"required,ticker"`
}

type newsQuery struct {
	Limit    int  `form:"limit" binding:"omitempty,min=1,max=100"`
	Relevant bool `form:"relevant"`
}

type favoriteRequest struct {
	Ticker   string `json:"ticker" binding:"required,ticker"`
	Category string `json:"category" binding:"omitempty,category"`
}

type categoryQuery struct {
	Category string `form:"category" binding:"omitempty,category"`
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=365"`
}

type searchQuery struct {
	Q string `form:"q" binding:"required,max=64"`
}

// bindTicker binds and canonicalizes the :ticker path parameter.
func bindTicker(c *gin.Context) (string, bool) {
	var uri tickerURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondWithError(c, withMessage(ErrInvalidTicker, err.Error()))
		return "", false
	}
	t, err := model.ParseTicker(uri.Ticker)
	if err != nil {
		respondWithError(c, err)
		return "", false
	}
	return t, true
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) overview(c *gin.Context) {
	ticker, ok := bindTicker(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.deps.Composer.Compose(c.Request.Context(), ticker))
}

func (h *handler) compare(c *gin.Context) {
	var q compareQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, withMessage(ErrInvalidInput, err.Error()))
		return
	}
	c.JSON(http.StatusOK, h.deps.Comparer.Compare(c.Request.Context(), q.A, q.B))
}

func (h *handler) news(c *gin.Context) {
	ticker, ok := bindTicker(c)
	if !ok {
		return
	}
	var q newsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, withMessage(ErrInvalidInput, err.Error()))
		return
	}

	items, out := h.deps.News.News(c.Request.Context(), ticker)
	if q.Relevant {
		items = sentiment.Relevant(items, ticker, "")
	}
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	if items == nil {
		items = []model.NewsItem{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ticker": ticker,
		"tier":   out.Tier,
		"source": out.Source,
		"items":  items,
	})
}

func (h *handler) listWatchlist(c *gin.Context) {
	var q categoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, withMessage(ErrInvalidInput, err.Error()))
		return
	}
	favs, err := h.deps.Watchlist.List(q.Category)
	if err != nil {
		respondWithError(c, wrap(ErrInternal, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

func (h *handler) addFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, withMessage(ErrInvalidInput, err.Error()))
		return
	}
	if err := h.deps.Watchlist.Add(req.Ticker, req.Category); err != nil {
		respondWithError(c, err)
		return
	}
	ticker, _ := model.ParseTicker(req.Ticker)
	c.JSON(http.StatusCreated, gin.H{"ticker": ticker})
}

func (h *handler) removeFavorite(c *gin.Context) {
	ticker, ok := bindTicker(c)
	if !ok {
		return
	}
	var q categoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, withMessage(ErrInvalidInput, err.Error()))
		return
	}
	if err := h.deps.Watchlist.Remove(ticker, q.Category); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) categories(c *gin.Context) {
	cats, err := h.deps.Watchlist.Categories()
	if err != nil {
		respondWithError(c, wrap(ErrInternal, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *handler) history(c *gin.Context) {
	ticker, ok := bindTicker(c)
	if !ok {
		return
	}
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, withMessage(ErrInvalidInput, err.Error()))
		return
	}
	snaps, err := h.deps.Watchlist.History(ticker, q.Limit)
	if err != nil {
		respondWithError(c, wrap(ErrInternal, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "snapshots": snaps})
}

func (h *handler) findETFs(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusOK, gin.H{"themes": h.deps.Universe.Themes(), "etfs": []model.ETF{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"themes": h.deps.Universe.Themes(), "etfs": h.deps.Universe.FindETFs(q.Q)})
}

func (h *handler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, withMessage(ErrInvalidInput, err.Error()))
		return
	}
	watched, err := h.deps.Watchlist.Tickers()
	if err != nil {
		respondWithError(c, wrap(ErrInternal, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": h.deps.Universe.SearchTickers(q.Q, watched)})
}
