package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
	"MarketOverview/internal/watchlist"
)

// APIError is an error with a stable code and HTTP status.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Internal }

var (
	ErrInvalidInput  = &APIError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInvalidTicker = &APIError{Code: "INVALID_TICKER", Message: "Invalid ticker", StatusCode: http.StatusBadRequest}
	ErrNotFound      = &APIError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternal      = &APIError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// withMessage copies sentinel with a custom message.
func withMessage(sentinel *APIError, message string) *APIError {
	return &APIError{Code: sentinel.Code, Message: message, StatusCode: sentinel.StatusCode}
}

// wrap copies sentinel and records the underlying error for logging.
func wrap(sentinel *APIError, internal error) *APIError {
	return &APIError{Code: sentinel.Code, Message: sentinel.Message, StatusCode: sentinel.StatusCode, Internal: internal}
}

// translate maps domain errors onto API errors.
func translate(err error) error {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, model.ErrInvalidTicker):
		return withMessage(ErrInvalidTicker, err.Error())
	case errors.Is(err, watchlist.ErrNotFound):
		return withMessage(ErrNotFound, err.Error())
	}
	return err
}

// respondWithError writes {"error":{"code","message"}}. Unknown errors are
// logged and reported as a generic internal error.
func respondWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(translate(err), &apiErr) {
		if apiErr.Internal != nil {
			logger.Get().Errorw("api error",
				"code", apiErr.Code,
				"internal", apiErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(apiErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    apiErr.Code,
				"message": apiErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(ErrInternal.StatusCode, gin.H{
		"error": gin.H{
			"code":    ErrInternal.Code,
			"message": ErrInternal.Message,
		},
	})
}
