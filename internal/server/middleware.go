package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"MarketOverview/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging tags each request with an X-Request-ID and logs method,
// path, status and latency.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.Get().Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// Recovery turns a handler panic into a 500 error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Get().Errorw("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(ErrInternal.StatusCode, gin.H{
			"error": gin.H{
				"code":    ErrInternal.Code,
				"message": ErrInternal.Message,
			},
		})
	})
}
