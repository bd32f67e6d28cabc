package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLoggerMiddleware stores a request-scoped logger under LoggerKey and logs
// each request once it completes.
func RequestLoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		logger := base.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", clientIP(c)),
		)
		if deviceID := c.GetHeader("X-Device-ID"); deviceID != "" {
			logger = logger.With(zap.String("deviceID", deviceID))
		}
		c.Set(LoggerKey, logger)

		c.Next()

		logger.Info("Request handled",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
