package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"servicehub-be/internal/logger"
	"servicehub-be/internal/metrics"
)

// RequestLogger tags every request with an ID and logs it in structured JSON.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := metrics.StartTimer()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		metrics.RequestsServed.Inc()

		logger.FromCtx(ctx).Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("duration", timer.Duration().String()),
			zap.String("remote_ip", c.ClientIP()),
		)
	}
}
