package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// logs one line per request with method, path, status and latency
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		switch {
		case status >= 500:
			Error("request failed", args...)
		case status >= 400:
			Warn("request rejected", args...)
		default:
			Info("request handled", args...)
		}
	}
}
