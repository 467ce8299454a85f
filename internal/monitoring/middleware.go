package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
)

// MonitoringMiddleware creates Gin middleware for request monitoring
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ip := c.ClientIP()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		metrics.RecordRequest(method, path, statusCode, duration)
		logger.RequestLogger(method, path, ip, statusCode, duration)

		if duration > 5*time.Second {
			logger.Warn("slow request",
				"method", method,
				"path", path,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}
}
