package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/service"
)

// Metrics records request rate and latency per route template.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath is empty for unmatched routes, fall back to the raw path.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
