package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/ta-proctoring-api/internal/service"
)

// Metrics records per-route request counts and latencies. Unmatched routes
// fall back to the raw URL path so 404s still surface in the counters.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
