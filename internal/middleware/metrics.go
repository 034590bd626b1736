package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chainbank-backend/internal/metrics"
)

// Metrics records request counts and latency per route. The route template
// (c.FullPath) is used instead of the raw URL to bound label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
