package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/webnyman/three-legged-Oauth/internal/observability"
)

// Metrics records request duration and count for Prometheus. Paths are
// labelled by route template so parameterized routes do not explode the
// label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		observability.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)

		observability.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()
	}
}
