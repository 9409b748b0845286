package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetricsRecorder receives one observation per completed request.
type HTTPMetricsRecorder interface {
	RecordHTTPRequest(method, route, status string, seconds float64)
}

// MetricsMiddleware records request counts and latency. The route label uses
// the gin template path, not the raw URL, so path parameters do not explode
// label cardinality.
func MetricsMiddleware(recorder HTTPMetricsRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
