package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver is the slice of the metrics registry this middleware needs.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, d time.Duration)
}

// Metrics records request counts and latencies. The route template (not the
// raw URL) is used as the path label to keep cardinality bounded.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		observer.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
