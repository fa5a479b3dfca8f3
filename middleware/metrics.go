// api/middleware/metrics.go
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"visitcounter/api/metrics"
)

// Metrics counts every served request by route and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
