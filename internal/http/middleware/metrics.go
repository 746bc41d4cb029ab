package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lexgraph-backend/internal/observability"
)

// Metrics records API counts and latency by route template. Scrapes of
// /metrics are not counted; requests that matched no route share one label.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.FullPath() == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
