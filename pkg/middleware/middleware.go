// Package middleware 提供 gin 中间件：认证、CORS、请求日志、指标与追踪.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/metrics"
)

// PrometheusMiddleware 创建Gin的Prometheus中间件.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		method := c.Request.Method

		c.Next()

		if path == "" {
			path = "unmatched"
		}

		duration := time.Since(start).Seconds()

		metrics.RequestCounter.WithLabelValues(method, path).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
