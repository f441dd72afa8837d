package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/configs"
)

// Health 处理 GET /api/v1/health，探测对象存储网关可达性.
func (h *Handlers) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if err := h.health.HealthCheck(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"version": configs.AppVersion,
	})
}
