// Package handle 实现 HTTP 处理器，负责绑定请求、提取调用方身份与
// 网络元数据，并把服务层错误映射为 HTTP 状态码.
package handle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/service"
	"github.com/hey-granth/silo/pkg/internal/types"
	nlog "github.com/hey-granth/silo/pkg/log"
	"github.com/hey-granth/silo/pkg/middleware"
)

// Handlers 聚合全部 HTTP 处理器.
type Handlers struct {
	transfer *service.TransferService
	share    *service.ShareService
	health   HealthChecker
}

// HealthChecker 就绪探针依赖的后端健康检查.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// New 创建处理器集合.
func New(transfer *service.TransferService, share *service.ShareService, health HealthChecker) *Handlers {
	return &Handlers{transfer: transfer, share: share, health: health}
}

// clientInfo 提取请求方的网络元数据.
func clientInfo(c *gin.Context) types.ClientInfo {
	return types.ClientInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// principal 返回已认证的调用方身份，未认证时写出 401 并返回 false.
func principal(c *gin.Context) (string, bool) {
	p := middleware.Principal(c)
	if p == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})

		return "", false
	}

	return p, true
}

// fail 把服务层错误映射为 HTTP 响应. 非业务错误统一 500 并落日志.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		nlog.Logger().Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")

		c.JSON(status, gin.H{"error": "internal error"})

		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
