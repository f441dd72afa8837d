// Package router 注册 HTTP 路由.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/internal/handle"
)

// Register 把全部路由挂载到 /api/v1 下. 除分享访问与健康检查外，
// 其余端点要求已认证的 principal.
func Register(engine *gin.Engine, h *handle.Handlers) {
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/health", h.Health)

		v1.POST("/upload", h.RequestUpload)
		v1.POST("/upload/confirm", h.ConfirmUpload)
		v1.POST("/upload/confirm/chunk", h.ConfirmChunk)

		v1.POST("/download", h.RequestDownload)

		v1.GET("/files/:fileId", h.GetFile)
		v1.DELETE("/files/:fileId", h.DeleteFile)
		v1.GET("/files/:fileId/logs", h.ListFileLogs)

		v1.GET("/account", h.GetAccount)

		v1.GET("/share", h.ListLinks)
		v1.POST("/share/create", h.CreateLink)
		v1.DELETE("/share/:linkId", h.RevokeLink)
		// 公开入口：token 即凭证
		v1.POST("/share/access/:token", h.AccessLink)
	}
}
