package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetFile 处理 GET /api/v1/files/:fileId.
func (h *Handlers) GetFile(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	view, err := h.transfer.GetFile(c.Request.Context(), owner, c.Param("fileId"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, view)
}

// DeleteFile 处理 DELETE /api/v1/files/:fileId.
func (h *Handlers) DeleteFile(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	err := h.transfer.DeleteFile(c.Request.Context(), owner, c.Param("fileId"), clientInfo(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListFileLogs 处理 GET /api/v1/files/:fileId/logs.
func (h *Handlers) ListFileLogs(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	logs, err := h.transfer.ListFileLogs(c.Request.Context(), owner, c.Param("fileId"))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// GetAccount 处理 GET /api/v1/account.
func (h *Handlers) GetAccount(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	account, err := h.transfer.GetAccount(c.Request.Context(), owner)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, account)
}
