package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/types"
)

// RequestDownload 处理 POST /api/v1/download.
func (h *Handlers) RequestDownload(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	var req types.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body: %v", err))

		return
	}

	resp, err := h.transfer.RequestDownload(c.Request.Context(), owner, &req, clientInfo(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
