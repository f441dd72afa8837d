package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/types"
)

// RequestUpload 处理 POST /api/v1/upload.
func (h *Handlers) RequestUpload(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	var req types.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body: %v", err))

		return
	}

	resp, err := h.transfer.RequestUpload(c.Request.Context(), owner, &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ConfirmUpload 处理 POST /api/v1/upload/confirm.
func (h *Handlers) ConfirmUpload(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	var req types.ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body: %v", err))

		return
	}

	resp, err := h.transfer.ConfirmUpload(c.Request.Context(), owner, &req, clientInfo(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmChunk 处理 POST /api/v1/upload/confirm/chunk.
func (h *Handlers) ConfirmChunk(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	var req types.ConfirmChunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body: %v", err))

		return
	}

	resp, err := h.transfer.ConfirmChunk(c.Request.Context(), owner, &req, clientInfo(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}
