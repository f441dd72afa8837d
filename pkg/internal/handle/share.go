package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/types"
)

// CreateLink 处理 POST /api/v1/share/create.
func (h *Handlers) CreateLink(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	var req types.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Validation("invalid request body: %v", err))

		return
	}

	resp, err := h.share.CreateLink(c.Request.Context(), owner, &req)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusCreated, resp)
}

// AccessLink 处理 POST /api/v1/share/access/:token. 无需认证，
// token 本身即为访问凭证. 请求体可选，仅在链接设有密码时需要.
func (h *Handlers) AccessLink(c *gin.Context) {
	var req types.AccessLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Validation("invalid request body: %v", err))

			return
		}
	}

	resp, err := h.share.AccessLink(c.Request.Context(), c.Param("token"), &req, clientInfo(c))
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListLinks 处理 GET /api/v1/share.
func (h *Handlers) ListLinks(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	links, err := h.share.ListLinks(c.Request.Context(), owner)
	if err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// RevokeLink 处理 DELETE /api/v1/share/:linkId.
func (h *Handlers) RevokeLink(c *gin.Context) {
	owner, ok := principal(c)
	if !ok {
		return
	}

	if err := h.share.RevokeLink(c.Request.Context(), owner, c.Param("linkId")); err != nil {
		fail(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"revoked": true})
}
