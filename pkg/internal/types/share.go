package types

import (
	"time"

	"github.com/hey-granth/silo/pkg/internal/model"
)

// CreateLinkRequest 创建分享链接请求.
type CreateLinkRequest struct {
	FileID string `json:"file_id" rule:"required,uuid4"`
	// ExpiresAt 过期时间，省略表示永不过期
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	// MaxDownloads 最大成功访问次数，省略表示不限
	MaxDownloads *int             `json:"max_downloads,omitempty" rule:"omitempty,min=1"`
	Permission   model.Permission `json:"permission"              rule:"required,oneof=VIEW DOWNLOAD"`
	// Password 访问密码，省略表示无密码门
	Password string `json:"password,omitempty" rule:"omitempty,min=4,max=128"`
}

// CreateLinkResponse 创建分享链接响应.
type CreateLinkResponse struct {
	LinkID string `json:"link_id"`
	Token  string `json:"token"`
	// AccessPath 拼好的访问路径，客户端加上主机名即可分发
	AccessPath string           `json:"access_path"`
	Permission model.Permission `json:"permission"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
}

// AccessLinkRequest 凭 token 访问分享的请求体（密码可选）.
type AccessLinkRequest struct {
	Password string `json:"password,omitempty"`
}

// AccessLinkResponse 分享访问响应.
type AccessLinkResponse struct {
	FileName         string           `json:"file_name"`
	ContentType      string           `json:"content_type"`
	Size             int64            `json:"size"`
	Permission       model.Permission `json:"permission"`
	URL              string           `json:"url"`
	ExpiresInSeconds int              `json:"expires_in_seconds"`
}

// LinkView 拥有者视角的分享链接摘要.
type LinkView struct {
	LinkID        string           `json:"link_id"`
	FileID        string           `json:"file_id"`
	Token         string           `json:"token"`
	Permission    model.Permission `json:"permission"`
	CreatedAt     time.Time        `json:"created_at"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	MaxDownloads  *int             `json:"max_downloads,omitempty"`
	DownloadCount int              `json:"download_count"`
	PasswordSet   bool             `json:"password_set"`
}
