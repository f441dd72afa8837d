package configs

import (
	"slices"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPresignPutTTL = 3600 // 预签名上传URL有效期（秒）
	DefaultPresignGetTTL = 3600 // 预签名下载URL有效期（秒）
	DefaultViewTTL       = 600  // VIEW 权限分享链接的短有效期（秒）
	DefaultMaxChunks     = 10000
)

// defaultAllowedContentTypes 默认允许上传的内容类型.
var defaultAllowedContentTypes = []string{
	"application/octet-stream",
	"application/pdf",
	"application/zip",
	"application/json",
	"text/plain",
	"text/csv",
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"audio/mpeg",
	"video/mp4",
}

// TransferConfig 上传/下载传输策略配置.
type TransferConfig struct {
	// PresignPutTTLSeconds 上传预签名URL有效期（秒）
	PresignPutTTLSeconds int `mapstructure:"presign_put_ttl_seconds" rule:"min=1"`
	// PresignGetTTLSeconds 下载预签名URL有效期（秒）
	PresignGetTTLSeconds int `mapstructure:"presign_get_ttl_seconds" rule:"min=1"`
	// ViewTTLSeconds VIEW 权限分享访问的URL有效期（秒），应短于下载有效期
	ViewTTLSeconds int `mapstructure:"view_ttl_seconds" rule:"min=1"`
	// AllowedContentTypes 允许上传的内容类型白名单
	AllowedContentTypes []string `mapstructure:"allowed_content_types"`
	// MaxChunks 单个文件允许的最大分块数
	MaxChunks int `mapstructure:"max_chunks" rule:"min=1"`
}

// PutTTL 返回上传预签名有效期.
func (c *TransferConfig) PutTTL() time.Duration {
	return time.Duration(c.PresignPutTTLSeconds) * time.Second
}

// GetTTL 返回下载预签名有效期.
func (c *TransferConfig) GetTTL() time.Duration {
	return time.Duration(c.PresignGetTTLSeconds) * time.Second
}

// ViewTTL 返回 VIEW 权限访问的短有效期.
func (c *TransferConfig) ViewTTL() time.Duration {
	return time.Duration(c.ViewTTLSeconds) * time.Second
}

// ContentTypeAllowed 判断内容类型是否在白名单内.
func (c *TransferConfig) ContentTypeAllowed(contentType string) bool {
	return slices.Contains(c.AllowedContentTypes, contentType)
}

// setDefaults 设置传输策略配置的默认值.
func (c *TransferConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("transfer.presign_put_ttl_seconds", DefaultPresignPutTTL)
	v.SetDefault("transfer.presign_get_ttl_seconds", DefaultPresignGetTTL)
	v.SetDefault("transfer.view_ttl_seconds", DefaultViewTTL)
	v.SetDefault("transfer.allowed_content_types", defaultAllowedContentTypes)
	v.SetDefault("transfer.max_chunks", DefaultMaxChunks)
}
