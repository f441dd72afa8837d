package model

import (
	"time"
)

// Permission 分享链接授予的权限级别，封闭枚举.
type Permission string

const (
	// PermissionView 只读查看：签发短有效期、内联展示的访问URL.
	PermissionView Permission = "VIEW"
	// PermissionDownload 下载：签发完整有效期的下载URL.
	PermissionDownload Permission = "DOWNLOAD"
)

// Valid 判断权限级别是否为已知值.
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionDownload:
		return true
	}

	return false
}

// SharedFileLink 分享链接模型：凭 token 即可在授权范围内访问一个文件.
// token 全局唯一且不可猜测；DownloadCount 的增长必须经由条件更新，
// 设置了 MaxDownloads 时不得超过其值.
type SharedFileLink struct {
	ID     string `gorm:"primaryKey;size:64" json:"id"`
	Owner  string `gorm:"size:255;index"     json:"owner"`
	FileID string `gorm:"size:36;index"      json:"file_id"`
	// Token 分享凭证，URL 安全编码的 256 位随机串
	Token     string    `gorm:"size:64;uniqueIndex" json:"token"`
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt 过期时间，空表示永不过期
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	// MaxDownloads 最大成功访问次数，空表示不限
	MaxDownloads  *int       `json:"max_downloads,omitempty"`
	DownloadCount int        `json:"download_count"`
	Permission    Permission `gorm:"size:16" json:"permission"`
	// PasswordHash 访问密码的 bcrypt 哈希，空表示无密码门
	PasswordHash string `gorm:"size:128" json:"-"`
}

// Expired 判断链接在 now 时刻是否已过期.
func (l *SharedFileLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// QuotaExhausted 判断链接的下载配额是否已耗尽.
func (l *SharedFileLink) QuotaExhausted() bool {
	return l.MaxDownloads != nil && l.DownloadCount >= *l.MaxDownloads
}
