package model

import (
	"time"
)

// Action 审计日志记录的操作类型，封闭枚举.
type Action string

const (
	ActionUpload   Action = "UPLOAD"
	ActionDownload Action = "DOWNLOAD"
	ActionDelete   Action = "DELETE"
	ActionShare    Action = "SHARE"
)

// Valid 判断操作类型是否为已知值.
func (a Action) Valid() bool {
	switch a {
	case ActionUpload, ActionDownload, ActionDelete, ActionShare:
		return true
	}

	return false
}

// FileAccessLog 只追加的审计日志行，每次操作一行，永不更新或删除.
// 文件删除后日志保留，作为独立于文件生命周期的审计痕迹.
type FileAccessLog struct {
	ID     uint   `gorm:"primaryKey"     json:"id"`
	FileID string `gorm:"size:36;index"  json:"file_id"`
	Actor  string `gorm:"size:255;index" json:"actor"`
	Action Action `gorm:"size:16"        json:"action"`
	// IPAddress / UserAgent 可选的客户端网络元数据
	IPAddress string `gorm:"size:64"  json:"ip_address,omitempty"`
	UserAgent string `gorm:"size:255" json:"user_agent,omitempty"`
	// ShareToken SHARE 操作对应的分享凭证
	ShareToken string    `gorm:"size:64" json:"share_token,omitempty"`
	Timestamp  time.Time `gorm:"index"   json:"timestamp"`
}
