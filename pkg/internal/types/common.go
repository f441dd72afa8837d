package types

import (
	"time"

	"github.com/hey-granth/silo/pkg/internal/model"
)

// ClientInfo 请求方的网络元数据，随审计日志落盘.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// FileView 文件详情视图.
type FileView struct {
	FileID      string    `json:"file_id"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Checksum    string    `json:"checksum"`
	Uploaded    bool      `json:"uploaded"`
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFileView 从模型构建文件视图.
func NewFileView(f *model.File) FileView {
	return FileView{
		FileID:      f.ID,
		FileName:    f.FileName,
		Size:        f.Size,
		ContentType: f.ContentType,
		Checksum:    f.Checksum,
		Uploaded:    f.Uploaded,
		ChunkCount:  f.ChunkCount,
		CreatedAt:   f.CreatedAt,
	}
}

// AccountView 用量台账视图.
type AccountView struct {
	UserID      string `json:"user_id"`
	StorageUsed int64  `json:"storage_used"`
}

// AccessLogView 审计日志行视图.
type AccessLogView struct {
	Actor      string       `json:"actor"`
	Action     model.Action `json:"action"`
	IPAddress  string       `json:"ip_address,omitempty"`
	UserAgent  string       `json:"user_agent,omitempty"`
	ShareToken string       `json:"share_token,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}
