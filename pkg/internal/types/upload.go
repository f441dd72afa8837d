// Package types 定义 HTTP 层与服务层之间的请求/响应结构.
package types

// ChunkPlan 请求分块上传时的切分计划.
type ChunkPlan struct {
	// Count 分块数量
	Count int `json:"count" rule:"required,min=1"`
	// ChunkSize 除末块外每块的字节数
	ChunkSize int64 `json:"chunk_size" rule:"required,min=1"`
}

// UploadRequest 上传请求.
type UploadRequest struct {
	FileName string `json:"file_name" rule:"required,max=255"`
	// Size 文件总字节数
	Size int64 `json:"size" rule:"required,min=1"`
	// Checksum 整个文件的 SHA-256 校验和（64 位十六进制）
	Checksum    string `json:"checksum"     rule:"required,checksum"`
	ContentType string `json:"content_type" rule:"required"`
	// Chunks 为空表示单次直传
	Chunks *ChunkPlan `json:"chunks,omitempty"`
}

// ChunkUploadItem 单个分块的上传地址.
type ChunkUploadItem struct {
	Index     int    `json:"index"`
	ObjectKey string `json:"object_key"`
	UploadURL string `json:"upload_url"`
}

// UploadResponse 上传请求响应. 单次直传填充 UploadURL，
// 分块上传填充 ChunkURLs.
type UploadResponse struct {
	FileID    string            `json:"file_id"`
	ObjectKey string            `json:"object_key"`
	UploadURL string            `json:"upload_url,omitempty"`
	ChunkURLs []ChunkUploadItem `json:"chunk_urls,omitempty"`
	// ExpiresInSeconds 上传 URL 的有效期
	ExpiresInSeconds int `json:"expires_in_seconds"`
}

// ConfirmUploadRequest 上传完成确认请求.
type ConfirmUploadRequest struct {
	FileID string `json:"file_id" rule:"required,uuid4"`
}

// ConfirmUploadResponse 上传确认响应. 完成时附带最终的文件视图.
type ConfirmUploadResponse struct {
	FileID   string `json:"file_id"`
	Uploaded bool   `json:"uploaded"`
	// PendingChunks 分块上传下尚未确认的分块数，0 表示全部就绪
	PendingChunks int64     `json:"pending_chunks"`
	File          *FileView `json:"file,omitempty"`
}

// ConfirmChunkRequest 分块上传完成确认请求.
type ConfirmChunkRequest struct {
	FileID string `json:"file_id" rule:"required,uuid4"`
	Index  int    `json:"index"  rule:"min=0"`
	// Size 实际上传的分块字节数
	Size int64 `json:"size" rule:"required,min=1"`
	// Checksum 分块的 SHA-256 校验和
	Checksum string `json:"checksum" rule:"required,checksum"`
}
