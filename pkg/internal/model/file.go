package model

import (
	"time"
)

// File 文件模型. 一条记录对应一个逻辑上传对象；Uploaded 在创建时为 false，
// 仅由确认流程置为 true，ObjectKey 创建后不可变.
type File struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Owner string `gorm:"size:255;index"     json:"owner"`
	// ObjectKey 对象存储键（S3 key），全局唯一
	ObjectKey   string `gorm:"size:512;uniqueIndex" json:"object_key"`
	FileName    string `gorm:"size:255"             json:"file_name"`
	Size        int64  `json:"size"`
	ContentType string `gorm:"size:100" json:"content_type"`
	// Checksum 客户端声明的 SHA-256 校验和，用于传输完整性锚点与去重
	Checksum string `gorm:"size:64;index" json:"checksum"`
	Uploaded bool   `gorm:"index"         json:"uploaded"`
	// ChunkCount 分块数，0 表示单次直传
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Chunked 判断文件是否走分块上传路径.
func (f *File) Chunked() bool {
	return f.ChunkCount > 0
}

// FileChunk 大文件的单个分块. (FileID, Index) 唯一；
// 全部分块 Uploaded 后文件才可被置为完成.
type FileChunk struct {
	ID     uint   `gorm:"primaryKey"                                  json:"id"`
	FileID string `gorm:"size:36;index;uniqueIndex:idx_file_chunk"    json:"file_id"`
	Index  int    `gorm:"column:chunk_index;uniqueIndex:idx_file_chunk" json:"chunk_index"`
	Size   int64  `json:"size"`
	// Checksum 分块的 SHA-256 校验和，分块确认时由客户端上报
	Checksum  string    `gorm:"size:64"  json:"checksum"`
	ObjectKey string    `gorm:"size:512" json:"object_key"`
	Uploaded  bool      `json:"uploaded"`
	CreatedAt time.Time `json:"created_at"`
}
