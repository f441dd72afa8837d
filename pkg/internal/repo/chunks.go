package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
)

// GetChunk 按 (fileID, index) 查询分块. 不存在返回 NotFound.
func (r *Repository) GetChunk(ctx context.Context, fileID string, index int) (*model.FileChunk, error) {
	var chunk model.FileChunk

	err := r.db.WithContext(ctx).
		Where("file_id = ? AND chunk_index = ?", fileID, index).
		First(&chunk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("chunk not found")
		}

		return nil, fmt.Errorf("get chunk %s/%d: %w", fileID, index, err)
	}

	return &chunk, nil
}

// ListChunks 按分块序号升序返回文件的全部分块.
func (r *Repository) ListChunks(ctx context.Context, fileID string) ([]model.FileChunk, error) {
	var chunks []model.FileChunk

	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("list chunks %s: %w", fileID, err)
	}

	return chunks, nil
}

// MarkChunkUploaded 把单个分块标记为已上传. 条件更新保证重复确认幂等：
// 首次标记返回 true，其后返回 false. 标记在独立事务中提交，后续的
// 完成检查总能看到所有已提交的标记.
func (r *Repository) MarkChunkUploaded(ctx context.Context, fileID string, index int, size int64, checksum string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.FileChunk{}).
		Where("file_id = ? AND chunk_index = ? AND uploaded = ?", fileID, index, false).
		Updates(map[string]any{
			"uploaded": true,
			"size":     size,
			"checksum": checksum,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark chunk %s/%d: %w", fileID, index, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// CountPendingChunks 统计文件尚未上传完成的分块数.
func (r *Repository) CountPendingChunks(ctx context.Context, fileID string) (int64, error) {
	var pending int64

	err := r.db.WithContext(ctx).Model(&model.FileChunk{}).
		Where("file_id = ? AND uploaded = ?", fileID, false).
		Count(&pending).Error
	if err != nil {
		return 0, fmt.Errorf("count pending chunks %s: %w", fileID, err)
	}

	return pending, nil
}
