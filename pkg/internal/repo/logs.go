package repo

import (
	"context"
	"fmt"

	"github.com/hey-granth/silo/pkg/internal/model"
)

// AppendAccessLog 追加一条审计日志行. 日志只增不改.
func (r *Repository) AppendAccessLog(ctx context.Context, entry *model.FileAccessLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append access log: %w", err)
	}

	return nil
}

// ListFileLogs 按时间升序返回某文件的全部审计日志.
func (r *Repository) ListFileLogs(ctx context.Context, fileID string) ([]model.FileAccessLog, error) {
	var logs []model.FileAccessLog

	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("timestamp ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list file logs %s: %w", fileID, err)
	}

	return logs, nil
}
