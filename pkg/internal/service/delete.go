package service

import (
	"context"
	"time"

	"github.com/hey-granth/silo/pkg/internal/model"
	"github.com/hey-granth/silo/pkg/internal/types"
	nlog "github.com/hey-granth/silo/pkg/log"
)

// DeleteFile 删除拥有者的文件：数据库记录与分享链接在事务内移除，
// 用量回退，追加 DELETE 审计行（历史日志保留）. 对象存储侧的清理
// 尽力而为，失败只记日志，不影响删除结果.
func (s *TransferService) DeleteFile(ctx context.Context, owner, fileID string, client types.ClientInfo) error {
	file, err := s.repo.GetFileByIDOwner(ctx, fileID, owner)
	if err != nil {
		return err
	}

	var chunkKeys []string

	if file.Chunked() {
		chunks, err := s.repo.ListChunks(ctx, file.ID)
		if err != nil {
			return err
		}

		for _, chunk := range chunks {
			chunkKeys = append(chunkKeys, chunk.ObjectKey)
		}
	}

	logEntry := &model.FileAccessLog{
		FileID:    file.ID,
		Actor:     owner,
		Action:    model.ActionDelete,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		Timestamp: time.Now(),
	}

	if err := s.repo.DeleteFileTree(ctx, file, logEntry); err != nil {
		return err
	}

	for _, key := range append(chunkKeys, file.ObjectKey) {
		if err := s.presigner.RemoveObject(ctx, key); err != nil {
			nlog.Logger().Warn().
				Err(err).
				Str("object_key", key).
				Msg("orphaned object left in storage after delete")
		}
	}

	return nil
}
