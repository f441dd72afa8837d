package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
)

// CreateFile 持久化新文件记录，分块上传时同时写入全部分块占位行.
func (r *Repository) CreateFile(ctx context.Context, file *model.File, chunks []model.FileChunk) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return err
		}

		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("object key already in use")
		}

		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetFileByID 按 ID 查询文件. 不存在返回 NotFound.
func (r *Repository) GetFileByID(ctx context.Context, fileID string) (*model.File, error) {
	var file model.File

	err := r.db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("file not found")
		}

		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}

	return &file, nil
}

// GetFileByIDOwner 按 (ID, Owner) 查询文件. 文件存在但归属他人时同样返回
// NotFound，避免向非拥有者泄露存在性.
func (r *Repository) GetFileByIDOwner(ctx context.Context, fileID, owner string) (*model.File, error) {
	var file model.File

	err := r.db.WithContext(ctx).
		Where("id = ? AND owner = ?", fileID, owner).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("file not found")
		}

		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}

	return &file, nil
}

// FinalizeUpload 把文件从待完成态翻转为完成态，并在同一事务内完成用量
// 记账与 UPLOAD 审计. 条件翻转保证并发确认下记账恰好发生一次：
// 只有 RowsAffected==1 的调用方取得记账权，其余调用方幂等返回.
func (r *Repository) FinalizeUpload(ctx context.Context, fileID, owner string, size int64, logEntry *model.FileAccessLog) (bool, error) {
	claimed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.File{}).
			Where("id = ? AND uploaded = ?", fileID, false).
			Update("uploaded", true)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// 已由先前的确认完成，保持幂等
			return nil
		}

		claimed = true

		if err := addStorageUsed(tx, owner, size); err != nil {
			return err
		}

		return tx.Create(logEntry).Error
	})
	if err != nil {
		return false, fmt.Errorf("finalize upload %s: %w", fileID, err)
	}

	return claimed, nil
}

// DeleteFileTree 删除文件与其分块记录，回退用量并追加 DELETE 审计行.
// 历史审计日志原样保留.
func (r *Repository) DeleteFileTree(ctx context.Context, file *model.File, logEntry *model.FileAccessLog) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", file.ID).Delete(&model.File{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return apperr.NotFound("file not found")
		}

		if err := tx.Where("file_id = ?", file.ID).Delete(&model.FileChunk{}).Error; err != nil {
			return err
		}

		if err := tx.Where("file_id = ?", file.ID).Delete(&model.SharedFileLink{}).Error; err != nil {
			return err
		}

		// 未完成的文件从未记账，无需回退
		if file.Uploaded {
			if err := addStorageUsed(tx, file.Owner, -file.Size); err != nil {
				return err
			}
		}

		return tx.Create(logEntry).Error
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return err
		}

		return fmt.Errorf("delete file %s: %w", file.ID, err)
	}

	return nil
}

// GetAccount 查询用量台账. 不存在的主体返回零用量.
func (r *Repository) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	var account model.Account

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.Account{UserID: userID}, nil
		}

		return nil, fmt.Errorf("get account %s: %w", userID, err)
	}

	return &account, nil
}

// addStorageUsed 对台账做原子增量. 台账行不存在时先创建再重试，
// 覆盖两个请求同时初始化同一主体的竞争.
func addStorageUsed(tx *gorm.DB, userID string, delta int64) error {
	res := tx.Model(&model.Account{}).
		Where("user_id = ?", userID).
		Update("storage_used", gorm.Expr("storage_used + ?", delta))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		return nil
	}

	account := model.Account{UserID: userID, StorageUsed: delta, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := tx.Create(&account).Error; err == nil {
		return nil
	}

	// 并发初始化冲突，回落到增量更新
	res = tx.Model(&model.Account{}).
		Where("user_id = ?", userID).
		Update("storage_used", gorm.Expr("storage_used + ?", delta))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return errors.New("storage accounting row vanished")
	}

	return nil
}
