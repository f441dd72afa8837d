package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
)

// CreateLink 持久化分享链接. token 撞上唯一索引时返回 Conflict，
// 由调用方换新 token 重试.
func (r *Repository) CreateLink(ctx context.Context, link *model.SharedFileLink) error {
	err := r.db.WithContext(ctx).Create(link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("share token collision")
		}

		return fmt.Errorf("create share link: %w", err)
	}

	return nil
}

// GetLinkByToken 按 token 查询分享链接. 不存在返回 NotFound.
func (r *Repository) GetLinkByToken(ctx context.Context, token string) (*model.SharedFileLink, error) {
	var link model.SharedFileLink

	err := r.db.WithContext(ctx).Where("token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("share link not found")
		}

		return nil, fmt.Errorf("get share link: %w", err)
	}

	return &link, nil
}

// ListLinksByOwner 返回某拥有者创建的全部分享链接，按创建时间倒序.
func (r *Repository) ListLinksByOwner(ctx context.Context, owner string) ([]model.SharedFileLink, error) {
	var links []model.SharedFileLink

	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}

	return links, nil
}

// ClaimLinkDownload 原子占用一次下载名额. 单条条件 UPDATE 在数据库侧
// 同时完成配额检查与计数自增，并发访问最后一个名额时恰有一个请求成功.
// 返回 false 表示配额已满（或链接已被删除）.
func (r *Repository) ClaimLinkDownload(ctx context.Context, linkID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.SharedFileLink{}).
		Where("id = ? AND (max_downloads IS NULL OR download_count < max_downloads)", linkID).
		Update("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("claim link download %s: %w", linkID, res.Error)
	}

	return res.RowsAffected > 0, nil
}

// DeleteLink 删除拥有者名下的分享链接. 不存在或归属他人时返回 NotFound.
func (r *Repository) DeleteLink(ctx context.Context, linkID, owner string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner = ?", linkID, owner).
		Delete(&model.SharedFileLink{})
	if res.Error != nil {
		return fmt.Errorf("delete share link %s: %w", linkID, res.Error)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound("share link not found")
	}

	return nil
}
