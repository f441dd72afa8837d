// Package repo 提供模型的持久化操作. 所有计数器更新走条件 UPDATE 或
// 原子表达式，不做任何读改写.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hey-granth/silo/pkg/internal/model"
)

// Repository 封装数据库访问.
type Repository struct {
	db *gorm.DB
}

// New 创建仓库实例.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate 执行全部模型的自动迁移.
func (r *Repository) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&model.File{},
		&model.FileChunk{},
		&model.SharedFileLink{},
		&model.FileAccessLog{},
		&model.Account{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
