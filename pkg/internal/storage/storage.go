// Package storage 统一初始化数据库与对象存储客户端.
package storage

import (
	"context"
	"fmt"

	"github.com/hey-granth/silo/pkg/configs"
	"github.com/hey-granth/silo/pkg/internal/storage/db"
	"github.com/hey-granth/silo/pkg/internal/storage/s3"
)

// Manager 聚合所有存储后端客户端.
type Manager struct {
	DB *db.Client
	S3 *s3.Client
}

// Init 按配置初始化所有存储后端. 任一后端失败则整体失败.
func Init(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	dbClient, err := db.New(ctx, &cfg.DB, cfg.Metrics.Enabled)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	s3Client, err := s3.New(ctx, &cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	return &Manager{DB: dbClient, S3: s3Client}, nil
}
