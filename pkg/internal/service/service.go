// Package service 实现传输编排与分享访问策略的业务逻辑.
//
// 依赖经由构造函数显式注入，服务内部不读取全局状态. 对象存储只通过
// ObjectPresigner 接口使用，字节流始终在客户端与对象存储网关之间直传.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/oklog/ulid"

	"github.com/hey-granth/silo/pkg/configs"
	"github.com/hey-granth/silo/pkg/internal/repo"
)

// ObjectPresigner 预签名URL签发方. 由 MinIO 客户端实现，测试中可替换.
type ObjectPresigner interface {
	PresignPut(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, objectKey string, ttl time.Duration, params url.Values) (string, error)
	RemoveObject(ctx context.Context, objectKey string) error
}

// TransferService 处理上传、确认、下载与删除.
type TransferService struct {
	repo      *repo.Repository
	presigner ObjectPresigner
	transfer  *configs.TransferConfig
}

// NewTransferService 创建传输服务.
func NewTransferService(r *repo.Repository, p ObjectPresigner, transfer *configs.TransferConfig) *TransferService {
	return &TransferService{repo: r, presigner: p, transfer: transfer}
}

// ShareService 处理分享链接的签发与访问裁决.
type ShareService struct {
	repo      *repo.Repository
	presigner ObjectPresigner
	transfer  *configs.TransferConfig
}

// NewShareService 创建分享服务.
func NewShareService(r *repo.Repository, p ObjectPresigner, transfer *configs.TransferConfig) *ShareService {
	return &ShareService{repo: r, presigner: p, transfer: transfer}
}

const shareTokenBytes = 32 // 256 位随机凭证

// newShareToken 生成 URL 安全的 256 位随机分享凭证.
func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// newShareID 生成带前缀的 ULID 作为分享链接主键.
func newShareID(now time.Time) string {
	return "sh_" + ulid.MustNew(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0)).String()
}
