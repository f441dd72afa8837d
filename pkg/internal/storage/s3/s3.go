// Package s3 封装 MinIO 客户端，负责桶管理与预签名 URL 生成.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sony/gobreaker"

	"github.com/hey-granth/silo/pkg/configs"
	"github.com/hey-granth/silo/pkg/internal/apperr"
	nlog "github.com/hey-granth/silo/pkg/log"
)

// Client 包装 MinIO 客户端与熔断器.
type Client struct {
	mc      *minio.Client
	bucket  string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

const breakerMinRequests = 5

// New 创建 MinIO 客户端并确保目标桶存在.
func New(ctx context.Context, cfg *configs.S3Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	client := &Client{
		mc:      mc,
		bucket:  cfg.Bucket,
		timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "s3-gateway",
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < breakerMinRequests {
					return false
				}

				failureRate := float64(counts.TotalFailures) / float64(counts.Requests)

				return failureRate >= 0.6
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				nlog.Logger().Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		}),
	}

	if err := client.ensureBucket(ctx); err != nil {
		return nil, err
	}

	nlog.Logger().Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Msg("object storage connected")

	return client, nil
}

// ensureBucket 检查桶是否存在，不存在则创建.
func (c *Client) ensureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return classify(fmt.Errorf("check bucket %s: %w", c.bucket, err))
	}

	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return classify(fmt.Errorf("create bucket %s: %w", c.bucket, err))
		}
	}

	return nil
}

// PresignPut 为对象生成限时上传 URL.
func (c *Client) PresignPut(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		return c.mc.PresignedPutObject(ctx, c.bucket, objectKey, ttl)
	})
	if err != nil {
		return "", classify(fmt.Errorf("presign put %s: %w", objectKey, err))
	}

	u, ok := result.(*url.URL)
	if !ok {
		return "", apperr.Upstream(nil, false, "unexpected presign result type")
	}

	return u.String(), nil
}

// PresignGet 为对象生成限时下载 URL，params 可携带响应头覆盖（如 content-disposition）.
func (c *Client) PresignGet(ctx context.Context, objectKey string, ttl time.Duration, params url.Values) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		return c.mc.PresignedGetObject(ctx, c.bucket, objectKey, ttl, params)
	})
	if err != nil {
		return "", classify(fmt.Errorf("presign get %s: %w", objectKey, err))
	}

	u, ok := result.(*url.URL)
	if !ok {
		return "", apperr.Upstream(nil, false, "unexpected presign result type")
	}

	return u.String(), nil
}

// RemoveObject 删除对象. 对象不存在时视为成功.
func (c *Client) RemoveObject(ctx context.Context, objectKey string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		return nil, c.mc.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{})
	})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil
		}

		return classify(fmt.Errorf("remove object %s: %w", objectKey, err))
	}

	return nil
}

// StatObject 查询对象元数据，用于校验上传完成后对象确实存在.
func (c *Client) StatObject(ctx context.Context, objectKey string) (minio.ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	info, err := c.mc.StatObject(ctx, c.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		return minio.ObjectInfo{}, classify(fmt.Errorf("stat object %s: %w", objectKey, err))
	}

	return info, nil
}

// HealthCheck 验证网关可达性.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.mc.BucketExists(ctx, c.bucket); err != nil {
		return classify(fmt.Errorf("object storage health check: %w", err))
	}

	return nil
}

// classify 把 MinIO 错误归类为可重试或终态的上游错误. 熔断器拒绝视为可重试.
func classify(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperr.Upstream(err, true, "object storage gateway unavailable")
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return apperr.Upstream(err, false, "object storage rejected request")
	}

	return apperr.Upstream(err, true, "object storage gateway error")
}
