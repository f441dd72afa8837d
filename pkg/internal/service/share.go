package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
	"github.com/hey-granth/silo/pkg/internal/types"
	"github.com/hey-granth/silo/pkg/metrics"
	"github.com/hey-granth/silo/pkg/rule"
)

// tokenRetries token 撞库时的重新生成次数上限. 256 位随机下碰撞
// 几乎不可能发生，重试只为覆盖理论情形.
const tokenRetries = 3

// CreateLink 为拥有者的已完成文件签发分享链接. token 为 256 位随机串，
// 密码以 bcrypt 哈希落库，明文不出函数.
func (s *ShareService) CreateLink(ctx context.Context, owner string, req *types.CreateLinkRequest) (*types.CreateLinkResponse, error) {
	if err := rule.ValidateStruct(req); err != nil {
		return nil, apperr.Validation("invalid share request: %v", err)
	}

	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, apperr.Validation("expiry must be in the future")
	}

	file, err := s.repo.GetFileByIDOwner(ctx, req.FileID, owner)
	if err != nil {
		return nil, err
	}

	if !file.Uploaded {
		return nil, apperr.Conflict("file %s is not ready for sharing", file.ID)
	}

	var passwordHash string

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Validation("hash password: %v", err)
		}

		passwordHash = string(hash)
	}

	now := time.Now()

	var link *model.SharedFileLink

	for attempt := 0; attempt < tokenRetries; attempt++ {
		token, err := newShareToken()
		if err != nil {
			return nil, err
		}

		link = &model.SharedFileLink{
			ID:           newShareID(now),
			Owner:        owner,
			FileID:       file.ID,
			Token:        token,
			CreatedAt:    now,
			ExpiresAt:    req.ExpiresAt,
			MaxDownloads: req.MaxDownloads,
			Permission:   req.Permission,
			PasswordHash: passwordHash,
		}

		err = s.repo.CreateLink(ctx, link)
		if err == nil {
			break
		}

		if apperr.KindOf(err) != apperr.KindConflict || attempt == tokenRetries-1 {
			return nil, err
		}
	}

	return &types.CreateLinkResponse{
		LinkID:     link.ID,
		Token:      link.Token,
		AccessPath: "/api/v1/share/access/" + link.Token,
		Permission: link.Permission,
		ExpiresAt:  link.ExpiresAt,
	}, nil
}

// AccessLink 裁决一次凭 token 的分享访问. 检查按固定顺序进行：
// 存在性、过期、配额预检、密码门、原子占额. 只有全部通过才签发URL
// 并把 SHARE 审计行记在链接拥有者名下. 占额失败即为终局拒绝，
// 计数器绝不回退.
func (s *ShareService) AccessLink(ctx context.Context, token string, req *types.AccessLinkRequest, client types.ClientInfo) (*types.AccessLinkResponse, error) {
	link, err := s.repo.GetLinkByToken(ctx, token)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			metrics.ShareAccessCounter.WithLabelValues("not_found").Inc()
		}

		return nil, err
	}

	file, err := s.repo.GetFileByID(ctx, link.FileID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			metrics.ShareAccessCounter.WithLabelValues("not_found").Inc()
		}

		return nil, err
	}

	if link.Expired(time.Now()) {
		metrics.ShareAccessCounter.WithLabelValues("expired").Inc()

		return nil, apperr.Forbidden("share link expired")
	}

	if link.QuotaExhausted() {
		metrics.ShareAccessCounter.WithLabelValues("quota").Inc()

		return nil, apperr.Forbidden("share link download limit reached")
	}

	if link.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(req.Password)); err != nil {
			metrics.ShareAccessCounter.WithLabelValues("password").Inc()

			return nil, apperr.Forbidden("invalid share password")
		}
	}

	// 预检通过后仍可能输掉最后一个名额的竞争，以条件自增为准
	claimed, err := s.repo.ClaimLinkDownload(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	if !claimed {
		metrics.ShareAccessCounter.WithLabelValues("quota").Inc()

		return nil, apperr.Forbidden("share link download limit reached")
	}

	var (
		accessURL string
		ttl       int
	)

	switch link.Permission {
	case model.PermissionView:
		accessURL, err = s.presigner.PresignGet(ctx, file.ObjectKey, s.transfer.ViewTTL(),
			inlineParams(file.FileName, file.ContentType))
		ttl = s.transfer.ViewTTLSeconds
	default:
		accessURL, err = s.presigner.PresignGet(ctx, file.ObjectKey, s.transfer.GetTTL(),
			attachmentParams(file.FileName, file.ContentType))
		ttl = s.transfer.PresignGetTTLSeconds
	}

	if err != nil {
		return nil, err
	}

	metrics.PresignedURLCounter.WithLabelValues("get").Inc()

	// 审计行记在链接拥有者名下，匿名访问者的身份只体现在网络元数据里
	logEntry := &model.FileAccessLog{
		FileID:     file.ID,
		Actor:      link.Owner,
		Action:     model.ActionShare,
		IPAddress:  client.IP,
		UserAgent:  client.UserAgent,
		ShareToken: link.Token,
		Timestamp:  time.Now(),
	}
	if err := s.repo.AppendAccessLog(ctx, logEntry); err != nil {
		return nil, err
	}

	metrics.ShareAccessCounter.WithLabelValues("granted").Inc()

	return &types.AccessLinkResponse{
		FileName:         file.FileName,
		ContentType:      file.ContentType,
		Size:             file.Size,
		Permission:       link.Permission,
		URL:              accessURL,
		ExpiresInSeconds: ttl,
	}, nil
}

// ListLinks 返回拥有者创建的全部分享链接摘要.
func (s *ShareService) ListLinks(ctx context.Context, owner string) ([]types.LinkView, error) {
	links, err := s.repo.ListLinksByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	views := make([]types.LinkView, 0, len(links))
	for _, link := range links {
		views = append(views, types.LinkView{
			LinkID:        link.ID,
			FileID:        link.FileID,
			Token:         link.Token,
			Permission:    link.Permission,
			CreatedAt:     link.CreatedAt,
			ExpiresAt:     link.ExpiresAt,
			MaxDownloads:  link.MaxDownloads,
			DownloadCount: link.DownloadCount,
			PasswordSet:   link.PasswordHash != "",
		})
	}

	return views, nil
}

// RevokeLink 撤销拥有者的分享链接.
func (s *ShareService) RevokeLink(ctx context.Context, owner, linkID string) error {
	return s.repo.DeleteLink(ctx, linkID, owner)
}
