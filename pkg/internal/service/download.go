package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
	"github.com/hey-granth/silo/pkg/internal/types"
	"github.com/hey-granth/silo/pkg/metrics"
	"github.com/hey-granth/silo/pkg/rule"
)

// attachmentParams 构造附件下载的响应头覆盖参数.
func attachmentParams(fileName, contentType string) url.Values {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	params.Set("response-content-type", contentType)

	return params
}

// inlineParams 构造内联查看的响应头覆盖参数.
func inlineParams(fileName, contentType string) url.Values {
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", fileName))
	params.Set("response-content-type", contentType)

	return params
}

// RequestDownload 为拥有者签发限时下载URL并记录 DOWNLOAD 审计.
// 文件归属他人时返回 NotFound；归属本人但尚未完成时返回 Conflict，
// 两种失败对调用方可区分.
func (s *TransferService) RequestDownload(ctx context.Context, owner string, req *types.DownloadRequest, client types.ClientInfo) (*types.DownloadResponse, error) {
	if err := rule.ValidateStruct(req); err != nil {
		return nil, apperr.Validation("invalid download request: %v", err)
	}

	file, err := s.repo.GetFileByIDOwner(ctx, req.FileID, owner)
	if err != nil {
		return nil, err
	}

	if !file.Uploaded {
		return nil, apperr.Conflict("file %s is not ready for download", file.ID)
	}

	downloadURL, err := s.presigner.PresignGet(ctx, file.ObjectKey, s.transfer.GetTTL(),
		attachmentParams(file.FileName, file.ContentType))
	if err != nil {
		return nil, err
	}

	metrics.PresignedURLCounter.WithLabelValues("get").Inc()

	logEntry := &model.FileAccessLog{
		FileID:    file.ID,
		Actor:     owner,
		Action:    model.ActionDownload,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		Timestamp: time.Now(),
	}
	if err := s.repo.AppendAccessLog(ctx, logEntry); err != nil {
		return nil, err
	}

	return &types.DownloadResponse{
		FileID:           file.ID,
		FileName:         file.FileName,
		Size:             file.Size,
		DownloadURL:      downloadURL,
		ExpiresInSeconds: s.transfer.PresignGetTTLSeconds,
	}, nil
}

// GetFile 返回拥有者视角的文件详情.
func (s *TransferService) GetFile(ctx context.Context, owner, fileID string) (*types.FileView, error) {
	file, err := s.repo.GetFileByIDOwner(ctx, fileID, owner)
	if err != nil {
		return nil, err
	}

	view := types.NewFileView(file)

	return &view, nil
}

// ListFileLogs 返回拥有者文件的审计日志，按时间升序.
func (s *TransferService) ListFileLogs(ctx context.Context, owner, fileID string) ([]types.AccessLogView, error) {
	if _, err := s.repo.GetFileByIDOwner(ctx, fileID, owner); err != nil {
		return nil, err
	}

	logs, err := s.repo.ListFileLogs(ctx, fileID)
	if err != nil {
		return nil, err
	}

	views := make([]types.AccessLogView, 0, len(logs))
	for _, entry := range logs {
		views = append(views, types.AccessLogView{
			Actor:      entry.Actor,
			Action:     entry.Action,
			IPAddress:  entry.IPAddress,
			UserAgent:  entry.UserAgent,
			ShareToken: entry.ShareToken,
			Timestamp:  entry.Timestamp,
		})
	}

	return views, nil
}

// GetAccount 返回主体的用量台账视图.
func (s *TransferService) GetAccount(ctx context.Context, userID string) (*types.AccountView, error) {
	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &types.AccountView{UserID: account.UserID, StorageUsed: account.StorageUsed}, nil
}
