package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
	"github.com/hey-granth/silo/pkg/internal/types"
	"github.com/hey-granth/silo/pkg/metrics"
	"github.com/hey-granth/silo/pkg/rule"
)

// objectKeyFor 生成对象存储键：uploads/{owner}/{uuid}_{fileName}.
// uuid 前缀保证同名文件互不覆盖.
func objectKeyFor(owner, fileID, fileName string) string {
	return fmt.Sprintf("uploads/%s/%s_%s", owner, fileID, fileName)
}

// chunkObjectKey 生成分块对象键：在文件键后追加 .{index}.
func chunkObjectKey(objectKey string, index int) string {
	return fmt.Sprintf("%s.%d", objectKey, index)
}

// RequestUpload 登记一次上传意图并签发限时上传URL. 先签名后落库：
// 签名失败时数据库不会留下半成品记录. 返回的文件记录处于待完成态，
// 在确认之前不参与用量记账，也不可下载或分享.
func (s *TransferService) RequestUpload(ctx context.Context, owner string, req *types.UploadRequest) (*types.UploadResponse, error) {
	if err := rule.ValidateStruct(req); err != nil {
		return nil, apperr.Validation("invalid upload request: %v", err)
	}

	if !s.transfer.ContentTypeAllowed(req.ContentType) {
		return nil, apperr.Validation("content type %s not allowed", req.ContentType)
	}

	if req.Chunks != nil && req.Chunks.Count > s.transfer.MaxChunks {
		return nil, apperr.Validation("chunk count exceeds limit of %d", s.transfer.MaxChunks)
	}

	fileID := uuid.NewString()
	objectKey := objectKeyFor(owner, fileID, req.FileName)

	resp := &types.UploadResponse{
		FileID:           fileID,
		ObjectKey:        objectKey,
		ExpiresInSeconds: s.transfer.PresignPutTTLSeconds,
	}

	file := &model.File{
		ID:          fileID,
		Owner:       owner,
		ObjectKey:   objectKey,
		FileName:    req.FileName,
		Size:        req.Size,
		ContentType: req.ContentType,
		Checksum:    req.Checksum,
		Uploaded:    false,
		CreatedAt:   time.Now(),
	}

	var chunks []model.FileChunk

	if req.Chunks == nil {
		uploadURL, err := s.presigner.PresignPut(ctx, objectKey, s.transfer.PutTTL())
		if err != nil {
			return nil, err
		}

		resp.UploadURL = uploadURL

		metrics.PresignedURLCounter.WithLabelValues("put").Inc()
	} else {
		file.ChunkCount = req.Chunks.Count
		chunks = make([]model.FileChunk, 0, req.Chunks.Count)
		resp.ChunkURLs = make([]types.ChunkUploadItem, 0, req.Chunks.Count)

		for i := range req.Chunks.Count {
			key := chunkObjectKey(objectKey, i)

			uploadURL, err := s.presigner.PresignPut(ctx, key, s.transfer.PutTTL())
			if err != nil {
				return nil, err
			}

			chunks = append(chunks, model.FileChunk{
				FileID:    fileID,
				Index:     i,
				ObjectKey: key,
				CreatedAt: time.Now(),
			})
			resp.ChunkURLs = append(resp.ChunkURLs, types.ChunkUploadItem{
				Index:     i,
				ObjectKey: key,
				UploadURL: uploadURL,
			})

			metrics.PresignedURLCounter.WithLabelValues("put").Inc()
		}
	}

	if err := s.repo.CreateFile(ctx, file, chunks); err != nil {
		return nil, err
	}

	return resp, nil
}

// ConfirmUpload 把上传从待完成态推进为完成态. 幂等：重复确认不会
// 重复记账. 分块上传要求全部分块均已确认，否则返回剩余分块数.
func (s *TransferService) ConfirmUpload(ctx context.Context, owner string, req *types.ConfirmUploadRequest, client types.ClientInfo) (*types.ConfirmUploadResponse, error) {
	if err := rule.ValidateStruct(req); err != nil {
		return nil, apperr.Validation("invalid confirm request: %v", err)
	}

	file, err := s.repo.GetFileByIDOwner(ctx, req.FileID, owner)
	if err != nil {
		return nil, err
	}

	if file.Chunked() {
		pending, err := s.repo.CountPendingChunks(ctx, file.ID)
		if err != nil {
			return nil, err
		}

		if pending > 0 {
			return &types.ConfirmUploadResponse{
				FileID:        file.ID,
				Uploaded:      false,
				PendingChunks: pending,
			}, nil
		}
	}

	if err := s.finalize(ctx, file, client); err != nil {
		return nil, err
	}

	return confirmedResponse(file), nil
}

// ConfirmChunk 确认单个分块上传完成. 当这是最后一个待确认分块时，
// 顺带把整个文件推进为完成态. 分块标记与完成翻转各自原子提交，
// 并发确认不同分块时最后提交的一方总能看到全部标记.
func (s *TransferService) ConfirmChunk(ctx context.Context, owner string, req *types.ConfirmChunkRequest, client types.ClientInfo) (*types.ConfirmUploadResponse, error) {
	if err := rule.ValidateStruct(req); err != nil {
		return nil, apperr.Validation("invalid chunk confirm request: %v", err)
	}

	file, err := s.repo.GetFileByIDOwner(ctx, req.FileID, owner)
	if err != nil {
		return nil, err
	}

	if !file.Chunked() {
		return nil, apperr.Validation("file %s is not a chunked upload", file.ID)
	}

	// 越界序号与缺失分块同样掩蔽为 NotFound
	if req.Index >= file.ChunkCount {
		return nil, apperr.NotFound("chunk not found")
	}

	if _, err := s.repo.MarkChunkUploaded(ctx, file.ID, req.Index, req.Size, req.Checksum); err != nil {
		return nil, err
	}

	pending, err := s.repo.CountPendingChunks(ctx, file.ID)
	if err != nil {
		return nil, err
	}

	if pending > 0 {
		return &types.ConfirmUploadResponse{
			FileID:        file.ID,
			Uploaded:      false,
			PendingChunks: pending,
		}, nil
	}

	if err := s.finalize(ctx, file, client); err != nil {
		return nil, err
	}

	return confirmedResponse(file), nil
}

// confirmedResponse 构造完成态的确认响应，附带最终文件视图.
func confirmedResponse(file *model.File) *types.ConfirmUploadResponse {
	file.Uploaded = true
	view := types.NewFileView(file)

	return &types.ConfirmUploadResponse{FileID: file.ID, Uploaded: true, File: &view}
}

// finalize 条件翻转完成态并记账. 翻转失败（已完成）时静默幂等.
func (s *TransferService) finalize(ctx context.Context, file *model.File, client types.ClientInfo) error {
	logEntry := &model.FileAccessLog{
		FileID:    file.ID,
		Actor:     file.Owner,
		Action:    model.ActionUpload,
		IPAddress: client.IP,
		UserAgent: client.UserAgent,
		Timestamp: time.Now(),
	}

	_, err := s.repo.FinalizeUpload(ctx, file.ID, file.Owner, file.Size, logEntry)

	return err
}
