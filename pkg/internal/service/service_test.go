package service_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hey-granth/silo/pkg/configs"
	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
	"github.com/hey-granth/silo/pkg/internal/repo"
	"github.com/hey-granth/silo/pkg/internal/service"
	"github.com/hey-granth/silo/pkg/internal/types"
)

const testChecksum = "60303ae22b998861bce3b28f33eec1be758a213c86c93c076dbe9f558c11c752"

// presignCall 记录一次预签名调用的参数.
type presignCall struct {
	Method    string
	ObjectKey string
	TTL       time.Duration
	Params    url.Values
}

// fakePresigner 返回确定性URL并记录全部调用，替代 MinIO 客户端.
type fakePresigner struct {
	mu      sync.Mutex
	calls   []presignCall
	removed []string
}

func (f *fakePresigner) PresignPut(_ context.Context, objectKey string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, presignCall{Method: "put", ObjectKey: objectKey, TTL: ttl})

	return "https://gateway.test/put/" + objectKey, nil
}

func (f *fakePresigner) PresignGet(_ context.Context, objectKey string, ttl time.Duration, params url.Values) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, presignCall{Method: "get", ObjectKey: objectKey, TTL: ttl, Params: params})

	return "https://gateway.test/get/" + objectKey, nil
}

func (f *fakePresigner) RemoveObject(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, objectKey)

	return nil
}

func (f *fakePresigner) lastCall(t *testing.T) presignCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.calls) == 0 {
		t.Fatal("no presign calls recorded")
	}

	return f.calls[len(f.calls)-1]
}

// testTransferConfig 测试用传输策略.
func testTransferConfig() *configs.TransferConfig {
	return &configs.TransferConfig{
		PresignPutTTLSeconds: 3600,
		PresignGetTTLSeconds: 3600,
		ViewTTLSeconds:       600,
		AllowedContentTypes:  []string{"application/octet-stream", "application/pdf", "image/png"},
		MaxChunks:            100,
	}
}

// newTestServices 装配基于内存 SQLite 与假预签名方的服务组合.
func newTestServices(t *testing.T) (*service.TransferService, *service.ShareService, *repo.Repository, *fakePresigner) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(1)

	r := repo.New(db)
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	presigner := &fakePresigner{}
	cfg := testTransferConfig()

	return service.NewTransferService(r, presigner, cfg),
		service.NewShareService(r, presigner, cfg),
		r, presigner
}

// uploadConfirmed 完整走一遍上传与确认，返回已完成的文件 ID.
func uploadConfirmed(t *testing.T, transfer *service.TransferService, owner string, size int64) string {
	t.Helper()
	ctx := context.Background()

	resp, err := transfer.RequestUpload(ctx, owner, &types.UploadRequest{
		FileName:    "report.pdf",
		Size:        size,
		Checksum:    testChecksum,
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("request upload: %v", err)
	}

	confirm, err := transfer.ConfirmUpload(ctx, owner, &types.ConfirmUploadRequest{FileID: resp.FileID}, types.ClientInfo{})
	if err != nil {
		t.Fatalf("confirm upload: %v", err)
	}

	if !confirm.Uploaded {
		t.Fatal("confirm should mark the file uploaded")
	}

	return resp.FileID
}

// TestRequestUploadSingle 测试单次直传的登记与URL签发.
func TestRequestUploadSingle(t *testing.T) {
	transfer, _, r, presigner := newTestServices(t)
	ctx := context.Background()

	resp, err := transfer.RequestUpload(ctx, "alice", &types.UploadRequest{
		FileName:    "photo.png",
		Size:        2048,
		Checksum:    testChecksum,
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("request upload: %v", err)
	}

	if resp.UploadURL == "" || len(resp.ChunkURLs) != 0 {
		t.Error("single upload should carry one URL and no chunk URLs")
	}

	if !strings.HasPrefix(resp.ObjectKey, "uploads/alice/") || !strings.HasSuffix(resp.ObjectKey, "_photo.png") {
		t.Errorf("object key %q has unexpected shape", resp.ObjectKey)
	}

	call := presigner.lastCall(t)
	if call.Method != "put" || call.TTL != time.Hour {
		t.Errorf("presign call = %+v, want put with 1h TTL", call)
	}

	file, err := r.GetFileByIDOwner(ctx, resp.FileID, "alice")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}

	if file.Uploaded {
		t.Error("file must start in pending state")
	}

	account, err := r.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	if account.StorageUsed != 0 {
		t.Errorf("pending upload must not be accounted, got %d", account.StorageUsed)
	}
}

// TestRequestUploadChunked 测试分块上传按序号签发分块URL.
func TestRequestUploadChunked(t *testing.T) {
	transfer, _, _, _ := newTestServices(t)
	ctx := context.Background()

	resp, err := transfer.RequestUpload(ctx, "alice", &types.UploadRequest{
		FileName:    "big.bin",
		Size:        3000,
		Checksum:    testChecksum,
		ContentType: "application/octet-stream",
		Chunks:      &types.ChunkPlan{Count: 3, ChunkSize: 1000},
	})
	if err != nil {
		t.Fatalf("request upload: %v", err)
	}

	if resp.UploadURL != "" {
		t.Error("chunked upload should not carry a whole-file URL")
	}

	if len(resp.ChunkURLs) != 3 {
		t.Fatalf("chunk URLs = %d, want 3", len(resp.ChunkURLs))
	}

	for i, item := range resp.ChunkURLs {
		if item.Index != i {
			t.Errorf("chunk %d has index %d", i, item.Index)
		}

		if !strings.HasSuffix(item.ObjectKey, "."+string(rune('0'+i))) {
			t.Errorf("chunk key %q missing .%d suffix", item.ObjectKey, i)
		}
	}
}

// TestRequestUploadRejectsContentType 测试白名单之外的内容类型被拒绝.
func TestRequestUploadRejectsContentType(t *testing.T) {
	transfer, _, _, _ := newTestServices(t)

	_, err := transfer.RequestUpload(context.Background(), "alice", &types.UploadRequest{
		FileName:    "evil.exe",
		Size:        10,
		Checksum:    testChecksum,
		ContentType: "application/x-msdownload",
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want Validation", apperr.KindOf(err))
	}
}

// TestConfirmTwiceAccountsOnce 测试重复确认不重复记账.
func TestConfirmTwiceAccountsOnce(t *testing.T) {
	transfer, _, r, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 1024)

	confirm, err := transfer.ConfirmUpload(ctx, "alice", &types.ConfirmUploadRequest{FileID: fileID}, types.ClientInfo{})
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	if !confirm.Uploaded {
		t.Error("second confirm should still report uploaded")
	}

	account, err := r.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	if account.StorageUsed != 1024 {
		t.Errorf("storage used = %d, want 1024", account.StorageUsed)
	}

	logs, err := r.ListFileLogs(ctx, fileID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}

	if len(logs) != 1 {
		t.Errorf("UPLOAD log rows = %d, want 1", len(logs))
	}
}

// TestChunkedConfirmFlow 测试分块确认推进与最后一块触发完成.
func TestChunkedConfirmFlow(t *testing.T) {
	transfer, _, r, _ := newTestServices(t)
	ctx := context.Background()

	resp, err := transfer.RequestUpload(ctx, "bob", &types.UploadRequest{
		FileName:    "big.bin",
		Size:        2000,
		Checksum:    testChecksum,
		ContentType: "application/octet-stream",
		Chunks:      &types.ChunkPlan{Count: 2, ChunkSize: 1000},
	})
	if err != nil {
		t.Fatalf("request upload: %v", err)
	}

	first, err := transfer.ConfirmChunk(ctx, "bob", &types.ConfirmChunkRequest{
		FileID: resp.FileID, Index: 1, Size: 1000, Checksum: testChecksum,
	}, types.ClientInfo{})
	if err != nil {
		t.Fatalf("confirm chunk 1: %v", err)
	}

	if first.Uploaded || first.PendingChunks != 1 {
		t.Errorf("after one chunk: uploaded=%v pending=%d, want false/1", first.Uploaded, first.PendingChunks)
	}

	// 整体确认在分块未齐时同样报告剩余数
	whole, err := transfer.ConfirmUpload(ctx, "bob", &types.ConfirmUploadRequest{FileID: resp.FileID}, types.ClientInfo{})
	if err != nil {
		t.Fatalf("premature confirm: %v", err)
	}

	if whole.Uploaded || whole.PendingChunks != 1 {
		t.Errorf("premature confirm: uploaded=%v pending=%d, want false/1", whole.Uploaded, whole.PendingChunks)
	}

	last, err := transfer.ConfirmChunk(ctx, "bob", &types.ConfirmChunkRequest{
		FileID: resp.FileID, Index: 0, Size: 1000, Checksum: testChecksum,
	}, types.ClientInfo{})
	if err != nil {
		t.Fatalf("confirm chunk 0: %v", err)
	}

	if !last.Uploaded {
		t.Error("last chunk confirm should complete the file")
	}

	account, err := r.GetAccount(ctx, "bob")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	if account.StorageUsed != 2000 {
		t.Errorf("storage used = %d, want 2000", account.StorageUsed)
	}
}

// TestDownloadFlow 测试拥有者下载签发URL并落 DOWNLOAD 审计.
func TestDownloadFlow(t *testing.T) {
	transfer, _, r, presigner := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 1024)

	resp, err := transfer.RequestDownload(ctx, "alice", &types.DownloadRequest{FileID: fileID},
		types.ClientInfo{IP: "203.0.113.7", UserAgent: "curl/8"})
	if err != nil {
		t.Fatalf("request download: %v", err)
	}

	if resp.DownloadURL == "" || resp.ExpiresInSeconds != 3600 {
		t.Errorf("download response = %+v", resp)
	}

	call := presigner.lastCall(t)
	if call.Method != "get" {
		t.Errorf("last presign method = %s, want get", call.Method)
	}

	if disposition := call.Params.Get("response-content-disposition"); !strings.HasPrefix(disposition, "attachment") {
		t.Errorf("disposition = %q, want attachment", disposition)
	}

	logs, err := r.ListFileLogs(ctx, fileID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}

	if len(logs) != 2 || logs[1].Action != model.ActionDownload {
		t.Fatalf("logs = %d rows, want UPLOAD then DOWNLOAD", len(logs))
	}

	if logs[1].IPAddress != "203.0.113.7" || logs[1].UserAgent != "curl/8" {
		t.Error("download log must carry client metadata")
	}
}

// TestDownloadPendingConflict 测试未完成文件的下载返回 Conflict.
func TestDownloadPendingConflict(t *testing.T) {
	transfer, _, _, _ := newTestServices(t)
	ctx := context.Background()

	resp, err := transfer.RequestUpload(ctx, "alice", &types.UploadRequest{
		FileName:    "slow.bin",
		Size:        10,
		Checksum:    testChecksum,
		ContentType: "application/octet-stream",
	})
	if err != nil {
		t.Fatalf("request upload: %v", err)
	}

	_, err = transfer.RequestDownload(ctx, "alice", &types.DownloadRequest{FileID: resp.FileID}, types.ClientInfo{})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("kind = %v, want Conflict for pending file", apperr.KindOf(err))
	}
}

// TestDownloadForeignFileMasked 测试他人文件的下载请求返回 NotFound.
func TestDownloadForeignFileMasked(t *testing.T) {
	transfer, _, _, _ := newTestServices(t)
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	_, err := transfer.RequestDownload(context.Background(), "mallory",
		&types.DownloadRequest{FileID: fileID}, types.ClientInfo{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want NotFound for foreign file", apperr.KindOf(err))
	}
}

// TestDeleteFile 测试删除清理对象、回退用量并保留审计.
func TestDeleteFile(t *testing.T) {
	transfer, _, r, presigner := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 512)

	if err := transfer.DeleteFile(ctx, "alice", fileID, types.ClientInfo{}); err != nil {
		t.Fatalf("delete file: %v", err)
	}

	if len(presigner.removed) != 1 {
		t.Errorf("removed objects = %d, want 1", len(presigner.removed))
	}

	account, err := r.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}

	if account.StorageUsed != 0 {
		t.Errorf("storage used = %d after delete, want 0", account.StorageUsed)
	}

	logs, err := r.ListFileLogs(ctx, fileID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}

	if len(logs) != 2 || logs[1].Action != model.ActionDelete {
		t.Fatalf("logs after delete = %d rows, want UPLOAD then DELETE", len(logs))
	}
}
