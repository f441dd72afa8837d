package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hey-granth/silo/pkg/internal/apperr"
	"github.com/hey-granth/silo/pkg/internal/model"
	"github.com/hey-granth/silo/pkg/internal/types"
)

// TestCreateLinkAndAccess 测试分享链接签发与无密码访问的完整流程.
func TestCreateLinkAndAccess(t *testing.T) {
	transfer, share, r, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 1024)

	created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:     fileID,
		Permission: model.PermissionDownload,
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if !strings.HasPrefix(created.LinkID, "sh_") {
		t.Errorf("link id %q missing sh_ prefix", created.LinkID)
	}

	// base64url 编码的 32 字节随机串长度为 43
	if len(created.Token) != 43 {
		t.Errorf("token length = %d, want 43", len(created.Token))
	}

	access, err := share.AccessLink(ctx, created.Token, &types.AccessLinkRequest{},
		types.ClientInfo{IP: "198.51.100.2", UserAgent: "Mozilla/5.0"})
	if err != nil {
		t.Fatalf("access link: %v", err)
	}

	if access.URL == "" || access.Permission != model.PermissionDownload {
		t.Errorf("access response = %+v", access)
	}

	if access.ExpiresInSeconds != 3600 {
		t.Errorf("download link TTL = %d, want 3600", access.ExpiresInSeconds)
	}

	link, err := r.GetLinkByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get link: %v", err)
	}

	if link.DownloadCount != 1 {
		t.Errorf("download count = %d, want 1", link.DownloadCount)
	}

	logs, err := r.ListFileLogs(ctx, fileID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}

	last := logs[len(logs)-1]
	if last.Action != model.ActionShare {
		t.Fatalf("last log action = %s, want SHARE", last.Action)
	}

	// 审计行记在链接拥有者名下，访问者只留下网络元数据
	if last.Actor != "alice" {
		t.Errorf("share log actor = %s, want alice", last.Actor)
	}

	if last.ShareToken != created.Token || last.IPAddress != "198.51.100.2" {
		t.Error("share log must carry the token and client metadata")
	}
}

// TestShareTokensDistinct 测试连续签发的 token 两两不同.
func TestShareTokensDistinct(t *testing.T) {
	transfer, share, _, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	seen := make(map[string]bool)

	for range 50 {
		created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
			FileID:     fileID,
			Permission: model.PermissionView,
		})
		if err != nil {
			t.Fatalf("create link: %v", err)
		}

		if seen[created.Token] {
			t.Fatalf("duplicate token %s", created.Token)
		}

		seen[created.Token] = true
	}
}

// TestAccessUnknownToken 测试未知 token 返回 NotFound.
func TestAccessUnknownToken(t *testing.T) {
	_, share, _, _ := newTestServices(t)

	_, err := share.AccessLink(context.Background(), "no-such-token",
		&types.AccessLinkRequest{}, types.ClientInfo{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want NotFound", apperr.KindOf(err))
	}
}

// TestAccessExpiredLink 测试过期链接拒绝访问且不消耗配额.
func TestAccessExpiredLink(t *testing.T) {
	transfer, share, r, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	soon := time.Now().Add(50 * time.Millisecond)

	created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:     fileID,
		ExpiresAt:  &soon,
		Permission: model.PermissionDownload,
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	_, err = share.AccessLink(ctx, created.Token, &types.AccessLinkRequest{}, types.ClientInfo{})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("kind = %v, want Forbidden for expired link", apperr.KindOf(err))
	}

	link, err := r.GetLinkByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get link: %v", err)
	}

	if link.DownloadCount != 0 {
		t.Errorf("expired access must not consume quota, count = %d", link.DownloadCount)
	}
}

// TestCreateLinkPastExpiryRejected 测试过去的过期时间在创建时被拒绝.
func TestCreateLinkPastExpiryRejected(t *testing.T) {
	transfer, share, _, _ := newTestServices(t)
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	past := time.Now().Add(-time.Hour)

	_, err := share.CreateLink(context.Background(), "alice", &types.CreateLinkRequest{
		FileID:     fileID,
		ExpiresAt:  &past,
		Permission: model.PermissionDownload,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want Validation", apperr.KindOf(err))
	}
}

// TestCreateLinkPendingFileConflict 测试未完成文件不可分享.
func TestCreateLinkPendingFileConflict(t *testing.T) {
	transfer, share, _, _ := newTestServices(t)
	ctx := context.Background()

	resp, err := transfer.RequestUpload(ctx, "alice", &types.UploadRequest{
		FileName:    "pending.bin",
		Size:        10,
		Checksum:    testChecksum,
		ContentType: "application/octet-stream",
	})
	if err != nil {
		t.Fatalf("request upload: %v", err)
	}

	_, err = share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:     resp.FileID,
		Permission: model.PermissionView,
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("kind = %v, want Conflict", apperr.KindOf(err))
	}
}

// TestAccessPasswordGate 测试密码门：错误密码拒绝且不占额，正确密码放行.
func TestAccessPasswordGate(t *testing.T) {
	transfer, share, r, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:     fileID,
		Permission: model.PermissionDownload,
		Password:   "hunter2secret",
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	_, err = share.AccessLink(ctx, created.Token,
		&types.AccessLinkRequest{Password: "wrong"}, types.ClientInfo{})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("kind = %v, want Forbidden for wrong password", apperr.KindOf(err))
	}

	link, err := r.GetLinkByToken(ctx, created.Token)
	if err != nil {
		t.Fatalf("get link: %v", err)
	}

	if link.DownloadCount != 0 {
		t.Errorf("failed password must not consume quota, count = %d", link.DownloadCount)
	}

	if _, err := share.AccessLink(ctx, created.Token,
		&types.AccessLinkRequest{Password: "hunter2secret"}, types.ClientInfo{}); err != nil {
		t.Fatalf("access with correct password: %v", err)
	}
}

// TestAccessQuotaExactlyOne 测试 maxDownloads=1 下并发访问恰有一次放行.
func TestAccessQuotaExactlyOne(t *testing.T) {
	transfer, share, _, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	one := 1

	created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:       fileID,
		MaxDownloads: &one,
		Permission:   model.PermissionDownload,
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	const attempts = 10

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		granted   int
		forbidden int
	)

	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := share.AccessLink(ctx, created.Token, &types.AccessLinkRequest{}, types.ClientInfo{})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				granted++
			case apperr.KindOf(err) == apperr.KindForbidden:
				forbidden++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	if granted != 1 {
		t.Errorf("granted = %d, want exactly 1", granted)
	}

	if forbidden != attempts-1 {
		t.Errorf("forbidden = %d, want %d", forbidden, attempts-1)
	}
}

// TestAccessQuotaExhaustedAfterwards 测试配额用尽后的访问被终局拒绝.
func TestAccessQuotaExhaustedAfterwards(t *testing.T) {
	transfer, share, _, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	two := 2

	created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:       fileID,
		MaxDownloads: &two,
		Permission:   model.PermissionDownload,
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	for i := range two {
		if _, err := share.AccessLink(ctx, created.Token, &types.AccessLinkRequest{}, types.ClientInfo{}); err != nil {
			t.Fatalf("access %d: %v", i, err)
		}
	}

	_, err = share.AccessLink(ctx, created.Token, &types.AccessLinkRequest{}, types.ClientInfo{})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("kind = %v, want Forbidden after quota exhausted", apperr.KindOf(err))
	}
}

// TestAccessViewPermission 测试 VIEW 链接签发短有效期的内联URL.
func TestAccessViewPermission(t *testing.T) {
	transfer, share, _, presigner := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:     fileID,
		Permission: model.PermissionView,
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	access, err := share.AccessLink(ctx, created.Token, &types.AccessLinkRequest{}, types.ClientInfo{})
	if err != nil {
		t.Fatalf("access link: %v", err)
	}

	if access.ExpiresInSeconds != 600 {
		t.Errorf("view link TTL = %d, want 600", access.ExpiresInSeconds)
	}

	call := presigner.lastCall(t)
	if call.TTL != 10*time.Minute {
		t.Errorf("presign TTL = %v, want 10m", call.TTL)
	}

	if disposition := call.Params.Get("response-content-disposition"); !strings.HasPrefix(disposition, "inline") {
		t.Errorf("disposition = %q, want inline", disposition)
	}
}

// TestRevokeLink 测试撤销后链接不再可访问，他人无法撤销.
func TestRevokeLink(t *testing.T) {
	transfer, share, _, _ := newTestServices(t)
	ctx := context.Background()
	fileID := uploadConfirmed(t, transfer, "alice", 10)

	created, err := share.CreateLink(ctx, "alice", &types.CreateLinkRequest{
		FileID:     fileID,
		Permission: model.PermissionDownload,
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if err := share.RevokeLink(ctx, "mallory", created.LinkID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("foreign revoke kind = %v, want NotFound", apperr.KindOf(err))
	}

	if err := share.RevokeLink(ctx, "alice", created.LinkID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	_, err = share.AccessLink(ctx, created.Token, &types.AccessLinkRequest{}, types.ClientInfo{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v after revoke, want NotFound", apperr.KindOf(err))
	}
}
