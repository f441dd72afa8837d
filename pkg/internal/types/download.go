package types

// DownloadRequest 拥有者下载请求.
type DownloadRequest struct {
	FileID string `json:"file_id" rule:"required,uuid4"`
}

// DownloadResponse 下载响应，携带限时预签名URL.
type DownloadResponse struct {
	FileID           string `json:"file_id"`
	FileName         string `json:"file_name"`
	Size             int64  `json:"size"`
	DownloadURL      string `json:"download_url"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}
