package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"drivesync/internal/fs"
)

// Client Google Drive 客户端
type Client struct {
	srv *drive.Service
}

// NewClient 使用已认证的 HTTP 客户端创建 Drive 客户端
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// GetMetadata 获取单个条目的元数据
func (c *Client) GetMetadata(ctx context.Context, id string) (*fs.RemoteItem, error) {
	f, err := c.srv.Files.Get(id).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapErr("get", id, err)
	}
	return toRemoteItem(f), nil
}

// ListChildren 列出文件夹的一页子条目 (不含回收站)
func (c *Client) ListChildren(ctx context.Context, folderID, pageToken string) ([]*fs.RemoteItem, string, error) {
	call := c.srv.Files.List().
		Q(childrenQuery(folderID)).
		PageSize(PageSize).
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", wrapErr("list", folderID, err)
	}

	items := make([]*fs.RemoteItem, 0, len(resp.Files))
	for _, f := range resp.Files {
		items = append(items, toRemoteItem(f))
	}
	return items, resp.NextPageToken, nil
}

// Download 下载文件原始内容
// 调用者负责 Close
func (c *Client) Download(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	resp, err := c.srv.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, 0, wrapErr("download", id, err)
	}
	return resp.Body, resp.ContentLength, nil
}

// Export 导出原生文档
func (c *Client) Export(ctx context.Context, id, mimeType string) (io.ReadCloser, int64, error) {
	resp, err := c.srv.Files.Export(id, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, 0, wrapErr("export", id, err)
	}
	return resp.Body, resp.ContentLength, nil
}

// CreateFolder 在 parentID 下创建文件夹
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: fs.FolderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	f, err := c.srv.Files.Create(meta).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", wrapErr("create folder", name, err)
	}
	return f.Id, nil
}

// UploadFile 上传本地文件 (可续传的分片上传由 SDK 处理)
func (c *Client) UploadFile(ctx context.Context, localPath, parentID string) (string, error) {
	// 根据内容推测 MIME 类型，无法识别时为 application/octet-stream
	mime, err := mimetype.DetectFile(localPath)
	if err != nil {
		return "", fmt.Errorf("detect mime type %s: %w", localPath, err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	meta := &drive.File{
		Name:    filepath.Base(localPath),
		Parents: []string{parentID},
	}
	created, err := c.srv.Files.Create(meta).
		Media(f, googleapi.ContentType(mime.String())).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapErr("upload", localPath, err)
	}
	return created.Id, nil
}

// SetPermission 给用户授予权限
func (c *Client) SetPermission(ctx context.Context, id, email, role string) error {
	perm := &drive.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: email,
	}
	_, err := c.srv.Permissions.Create(id, perm).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return wrapErr("share", id, err)
	}
	return nil
}

var _ fs.Remote = (*Client)(nil)
