package fs

import (
	"context"
	"io"
	"time"
)

// Kind 远端条目类型
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// RemoteItem 远端文件/文件夹元数据
type RemoteItem struct {
	ID       string
	Name     string
	Kind     Kind
	MimeType string
	// 云端未返回 size 时为 0 (原生文档没有 size)
	Size int64
	// 原始时间字符串 (RFC 3339，可能带 Z)，解析放在比对阶段
	ModifiedTime string
	ParentID     string
	MD5          string
}

// IsFolder 是否为文件夹
func (r *RemoteItem) IsFolder() bool {
	return r.Kind == KindFolder
}

// IsNative 是否为只能导出的原生文档 (Docs/Sheets/Slides ...)
func (r *RemoteItem) IsNative() bool {
	return !r.IsFolder() && IsNativeMimeType(r.MimeType)
}

// LocalEntry 本地文件元数据
type LocalEntry struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	// 仅在需要时计算
	Hash string
}

// RemoteReader 是同步引擎所需的只读远端能力
type RemoteReader interface {
	// GetMetadata 获取单个条目元数据
	GetMetadata(ctx context.Context, id string) (*RemoteItem, error)

	// ListChildren 列出文件夹的一页子条目
	// 返回的 nextPageToken 为空表示没有更多分页
	ListChildren(ctx context.Context, folderID, pageToken string) ([]*RemoteItem, string, error)

	// Download 打开原始文件内容流，total 未知时为 -1
	Download(ctx context.Context, id string) (rc io.ReadCloser, total int64, err error)

	// Export 将原生文档转换为 mimeType 后打开内容流
	Export(ctx context.Context, id, mimeType string) (rc io.ReadCloser, total int64, err error)
}

// RemoteWriter 是上传/共享所需的写入能力
type RemoteWriter interface {
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	UploadFile(ctx context.Context, localPath, parentID string) (string, error)
	SetPermission(ctx context.Context, id, email, role string) error
}

// Remote 完整的远端客户端
type Remote interface {
	RemoteReader
	RemoteWriter
}

// Local 是对本地文件系统的抽象
type Local interface {
	// Stat 获取单个文件信息，不存在时返回的 error 满足 errors.Is(err, os.ErrNotExist)
	Stat(path string) (*LocalEntry, error)

	// MkdirAll 递归创建目录 (幂等)
	MkdirAll(path string) error

	// WriteFile 写入完整内容，modTime 非零时恢复修改时间
	WriteFile(path string, data []byte, modTime time.Time) error

	// ReadDir 列出目录下的直接子条目
	ReadDir(path string) ([]*LocalEntry, error)

	// Hash 计算文件内容的 MD5
	Hash(path string) (string, error)
}
