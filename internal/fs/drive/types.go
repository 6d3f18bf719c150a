package drive

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"drivesync/internal/fs"
)

const (
	// PageSize 单次列表请求的最大条目数
	PageSize = 1000

	// fileFields 列表与元数据请求需要的字段
	fileFields = "id, name, mimeType, size, modifiedTime, parents, md5Checksum"
	listFields = "nextPageToken, files(" + fileFields + ")"
)

// queryEscaper 查询字符串中的 \ 和 ' 需要转义
var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// childrenQuery 列出未删除的直接子条目
func childrenQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed=false", queryEscaper.Replace(folderID))
}

// toRemoteItem 将 API 返回的 File 转为统一元数据
func toRemoteItem(f *drive.File) *fs.RemoteItem {
	item := &fs.RemoteItem{
		ID:           f.Id,
		Name:         f.Name,
		Kind:         fs.KindOf(f.MimeType),
		MimeType:     f.MimeType,
		Size:         f.Size,
		ModifiedTime: f.ModifiedTime,
		MD5:          f.Md5Checksum,
	}
	if len(f.Parents) > 0 {
		item.ParentID = f.Parents[0]
	}
	return item
}

// APIError 携带云端返回的错误详情
type APIError struct {
	Op      string
	ID      string
	Code    int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("drive %s %s: %d %s", e.Op, e.ID, e.Code, e.Message)
	}
	return fmt.Sprintf("drive %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// wrapErr 统一包装远端错误
func wrapErr(op, id string, err error) error {
	if err == nil {
		return nil
	}
	apiErr := &APIError{Op: op, ID: id, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr.Code = gerr.Code
		apiErr.Message = gerr.Message
	}
	return apiErr
}
