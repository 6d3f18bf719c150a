package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"drivesync/internal/fs"
)

// DownloadItem 下载单个文件的完整内容
// 原生文档按类型导出，其余直接下载原始内容
// 任意分片失败则整个条目失败，不会留下半个文件
func (e *Engine) DownloadItem(ctx context.Context, id string) ([]byte, error) {
	meta, err := e.opts.Remote.GetMetadata(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		rc    io.ReadCloser
		total int64
	)
	if meta.IsNative() {
		rc, total, err = e.opts.Remote.Export(ctx, id, fs.ExportMimeType(meta.MimeType))
	} else {
		rc, total, err = e.opts.Remote.Download(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return e.readChunks(rc, total, meta)
}

// readChunks 分片读取到内存，每个分片报告一次进度
// 不足一个分片的读取是正常状态
func (e *Engine) readChunks(r io.Reader, total int64, meta *fs.RemoteItem) ([]byte, error) {
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	for {
		n, err := io.CopyN(&buf, r, e.opts.ChunkSize)
		if n > 0 {
			e.emit(Event{
				Kind:   EventDownloadProgress,
				ItemID: meta.ID,
				Name:   meta.Name,
				Bytes:  int64(buf.Len()),
				Total:  total,
			})
		}
		if errors.Is(err, io.EOF) {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read chunk at offset %d: %w", buf.Len(), err)
		}
	}
}
