package sync

import (
	"context"
	"errors"
	"fmt"
)

// DownloadFolder 一次性把整个文件夹树下载到 baseDir/folderName 下
// 不读写账本；本地已有且 MD5 相同的文件直接跳过
// 返回 ok 表示至少有一个子条目成功 (空文件夹视为失败)
func (e *Engine) DownloadFolder(ctx context.Context, folderID, folderName, baseDir string) (bool, error) {
	localPath, err := localTarget(baseDir, folderName)
	if err != nil {
		e.emit(Event{Kind: EventFailed, ItemID: folderID, Name: folderName, Path: baseDir, Err: err})
		return false, err
	}
	if err := e.opts.Local.MkdirAll(localPath); err != nil {
		return false, err
	}

	items, err := e.ListAll(ctx, folderID)
	if err != nil {
		e.emit(Event{Kind: EventFailed, ItemID: folderID, Path: localPath, Err: err})
		return false, fmt.Errorf("list %s: %w", folderName, err)
	}

	var errs []error
	succeeded := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if item.IsFolder() {
			ok, err := e.DownloadFolder(ctx, item.ID, item.Name, localPath)
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				succeeded++
			}
			continue
		}

		target, err := localTarget(localPath, item.Name)
		if err != nil {
			e.rejectName(item, localPath, err)
			errs = append(errs, err)
			continue
		}
		if e.sameContent(target, item.MD5) {
			e.emit(Event{Kind: EventSkipped, ItemID: item.ID, Name: item.Name, Path: target})
			succeeded++
			continue
		}

		e.emit(Event{Kind: EventDownloadStarted, ItemID: item.ID, Name: item.Name, Path: target})
		data, err := e.DownloadItem(ctx, item.ID)
		if err == nil {
			modTime, _ := parseRemoteTime(item.ModifiedTime)
			err = e.opts.Local.WriteFile(target, data, modTime)
		}
		if err != nil {
			e.emit(Event{Kind: EventFailed, ItemID: item.ID, Name: item.Name, Path: target, Err: err})
			errs = append(errs, fmt.Errorf("download %s: %w", item.Name, err))
			continue
		}
		e.emit(Event{Kind: EventDownloaded, ItemID: item.ID, Name: item.Name, Path: target, Bytes: int64(len(data))})
		succeeded++
	}

	e.emit(Event{Kind: EventFolderDone, ItemID: folderID, Path: localPath, Succeeded: succeeded, Count: len(items)})
	return succeeded > 0, errors.Join(errs...)
}

// sameContent 云端没有 MD5 (原生文档) 时总是返回 false
func (e *Engine) sameContent(path, remoteMD5 string) bool {
	if remoteMD5 == "" {
		return false
	}
	entry, err := e.statLocal(path)
	if err != nil || entry == nil || entry.IsDir {
		return false
	}
	sum, err := e.opts.Local.Hash(path)
	return err == nil && sum == remoteMD5
}
