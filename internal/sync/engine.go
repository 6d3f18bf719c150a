package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drivesync/internal/fs"
	"drivesync/internal/ledger"
)

// DefaultChunkSize 下载时单次读取的最大字节数
const DefaultChunkSize int64 = 10 * 1024 * 1024

var (
	// ErrNotFolder 指定的 ID 不是文件夹
	ErrNotFolder = errors.New("not a folder")
	// ErrUnsafeName 云端名字不是单个路径分量 (例如 "..", "a/b")
	ErrUnsafeName = errors.New("unsafe item name")
)

// EngineOptions 初始化选项
type EngineOptions struct {
	Remote   fs.RemoteReader
	Local    fs.Local
	Store    ledger.Store
	Observer Observer

	ChunkSize int64
	// Now 用于生成 synced_at，测试时可替换
	Now func() time.Time
}

// Engine 单向镜像: 云端文件夹 -> 本地目录
// 单线程、同步执行，一次只处理一个请求
type Engine struct {
	opts *EngineOptions
}

func NewEngine(opts *EngineOptions) *Engine {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Observer == nil {
		opts.Observer = SlogObserver{}
	}
	return &Engine{opts: opts}
}

func (e *Engine) emit(ev Event) {
	e.opts.Observer.OnEvent(ev)
}

// ListAll 列出文件夹的全部子条目，自动跟随分页
func (e *Engine) ListAll(ctx context.Context, folderID string) ([]*fs.RemoteItem, error) {
	var (
		items     []*fs.RemoteItem
		pageToken string
	)
	for {
		page, next, err := e.opts.Remote.ListChildren(ctx, folderID, pageToken)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if next == "" {
			return items, nil
		}
		pageToken = next
	}
}

// ResolveFolder 获取文件夹元数据，ID 不是文件夹时返回 ErrNotFolder
func (e *Engine) ResolveFolder(ctx context.Context, folderID string) (*fs.RemoteItem, error) {
	meta, err := e.opts.Remote.GetMetadata(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !meta.IsFolder() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFolder, meta.Name, meta.MimeType)
	}
	return meta, nil
}

// localTarget 返回 item 在 dir 下的本地路径
// 名字必须是单个本地路径分量，否则拒绝
func localTarget(dir, name string) (string, error) {
	if name == "." || !filepath.IsLocal(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return filepath.Join(dir, name), nil
}

// rejectName 对无法落盘的名字发出失败事件
func (e *Engine) rejectName(item *fs.RemoteItem, dir string, err error) {
	e.emit(Event{Kind: EventFailed, ItemID: item.ID, Name: item.Name, Path: dir, Err: err})
}

// statLocal 本地不存在时返回 (nil, nil)
func (e *Engine) statLocal(path string) (*fs.LocalEntry, error) {
	entry, err := e.opts.Local.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// HasChanges 只读检查: 云端文件夹与本地目录是否存在差异
// 深度优先，发现第一个变更立即返回；任何意外错误都视为有变更
func (e *Engine) HasChanges(ctx context.Context, folderID, localPath string) bool {
	items, err := e.ListAll(ctx, folderID)
	if err != nil {
		e.emit(Event{Kind: EventFailed, ItemID: folderID, Path: localPath, Reason: ReasonInspectError, Err: err})
		return true
	}

	for _, item := range items {
		target, err := localTarget(localPath, item.Name)
		if err != nil {
			// 同步时同样会跳过，不算变更
			e.rejectName(item, localPath, err)
			continue
		}

		if item.IsFolder() {
			if e.HasChanges(ctx, item.ID, target) {
				return true
			}
			continue
		}

		local, err := e.statLocal(target)
		if err != nil {
			e.emit(Event{Kind: EventFailed, ItemID: item.ID, Name: item.Name, Path: target, Reason: ReasonInspectError, Err: err})
			return true
		}
		if changed, reason := isModified(item, local); changed {
			e.emit(Event{Kind: EventChangeDetected, ItemID: item.ID, Name: item.Name, Path: target, Reason: reason})
			return true
		}
	}
	return false
}

// SyncFolder 把云端文件夹镜像到 localPath，并更新账本
// 单个文件或子文件夹失败不影响同级条目；返回汇总后的错误
// 处理完本层全部条目后整体保存一次账本
func (e *Engine) SyncFolder(ctx context.Context, folderID, localPath string, l ledger.Ledger) error {
	if err := e.opts.Local.MkdirAll(localPath); err != nil {
		e.emit(Event{Kind: EventFailed, ItemID: folderID, Path: localPath, Err: err})
		return err
	}

	items, err := e.ListAll(ctx, folderID)
	if err != nil {
		e.emit(Event{Kind: EventFailed, ItemID: folderID, Path: localPath, Err: err})
		return err
	}

	var errs []error
	succeeded := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		// 同名条目不做区分，后处理的覆盖先处理的
		target, err := localTarget(localPath, item.Name)
		if err != nil {
			e.rejectName(item, localPath, err)
			errs = append(errs, err)
			continue
		}

		if item.IsFolder() {
			err = e.SyncFolder(ctx, item.ID, target, l)
		} else {
			err = e.syncFile(ctx, item, target, l)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		succeeded++
	}

	if err := e.opts.Store.Save(l); err != nil {
		e.emit(Event{Kind: EventFailed, Path: localPath, Err: err})
		errs = append(errs, fmt.Errorf("save ledger: %w", err))
	} else {
		e.emit(Event{Kind: EventLedgerSaved, Path: localPath, Count: l.Len()})
	}

	e.emit(Event{Kind: EventFolderDone, ItemID: folderID, Path: localPath, Succeeded: succeeded, Count: len(items)})
	return errors.Join(errs...)
}

// syncFile 仅在本地缺失或已变更时下载
func (e *Engine) syncFile(ctx context.Context, item *fs.RemoteItem, target string, l ledger.Ledger) error {
	changed, reason := true, ReasonInspectError
	local, err := e.statLocal(target)
	if err == nil {
		changed, reason = isModified(item, local)
	}
	if !changed {
		e.emit(Event{Kind: EventSkipped, ItemID: item.ID, Name: item.Name, Path: target})
		return nil
	}

	e.emit(Event{Kind: EventDownloadStarted, ItemID: item.ID, Name: item.Name, Path: target, Reason: reason})

	data, err := e.DownloadItem(ctx, item.ID)
	if err != nil {
		e.emit(Event{Kind: EventFailed, ItemID: item.ID, Name: item.Name, Path: target, Err: err})
		return fmt.Errorf("download %s: %w", item.Name, err)
	}

	// 恢复云端修改时间，下一轮检查才不会误判为变更
	modTime, _ := parseRemoteTime(item.ModifiedTime)
	if err := e.opts.Local.WriteFile(target, data, modTime); err != nil {
		e.emit(Event{Kind: EventFailed, ItemID: item.ID, Name: item.Name, Path: target, Err: err})
		return err
	}

	l.Upsert(item.ID, ledger.Entry{
		Name:      item.Name,
		Modified:  item.ModifiedTime,
		Size:      item.Size,
		LocalPath: target,
		SyncedAt:  e.opts.Now(),
	})

	e.emit(Event{Kind: EventDownloaded, ItemID: item.ID, Name: item.Name, Path: target, Bytes: int64(len(data))})
	return nil
}
