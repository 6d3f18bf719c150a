package sync

import (
	"context"
	"log/slog"
	"time"

	"drivesync/internal/ledger"
)

// DefaultInterval 默认检查间隔
const DefaultInterval = 300 * time.Second

// WatchOptions 监听参数
type WatchOptions struct {
	FolderID  string
	LocalPath string
	Interval  time.Duration
}

// Watcher 周期性检查变更，有变更时执行一次完整同步
type Watcher struct {
	engine *Engine
	ledger ledger.Ledger
	opts   WatchOptions
}

func NewWatcher(engine *Engine, l ledger.Ledger, opts WatchOptions) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if l == nil {
		l = ledger.New()
	}
	return &Watcher{engine: engine, ledger: l, opts: opts}
}

// RunOnce 跳过变更检查，直接同步一次
func (w *Watcher) RunOnce(ctx context.Context) error {
	slog.Info("syncing folder", "folder_id", w.opts.FolderID, "local_path", w.opts.LocalPath)
	start := time.Now()
	err := w.engine.SyncFolder(ctx, w.opts.FolderID, w.opts.LocalPath, w.ledger)
	if err != nil {
		slog.Error("sync finished with errors", "elapsed", time.Since(start).Round(time.Millisecond), "err", err)
		return err
	}
	slog.Info("sync completed", "elapsed", time.Since(start).Round(time.Millisecond), "ledger_entries", w.ledger.Len())
	return nil
}

// Pass 检查一次，有变更才同步；返回是否发生了同步
func (w *Watcher) Pass(ctx context.Context) (bool, error) {
	slog.Info("checking for changes", "folder_id", w.opts.FolderID)
	if !w.engine.HasChanges(ctx, w.opts.FolderID, w.opts.LocalPath) {
		slog.Info("no changes detected")
		return false, nil
	}
	slog.Info("changes detected, starting sync")
	return true, w.RunOnce(ctx)
}

// Run 循环执行 Pass，直到 ctx 被取消
// 单轮失败只记录日志，不会中断循环
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watching folder",
		"folder_id", w.opts.FolderID,
		"local_path", w.opts.LocalPath,
		"interval", w.opts.Interval)

	for {
		if _, err := w.Pass(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("sync pass failed, will retry next interval", "err", err)
		}

		slog.Debug("waiting for next check", "next", time.Now().Add(w.opts.Interval).Format(time.TimeOnly))
		timer := time.NewTimer(w.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("watch stopped")
			return nil
		case <-timer.C:
		}
	}
}
