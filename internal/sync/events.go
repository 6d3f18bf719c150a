package sync

import (
	"log/slog"

	"github.com/dustin/go-humanize"
)

// EventKind 同步过程中产生的事件类型
type EventKind int

const (
	EventChangeDetected EventKind = iota // 检查阶段发现变更
	EventDownloadStarted
	EventDownloadProgress
	EventDownloaded
	EventSkipped // 本地已是最新
	EventFailed
	EventFolderDone
	EventLedgerSaved
)

var eventNames = [...]string{
	"change-detected",
	"download-started",
	"download-progress",
	"downloaded",
	"skipped",
	"failed",
	"folder-done",
	"ledger-saved",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Reason 判定为变更的原因
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonMissing      Reason = "missing"
	ReasonModified     Reason = "modified"
	ReasonSize         Reason = "size"
	ReasonInspectError Reason = "inspect-error"
)

// Event 一条结构化的同步事件
type Event struct {
	Kind   EventKind
	ItemID string
	Name   string
	Path   string
	Reason Reason

	// 下载进度: 已接收字节数与总字节数 (未知时 Total <= 0)
	Bytes int64
	Total int64

	// FolderDone: 成功数 / 子条目总数
	Succeeded int
	Count     int

	Err error
}

// Progress 返回 0~1 的进度，总大小未知时返回 -1
func (e Event) Progress() float64 {
	if e.Total <= 0 {
		return -1
	}
	return float64(e.Bytes) / float64(e.Total)
}

// Observer 接收引擎事件，负责展示
type Observer interface {
	OnEvent(e Event)
}

// ObserverFunc 函数适配器
type ObserverFunc func(e Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// SlogObserver 把事件写入 slog
type SlogObserver struct {
	Logger *slog.Logger
}

func (o SlogObserver) OnEvent(e Event) {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}

	switch e.Kind {
	case EventChangeDetected:
		l.Info("change detected", "name", e.Name, "reason", e.Reason, "path", e.Path)
	case EventDownloadStarted:
		l.Info("syncing file", "name", e.Name, "id", e.ItemID, "reason", e.Reason)
	case EventDownloadProgress:
		if p := e.Progress(); p >= 0 {
			l.Info("download progress", "name", e.Name, "percent", int(p*100))
		} else {
			l.Debug("download progress", "name", e.Name, "received", humanize.Bytes(uint64(e.Bytes)))
		}
	case EventDownloaded:
		l.Info("file synced", "name", e.Name, "path", e.Path, "size", humanize.Bytes(uint64(e.Bytes)))
	case EventSkipped:
		l.Debug("up to date", "name", e.Name, "path", e.Path)
	case EventFailed:
		l.Error("sync failed", "name", e.Name, "id", e.ItemID, "path", e.Path, "err", e.Err)
	case EventFolderDone:
		l.Info("folder done", "path", e.Path, "succeeded", e.Succeeded, "total", e.Count)
	case EventLedgerSaved:
		l.Debug("ledger saved", "entries", e.Count)
	}
}
