package sync

import (
	"time"

	"drivesync/internal/fs"
)

// ModTimeTolerance 云端与本地修改时间允许的最大差值
const ModTimeTolerance = 60 * time.Second

// naiveLayout 不带时区的时间按本地时区解析
const naiveLayout = "2006-01-02T15:04:05"

// parseRemoteTime 解析云端时间字符串，失败返回 false
func parseRemoteTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(naiveLayout, s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// isModified 决策函数: hasChanges 与 syncFolder 共用同一套判定
//  1. 本地不存在
//  2. 修改时间相差超过 ModTimeTolerance (时间无法解析时跳过这一项)
//  3. 大小不一致 (云端未报告大小按 0 处理)
func isModified(remote *fs.RemoteItem, local *fs.LocalEntry) (bool, Reason) {
	if local == nil {
		return true, ReasonMissing
	}

	if remoteTime, ok := parseRemoteTime(remote.ModifiedTime); ok {
		diff := remoteTime.Sub(local.ModTime)
		if diff < 0 {
			diff = -diff
		}
		if diff > ModTimeTolerance {
			return true, ReasonModified
		}
	}

	if local.Size != remote.Size {
		return true, ReasonSize
	}
	return false, ReasonNone
}
