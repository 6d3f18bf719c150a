package local

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"drivesync/internal/fs"
)

// Adapter 本地文件系统适配器
// 直接操作系统路径，目录结构由调用方按名字拼接
type Adapter struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewAdapter 创建一个新的本地适配器
func NewAdapter() *Adapter {
	return &Adapter{dirPerm: 0755, filePerm: 0644}
}

// calculateMD5 计算本地文件的 MD5 值
func calculateMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Stat 获取单个文件状态 (不计算 Hash)
func (a *Adapter) Stat(path string) (*fs.LocalEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return toEntry(path, info), nil
}

// MkdirAll 确保目录存在
func (a *Adapter) MkdirAll(path string) error {
	if err := os.MkdirAll(path, a.dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// WriteFile 将完整内容写入本地文件
// modTime: 用于恢复文件的修改时间，保持和云端一致
func (a *Adapter) WriteFile(path string, data []byte, modTime time.Time) error {
	// 1. 确保父目录存在
	if err := os.MkdirAll(filepath.Dir(path), a.dirPerm); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}

	// 2. 写入数据 (非原子写入，覆盖已有文件)
	if err := os.WriteFile(path, data, a.filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	// 3. 恢复修改时间 (变更检测依赖这个时间)
	if !modTime.IsZero() {
		if err := os.Chtimes(path, time.Now(), modTime); err != nil {
			slog.Warn("failed to set modification time", "path", path, "err", err)
		}
	}
	return nil
}

// ReadDir 列出目录的直接子条目，按名字排序
func (a *Adapter) ReadDir(path string) ([]*fs.LocalEntry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	entries := make([]*fs.LocalEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		full := filepath.Join(path, de.Name())
		info, err := de.Info()
		if err != nil {
			// 扫描期间被删除的文件直接跳过
			slog.Debug("skip entry", "path", full, "err", err)
			continue
		}
		entries = append(entries, toEntry(full, info))
	}
	return entries, nil
}

// Hash 计算文件 MD5
func (a *Adapter) Hash(path string) (string, error) {
	sum, err := calculateMD5(path)
	if err != nil {
		return "", fmt.Errorf("md5 %s: %w", path, err)
	}
	return sum, nil
}

func toEntry(path string, info os.FileInfo) *fs.LocalEntry {
	return &fs.LocalEntry{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
}

var _ fs.Local = (*Adapter)(nil)
