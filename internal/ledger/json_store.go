package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// JSONStore 把账本保存为一个格式化的 JSON 对象
// 写入不是原子的：中途崩溃可能导致文件截断
type JSONStore struct {
	path string
}

// NewJSONStore 创建 JSON 文件存储
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path 返回文件路径
func (s *JSONStore) Path() string {
	return s.path
}

// Load 读取账本
// 文件损坏时返回空账本和 ErrCorrupt，由调用方决定是否继续
func (s *JSONStore) Load() (Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return New(), fmt.Errorf("read ledger %s: %w", s.path, err)
	}

	l := New()
	if err := json.Unmarshal(data, &l); err != nil {
		return New(), fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if l == nil {
		// 文件内容为 "null"
		l = New()
	}
	return l, nil
}

// Save 整体覆盖写入
func (s *JSONStore) Save(l Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write ledger %s: %w", s.path, err)
	}
	return nil
}

// Close JSON 存储无需释放资源
func (s *JSONStore) Close() error {
	return nil
}
