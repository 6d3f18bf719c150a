package ledger

import (
	"errors"
	"fmt"
)

const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// ErrCorrupt 账本文件存在但无法解析
var ErrCorrupt = errors.New("ledger is corrupt")

// Store 账本持久化端口
type Store interface {
	// Load 读取完整账本，文件不存在时返回空账本
	Load() (Ledger, error)
	// Save 整体覆盖写入
	Save(l Ledger) error
	Close() error
}

// Open 按后端类型打开账本存储
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStore(path), nil
	case BackendBolt:
		return NewBoltStore(path)
	default:
		return nil, fmt.Errorf("unknown ledger backend: %q", backend)
	}
}
