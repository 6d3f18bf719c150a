package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"
)

const (
	// BucketName 是数据库中的“表名”
	BucketName = "Ledger"
)

// BoltStore 基于 BoltDB 的账本存储
type BoltStore struct {
	conn *bbolt.DB
}

// NewBoltStore 初始化并打开数据库
func NewBoltStore(dbPath string) (*BoltStore, error) {
	// Timeout 选项防止两个进程同时打开同一个数据库导致死锁
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt ledger: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{conn: db}, nil
}

// Close 关闭数据库连接
func (s *BoltStore) Close() error {
	return s.conn.Close()
}

// Load 读取全部记录
func (s *BoltStore) Load() (Ledger, error) {
	result := New()

	err := s.conn.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		return b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("%w: key=%s: %v", ErrCorrupt, string(k), err)
			}
			result[string(k)] = e
			return nil
		})
	})
	if err != nil {
		return New(), err
	}
	return result, nil
}

// Save 在一个事务内重建 bucket 并写入全部记录
func (s *BoltStore) Save(l Ledger) error {
	return s.conn.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketName)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket([]byte(BucketName))
		if err != nil {
			return err
		}
		for id, e := range l {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshal entry %s: %w", id, err)
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}
