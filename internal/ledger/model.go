package ledger

import "time"

// Entry 代表一个云端文件最近一次下载完成时的快照
// 以云端 ID 为 key 存储，序列化为 JSON
type Entry struct {
	Name string `json:"name"`

	// 云端返回的原始修改时间字符串
	Modified string `json:"modified"`

	// 云端报告的大小 (未报告时为 0)
	Size int64 `json:"size"`

	LocalPath string    `json:"local_path"`
	SyncedAt  time.Time `json:"synced_at"`
}

// Ledger 云端 ID -> 快照
// map 本身是引用类型，引擎直接修改调用方持有的 Ledger
type Ledger map[string]Entry

// New 返回空账本
func New() Ledger {
	return make(Ledger)
}

// Upsert 新增或覆盖一条记录
func (l Ledger) Upsert(id string, e Entry) {
	l[id] = e
}

// Get 查询记录
func (l Ledger) Get(id string) (Entry, bool) {
	e, ok := l[id]
	return e, ok
}

// Len 记录数
func (l Ledger) Len() int {
	return len(l)
}
