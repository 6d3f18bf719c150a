// Package memory 提供一个内存实现的远端，用于测试
package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"drivesync/internal/fs"
)

// ErrNotFound 条目不存在
var ErrNotFound = errors.New("item not found")

// Permission 一次授权记录
type Permission struct {
	ItemID string
	Email  string
	Role   string
}

// Remote 线程安全的内存远端
type Remote struct {
	// PageSize 每页条目数，<=0 时一次返回全部
	PageSize int

	mu       sync.Mutex
	items    map[string]*fs.RemoteItem
	children map[string][]string
	content  map[string][]byte
	failures map[string]error
	perms    []Permission
	nextID   int

	Downloads int
	Exports   map[string]string // id -> 导出格式
	ListCalls int
}

func NewRemote() *Remote {
	return &Remote{
		items:    make(map[string]*fs.RemoteItem),
		children: make(map[string][]string),
		content:  make(map[string][]byte),
		failures: make(map[string]error),
		Exports:  make(map[string]string),
	}
}

// AddFolder 在 parentID 下创建文件夹
func (r *Remote) AddFolder(parentID, id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(&fs.RemoteItem{ID: id, Name: name, Kind: fs.KindFolder, MimeType: fs.FolderMimeType, ParentID: parentID})
}

// AddFile 在 parentID 下创建普通文件，大小与 MD5 由内容决定
func (r *Remote) AddFile(parentID, id, name string, data []byte, modified string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(&fs.RemoteItem{
		ID:           id,
		Name:         name,
		Kind:         fs.KindFile,
		MimeType:     "application/octet-stream",
		Size:         int64(len(data)),
		ModifiedTime: modified,
		ParentID:     parentID,
		MD5:          md5sum(data),
	})
	r.content[id] = data
}

// AddNative 原生文档: 没有大小与 MD5，只能导出
func (r *Remote) AddNative(parentID, id, name, mimeType string, exported []byte, modified string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(&fs.RemoteItem{ID: id, Name: name, Kind: fs.KindFile, MimeType: mimeType, ModifiedTime: modified, ParentID: parentID})
	r.content[id] = exported
}

// Update 修改已有文件的内容和修改时间
func (r *Remote) Update(id string, data []byte, modified string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item := r.items[id]
	item.Size = int64(len(data))
	item.ModifiedTime = modified
	item.MD5 = md5sum(data)
	r.content[id] = data
}

// Fail 让针对 id 的后续调用返回 err
func (r *Remote) Fail(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[id] = err
}

// Item 查询条目
func (r *Remote) Item(id string) (*fs.RemoteItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return item, ok
}

// Children 返回文件夹下的条目名
func (r *Remote) Children(folderID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.children[folderID]))
	for _, id := range r.children[folderID] {
		names = append(names, r.items[id].Name)
	}
	return names
}

// Content 返回文件内容
func (r *Remote) Content(id string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content[id]
}

// Permissions 返回全部授权记录
func (r *Remote) Permissions() []Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Permission(nil), r.perms...)
}

func (r *Remote) add(item *fs.RemoteItem) {
	r.items[item.ID] = item
	r.children[item.ParentID] = append(r.children[item.ParentID], item.ID)
}

func (r *Remote) GetMetadata(ctx context.Context, id string) (*fs.RemoteItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures[id]; err != nil {
		return nil, err
	}
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *item
	return &cp, nil
}

func (r *Remote) ListChildren(ctx context.Context, folderID, pageToken string) ([]*fs.RemoteItem, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ListCalls++
	if err := r.failures[folderID]; err != nil {
		return nil, "", err
	}

	ids := r.children[folderID]
	start := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("bad page token %q", pageToken)
		}
		start = n
	}
	end := len(ids)
	if r.PageSize > 0 && start+r.PageSize < end {
		end = start + r.PageSize
	}

	page := make([]*fs.RemoteItem, 0, end-start)
	for _, id := range ids[start:end] {
		cp := *r.items[id]
		page = append(page, &cp)
	}
	next := ""
	if end < len(ids) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

func (r *Remote) Download(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures[id]; err != nil {
		return nil, 0, err
	}
	data, ok := r.content[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.Downloads++
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (r *Remote) Export(ctx context.Context, id, mimeType string) (io.ReadCloser, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures[id]; err != nil {
		return nil, 0, err
	}
	data, ok := r.content[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.Downloads++
	r.Exports[id] = mimeType
	// 导出接口不返回长度
	return io.NopCloser(bytes.NewReader(data)), -1, nil
}

func (r *Remote) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures[name]; err != nil {
		return "", err
	}
	id := r.newID()
	r.add(&fs.RemoteItem{ID: id, Name: name, Kind: fs.KindFolder, MimeType: fs.FolderMimeType, ParentID: parentID})
	return id, nil
}

func (r *Remote) UploadFile(ctx context.Context, localPath, parentID string) (string, error) {
	name := filepath.Base(localPath)
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures[name]; err != nil {
		return "", err
	}
	id := r.newID()
	r.add(&fs.RemoteItem{
		ID:       id,
		Name:     name,
		Kind:     fs.KindFile,
		Size:     int64(len(data)),
		ParentID: parentID,
		MD5:      md5sum(data),
	})
	r.content[id] = data
	return id, nil
}

func (r *Remote) SetPermission(ctx context.Context, id, email, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failures[email]; err != nil {
		return err
	}
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.perms = append(r.perms, Permission{ItemID: id, Email: email, Role: role})
	return nil
}

func (r *Remote) newID() string {
	r.nextID++
	return fmt.Sprintf("mem-%d", r.nextID)
}

func md5sum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

var _ fs.Remote = (*Remote)(nil)
