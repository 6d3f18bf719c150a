// Package share 上传本地目录到云端并授权给指定用户
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"drivesync/internal/fs"
)

const (
	// DefaultParent 未指定父文件夹时上传到根目录
	DefaultParent = "root"
	DefaultRole   = "writer"

	// grantConcurrency 授权是元数据调用，不占用传输带宽
	grantConcurrency = 4
)

// Options 共享参数
type Options struct {
	LocalPath string
	ParentID  string
	Emails    []string
	Role      string
	// Exclude doublestar 模式，匹配相对于 LocalPath 的 "/" 分隔路径
	Exclude []string
}

// Result 上传与授权结果
type Result struct {
	FolderID string
	Link     string
	Uploaded int
	Folders  int
	Skipped  int
	Failed   int
	Granted  []string
}

// Sharer 上传器
type Sharer struct {
	remote fs.RemoteWriter
	local  fs.Local
}

func NewSharer(remote fs.RemoteWriter, local fs.Local) *Sharer {
	return &Sharer{remote: remote, local: local}
}

// Validate 检查参数，返回第一个错误
func (o *Options) Validate() error {
	if o.LocalPath == "" {
		return errors.New("local folder is required")
	}
	if o.Role == "" {
		o.Role = DefaultRole
	}
	if !fs.IsValidRole(o.Role) {
		return fmt.Errorf("invalid role %q (valid: %v)", o.Role, fs.ValidRoles)
	}
	if o.ParentID == "" {
		o.ParentID = DefaultParent
	}
	for _, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Share 上传 LocalPath 并把链接授权给所有 Emails
// 根文件夹创建失败时直接返回错误；单个文件失败只记录日志
func (s *Sharer) Share(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.local.Stat(opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("local folder: %w", err)
	}
	if !entry.IsDir {
		return nil, fmt.Errorf("local path %s is not a directory", opts.LocalPath)
	}

	res := &Result{}
	abs, err := filepath.Abs(opts.LocalPath)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(abs)

	slog.Info("creating remote folder", "name", name, "parent", opts.ParentID)
	folderID, err := s.remote.CreateFolder(ctx, name, opts.ParentID)
	if err != nil {
		return nil, fmt.Errorf("create root folder: %w", err)
	}
	res.FolderID = folderID
	res.Folders++
	res.Link = fs.FolderLink(folderID)

	s.uploadDir(ctx, abs, "", folderID, opts.Exclude, res)
	slog.Info("upload finished",
		"uploaded", res.Uploaded, "folders", res.Folders, "skipped", res.Skipped, "failed", res.Failed)

	granted, err := s.Grant(ctx, folderID, opts.Emails, opts.Role)
	res.Granted = granted
	return res, err
}

// uploadDir 递归上传 dir 下的所有条目到 parentID
// rel 为相对根目录的 "/" 分隔路径 (根目录为空串)
func (s *Sharer) uploadDir(ctx context.Context, dir, rel, parentID string, exclude []string, res *Result) {
	entries, err := s.local.ReadDir(dir)
	if err != nil {
		slog.Error("read directory failed", "path", dir, "err", err)
		res.Failed++
		return
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		name := filepath.Base(e.Path)
		itemRel := path.Join(rel, name)
		if excluded(itemRel, exclude) {
			slog.Debug("excluded", "path", itemRel)
			res.Skipped++
			continue
		}

		if e.IsDir {
			id, err := s.remote.CreateFolder(ctx, name, parentID)
			if err != nil {
				slog.Error("create folder failed", "path", itemRel, "err", err)
				res.Failed++
				continue
			}
			res.Folders++
			s.uploadDir(ctx, e.Path, itemRel, id, exclude, res)
			continue
		}

		if _, err := s.remote.UploadFile(ctx, e.Path, parentID); err != nil {
			slog.Error("upload failed", "path", itemRel, "err", err)
			res.Failed++
			continue
		}
		slog.Info("uploaded", "path", itemRel)
		res.Uploaded++
	}
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Grant 并发授权，返回成功的邮箱 (保持输入顺序)
func (s *Sharer) Grant(ctx context.Context, id string, emails []string, role string) ([]string, error) {
	ok := make([]bool, len(emails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(grantConcurrency)
	errs := make([]error, len(emails))
	for i, email := range emails {
		g.Go(func() error {
			if err := s.remote.SetPermission(gctx, id, email, role); err != nil {
				slog.Error("grant failed", "email", email, "role", role, "err", err)
				errs[i] = fmt.Errorf("grant %s to %s: %w", role, email, err)
				return nil
			}
			slog.Info("access granted", "email", email, "role", role)
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var granted []string
	for i, email := range emails {
		if ok[i] {
			granted = append(granted, email)
		}
	}
	return granted, errors.Join(errs...)
}
