package cron

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Manager 读写当前用户的 crontab
type Manager struct {
	runner Runner
}

func NewManager(runner Runner) *Manager {
	return &Manager{runner: runner}
}

// List 返回当前 crontab 内容；没有 crontab 时返回空串
func (m *Manager) List(ctx context.Context) (string, error) {
	out, err := m.runner.Run(ctx, "", "-l")
	if err != nil {
		// "no crontab for user" 以非零状态退出
		var ee *ExitError
		if errors.As(err, &ee) {
			slog.Debug("crontab -l returned non-zero", "err", err)
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Add 追加一行，已存在时不做任何修改
func (m *Manager) Add(ctx context.Context, line string) (bool, error) {
	current, err := m.List(ctx)
	if err != nil {
		return false, err
	}
	for _, l := range splitLines(current) {
		if l == line {
			return false, nil
		}
	}

	next := line
	if current != "" {
		next = current + "\n" + line
	}
	if _, err := m.runner.Run(ctx, next+"\n", "-"); err != nil {
		return false, err
	}
	return true, nil
}

// Remove 删除 folder/email 对应的共享任务，返回被删除的行
// 删除后为空时移除整个 crontab
func (m *Manager) Remove(ctx context.Context, folder, email string) ([]string, error) {
	current, err := m.List(ctx)
	if err != nil || current == "" {
		return nil, err
	}

	var kept, removed []string
	for _, l := range splitLines(current) {
		if matches(l, folder, email) {
			removed = append(removed, l)
			continue
		}
		kept = append(kept, l)
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if strings.TrimSpace(strings.Join(kept, "")) == "" {
		_, err = m.runner.Run(ctx, "", "-r")
	} else {
		_, err = m.runner.Run(ctx, strings.Join(kept, "\n")+"\n", "-")
	}
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
