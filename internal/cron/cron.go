// Package cron 管理定时执行 share 命令的 crontab 条目
package cron

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	DefaultInterval = 2
	// LogFile cron 输出追加到工作目录下
	LogFile = "cron.log"

	shareMarker = " share "
)

// Job 一条定时共享任务
type Job struct {
	Folder   string
	Email    string
	Role     string
	Interval int // 分钟

	WorkDir string
	Binary  string
}

// Schedule 把分钟间隔转换为 cron 时间表达式
func Schedule(minutes int) (string, error) {
	switch {
	case minutes < 1 || minutes > 59:
		return "", fmt.Errorf("interval must be between 1 and 59 minutes, got %d", minutes)
	case minutes == 1:
		return "* * * * *", nil
	default:
		return fmt.Sprintf("*/%d * * * *", minutes), nil
	}
}

// Line 生成完整的 crontab 行
func (j Job) Line() (string, error) {
	if j.Folder == "" || j.Email == "" {
		return "", errors.New("folder and email are required")
	}
	if j.WorkDir == "" || j.Binary == "" {
		return "", errors.New("work dir and binary are required")
	}
	schedule, err := Schedule(j.Interval)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s cd %s && %s share --folder %s --email %s --role %s >> %s 2>&1",
		schedule,
		quote(j.WorkDir),
		quote(j.Binary),
		quote(j.Folder),
		quote(j.Email),
		quote(j.Role),
		quote(filepath.Join(j.WorkDir, LogFile)),
	), nil
}

// quote 只在需要时加单引号
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]#~%") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// matches 判断某一行是否为 folder/email 对应的共享任务
func matches(line, folder, email string) bool {
	return strings.Contains(line, folder) &&
		strings.Contains(line, email) &&
		strings.Contains(line, shareMarker)
}
