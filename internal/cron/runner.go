package cron

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner 执行 crontab 命令
type Runner interface {
	// Run 以 stdin 为输入执行 crontab args...，返回标准输出
	Run(ctx context.Context, stdin string, args ...string) (string, error)
}

// ExitError 命令以非零状态退出
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("crontab exited with status %d: %s", e.Code, strings.TrimSpace(e.Stderr))
}

// ExecRunner 调用系统的 crontab
type ExecRunner struct {
	Binary string
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{Binary: "crontab"}
}

func (r *ExecRunner) Run(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return stdout.String(), &ExitError{Code: ee.ExitCode(), Stderr: stderr.String()}
		}
		return "", fmt.Errorf("run %s: %w", r.Binary, err)
	}
	return stdout.String(), nil
}
