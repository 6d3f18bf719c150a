package cron

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner 模拟 crontab: 内容保存在内存中
type fakeRunner struct {
	table   string
	exists  bool
	calls   [][]string
	failErr error
}

func (f *fakeRunner) Run(ctx context.Context, stdin string, args ...string) (string, error) {
	f.calls = append(f.calls, args)
	if f.failErr != nil {
		return "", f.failErr
	}
	switch args[0] {
	case "-l":
		if !f.exists {
			return "", &ExitError{Code: 1, Stderr: "no crontab for pi"}
		}
		return f.table, nil
	case "-":
		f.table, f.exists = stdin, true
	case "-r":
		f.table, f.exists = "", false
	}
	return "", nil
}

func testJob() Job {
	return Job{
		Folder:   "/home/pi/photos",
		Email:    "user@example.com",
		Role:     "writer",
		Interval: 2,
		WorkDir:  "/home/pi",
		Binary:   "/usr/local/bin/drivesync",
	}
}

func TestSchedule(t *testing.T) {
	s, err := Schedule(1)
	require.NoError(t, err)
	assert.Equal(t, "* * * * *", s)

	s, err = Schedule(15)
	require.NoError(t, err)
	assert.Equal(t, "*/15 * * * *", s)

	_, err = Schedule(0)
	assert.Error(t, err)
	_, err = Schedule(60)
	assert.Error(t, err)
}

func TestJobLine(t *testing.T) {
	line, err := testJob().Line()
	require.NoError(t, err)
	assert.Equal(t,
		"*/2 * * * * cd /home/pi && /usr/local/bin/drivesync share --folder /home/pi/photos "+
			"--email user@example.com --role writer >> /home/pi/cron.log 2>&1",
		line)

	j := testJob()
	j.Folder = "/home/pi/My Photos"
	line, err = j.Line()
	require.NoError(t, err)
	assert.Contains(t, line, "--folder '/home/pi/My Photos'")

	j.Email = ""
	_, err = j.Line()
	assert.Error(t, err)
}

func TestManagerAddIsIdempotent(t *testing.T) {
	r := &fakeRunner{exists: true, table: "0 3 * * * /usr/bin/backup\n"}
	m := NewManager(r)
	ctx := context.Background()
	line, err := testJob().Line()
	require.NoError(t, err)

	added, err := m.Add(ctx, line)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "0 3 * * * /usr/bin/backup\n"+line+"\n", r.table)

	added, err = m.Add(ctx, line)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, strings.Count(r.table, line))
}

func TestManagerAddWithoutExistingCrontab(t *testing.T) {
	r := &fakeRunner{}
	line, _ := testJob().Line()

	added, err := NewManager(r).Add(context.Background(), line)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, line+"\n", r.table)
}

func TestManagerRemove(t *testing.T) {
	line, _ := testJob().Line()
	r := &fakeRunner{exists: true, table: "0 3 * * * /usr/bin/backup\n" + line + "\n"}
	m := NewManager(r)

	removed, err := m.Remove(context.Background(), "/home/pi/photos", "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{line}, removed)
	assert.Equal(t, "0 3 * * * /usr/bin/backup\n", r.table)

	removed, err = m.Remove(context.Background(), "/home/pi/photos", "user@example.com")
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestManagerRemoveLastEntryDropsCrontab(t *testing.T) {
	line, _ := testJob().Line()
	r := &fakeRunner{exists: true, table: line + "\n"}

	_, err := NewManager(r).Remove(context.Background(), "/home/pi/photos", "user@example.com")
	require.NoError(t, err)
	assert.False(t, r.exists)
	assert.Equal(t, []string{"-r"}, r.calls[len(r.calls)-1])
}

func TestManagerListErrors(t *testing.T) {
	m := NewManager(&fakeRunner{})
	out, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)

	boom := errors.New("crontab: not found")
	_, err = NewManager(&fakeRunner{failErr: boom}).List(context.Background())
	assert.ErrorIs(t, err, boom)
}
