package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivesync/internal/ledger"
)

func TestWatcherPassSkipsWhenUnchanged(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile(rootID, "a", "a.txt", []byte("abc"), remoteT)
	l := ledger.New()
	w := NewWatcher(f.engine, l, WatchOptions{FolderID: rootID, LocalPath: f.dir})
	ctx := context.Background()

	synced, err := w.Pass(ctx)
	require.NoError(t, err)
	assert.True(t, synced)
	assert.Equal(t, 1, l.Len())

	synced, err = w.Pass(ctx)
	require.NoError(t, err)
	assert.False(t, synced)
	assert.Equal(t, 1, f.remote.Downloads)
}

func TestWatcherDefaults(t *testing.T) {
	w := NewWatcher(nil, nil, WatchOptions{})
	assert.Equal(t, DefaultInterval, w.opts.Interval)
	assert.NotNil(t, w.ledger)
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.remote.AddFile(rootID, "a", "a.txt", []byte("abc"), remoteT)
	w := NewWatcher(f.engine, ledger.New(), WatchOptions{FolderID: rootID, LocalPath: f.dir, Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(f.dir, "a.txt"))
		return err == nil
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
