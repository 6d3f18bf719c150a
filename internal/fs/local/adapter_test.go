package local

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileRestoresModTime(t *testing.T) {
	a := NewAdapter()
	path := filepath.Join(t.TempDir(), "nested", "dir", "a.txt")
	modTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, a.WriteFile(path, []byte("0123456789"), modTime))

	entry, err := a.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), entry.Size)
	assert.True(t, entry.ModTime.Equal(modTime), "got %s", entry.ModTime)
	assert.False(t, entry.IsDir)
}

func TestWriteFileZeroModTimeKeepsNow(t *testing.T) {
	a := NewAdapter()
	path := filepath.Join(t.TempDir(), "b.txt")
	before := time.Now().Add(-time.Minute)

	require.NoError(t, a.WriteFile(path, []byte("x"), time.Time{}))

	entry, err := a.Stat(path)
	require.NoError(t, err)
	assert.True(t, entry.ModTime.After(before))
}

func TestStatMissing(t *testing.T) {
	a := NewAdapter()
	_, err := a.Stat(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadDirAndHash(t *testing.T) {
	a := NewAdapter()
	root := t.TempDir()
	require.NoError(t, a.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), time.Time{}))
	require.NoError(t, a.MkdirAll(filepath.Join(root, "sub")))

	entries, err := a.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(root, "a.txt"), entries[0].Path)
	assert.True(t, entries[1].IsDir)

	sum, err := a.Hash(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sum)
}
