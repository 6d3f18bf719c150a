package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry(name string, size int64) Entry {
	return Entry{
		Name:      name,
		Modified:  "2024-01-01T00:00:00.000Z",
		Size:      size,
		LocalPath: "/tmp/" + name,
		SyncedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestUpsertOverwritesByID(t *testing.T) {
	l := New()
	l.Upsert("id-a", sampleEntry("a.txt", 10))
	l.Upsert("id-a", sampleEntry("a.txt", 11))
	l.Upsert("id-b", sampleEntry("b.txt", 20))

	assert.Equal(t, 2, l.Len())
	e, ok := l.Get("id-a")
	require.True(t, ok)
	assert.Equal(t, int64(11), e.Size)
}

func TestJSONStoreMissingFileIsEmpty(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "sync_state.json"))
	l, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sync_state.json")
	s := NewJSONStore(path)

	l := New()
	l.Upsert("id-a", sampleEntry("a.txt", 10))
	require.NoError(t, s.Save(l))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// 两格缩进的扁平对象
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"id-a\": {"), string(raw))
	assert.Contains(t, string(raw), `"local_path"`)
	assert.Contains(t, string(raw), `"synced_at"`)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, l, loaded)
}

func TestJSONStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	l, err := NewJSONStore(path).Load()
	assert.True(t, errors.Is(err, ErrCorrupt))
	assert.NotNil(t, l)
	assert.Equal(t, 0, l.Len())
}

func TestBoltStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(BackendBolt, path)
	require.NoError(t, err)
	defer s.Close()

	empty, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	l := New()
	l.Upsert("id-a", sampleEntry("a.txt", 10))
	l.Upsert("id-b", sampleEntry("b.txt", 20))
	require.NoError(t, s.Save(l))

	l.Upsert("id-a", sampleEntry("a.txt", 12))
	require.NoError(t, s.Save(l))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, int64(12), loaded["id-a"].Size)
	assert.True(t, loaded["id-b"].SyncedAt.Equal(l["id-b"].SyncedAt))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("sqlite", "x")
	assert.Error(t, err)
}
