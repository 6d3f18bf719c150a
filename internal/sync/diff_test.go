package sync

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"drivesync/internal/fs"
)

func TestIsModified(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	remote := &fs.RemoteItem{Size: 10, ModifiedTime: "2024-03-01T12:00:00.000Z"}

	tests := []struct {
		name   string
		local  *fs.LocalEntry
		want   bool
		reason Reason
	}{
		{"missing", nil, true, ReasonMissing},
		{"identical", &fs.LocalEntry{Size: 10, ModTime: base}, false, ReasonNone},
		{"within tolerance", &fs.LocalEntry{Size: 10, ModTime: base.Add(-59 * time.Second)}, false, ReasonNone},
		{"exactly at tolerance", &fs.LocalEntry{Size: 10, ModTime: base.Add(60 * time.Second)}, false, ReasonNone},
		{"beyond tolerance", &fs.LocalEntry{Size: 10, ModTime: base.Add(61 * time.Second)}, true, ReasonModified},
		{"size differs", &fs.LocalEntry{Size: 11, ModTime: base}, true, ReasonSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := isModified(remote, tt.local)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestIsModifiedUnparseableTimeFallsBackToSize(t *testing.T) {
	remote := &fs.RemoteItem{Size: 0, ModifiedTime: "yesterday"}
	local := &fs.LocalEntry{Size: 0, ModTime: time.Unix(0, 0)}

	changed, _ := isModified(remote, local)
	assert.False(t, changed)

	local.Size = 5
	changed, reason := isModified(remote, local)
	assert.True(t, changed)
	assert.Equal(t, ReasonSize, reason)
}

func TestParseRemoteTime(t *testing.T) {
	ts, ok := parseRemoteTime("2024-03-01T12:00:00.123Z")
	assert.True(t, ok)
	assert.Equal(t, 123*time.Millisecond, time.Duration(ts.Nanosecond()))

	ts, ok = parseRemoteTime("2024-03-01T12:00:00")
	assert.True(t, ok)
	assert.Equal(t, time.Local, ts.Location())

	_, ok = parseRemoteTime("")
	assert.False(t, ok)
}

func TestLocalTarget(t *testing.T) {
	got, err := localTarget("/mirror", "a.txt")
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("/mirror", "a.txt"), got)

	for _, name := range []string{"", ".", "..", "../x", "a/b", `a\b`, "/abs"} {
		_, err := localTarget("/mirror", name)
		assert.ErrorIs(t, err, ErrUnsafeName, name)
	}
}
