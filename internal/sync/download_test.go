package sync

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivesync/internal/fs"
)

func TestDownloadItemChunked(t *testing.T) {
	f := newFixture(t)
	f.engine.opts.ChunkSize = 4
	f.remote.AddFile(rootID, "a", "a.txt", []byte("0123456789"), remoteT)

	data, err := f.engine.DownloadItem(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))

	progress := f.rec.kinds(EventDownloadProgress)
	require.Len(t, progress, 3)
	assert.Equal(t, int64(4), progress[0].Bytes)
	assert.Equal(t, int64(8), progress[1].Bytes)
	assert.Equal(t, int64(10), progress[2].Bytes)
	assert.Equal(t, 1.0, progress[2].Progress())
}

func TestDownloadItemExportsNativeDocuments(t *testing.T) {
	f := newFixture(t)
	f.remote.AddNative(rootID, "sheet", "Budget", "application/vnd.google-apps.spreadsheet", []byte("xlsx"), remoteT)
	f.remote.AddNative(rootID, "doc", "Notes", "application/vnd.google-apps.document", []byte("pdf"), remoteT)

	data, err := f.engine.DownloadItem(context.Background(), "sheet")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(data))
	_, err = f.engine.DownloadItem(context.Background(), "doc")
	require.NoError(t, err)

	assert.Equal(t, fs.MimeXLSX, f.remote.Exports["sheet"])
	assert.Equal(t, fs.MimePDF, f.remote.Exports["doc"])

	// 导出长度未知
	progress := f.rec.kinds(EventDownloadProgress)
	require.NotEmpty(t, progress)
	assert.Equal(t, -1.0, progress[0].Progress())
}

func TestDownloadItemMetadataError(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.DownloadItem(context.Background(), "missing")
	assert.Error(t, err)
}

type failingReader struct {
	r   io.Reader
	err error
}

func (f *failingReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err == io.EOF {
		return n, f.err
	}
	return n, err
}

func TestReadChunksPropagatesMidStreamError(t *testing.T) {
	f := newFixture(t)
	f.engine.opts.ChunkSize = 2
	cut := errors.New("connection reset")

	_, err := f.engine.readChunks(&failingReader{r: strings.NewReader("abcde"), err: cut}, 10, &fs.RemoteItem{ID: "x"})
	assert.ErrorIs(t, err, cut)
}
