package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportMimeType(t *testing.T) {
	cases := map[string]string{
		"application/vnd.google-apps.document":     MimePDF,
		"application/vnd.google-apps.spreadsheet":  MimeXLSX,
		"application/vnd.google-apps.presentation": MimePDF,
		"application/vnd.google-apps.drawing":      MimePDF,
	}
	for in, want := range cases {
		assert.Equal(t, want, ExportMimeType(in), in)
	}
}

func TestRemoteItemClassification(t *testing.T) {
	folder := &RemoteItem{MimeType: FolderMimeType, Kind: KindOf(FolderMimeType)}
	assert.True(t, folder.IsFolder())
	assert.False(t, folder.IsNative())

	doc := &RemoteItem{MimeType: "application/vnd.google-apps.document", Kind: KindFile}
	assert.True(t, doc.IsNative())

	pdf := &RemoteItem{MimeType: "application/pdf", Kind: KindOf("application/pdf")}
	assert.False(t, pdf.IsFolder())
	assert.False(t, pdf.IsNative())
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("writer"))
	assert.True(t, IsValidRole("commenter"))
	assert.False(t, IsValidRole("admin"))
	assert.Equal(t, "https://drive.google.com/drive/folders/xyz", FolderLink("xyz"))
}
