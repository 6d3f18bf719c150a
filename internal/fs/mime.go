package fs

import "strings"

const (
	// FolderMimeType 云端文件夹的 MIME 类型
	FolderMimeType = "application/vnd.google-apps.folder"

	nativePrefix = "application/vnd.google-apps."

	MimePDF  = "application/pdf"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// IsNativeMimeType 判断是否为云端原生文档
func IsNativeMimeType(mimeType string) bool {
	return strings.HasPrefix(mimeType, nativePrefix) && mimeType != FolderMimeType
}

// ExportMimeType 返回原生文档的导出格式
// 表格导出为 xlsx，其余 (文档、演示文稿、未知类型) 一律导出为 PDF
func ExportMimeType(mimeType string) string {
	if strings.Contains(mimeType, "spreadsheet") {
		return MimeXLSX
	}
	return MimePDF
}

// KindOf 根据 MIME 类型判断条目类型
func KindOf(mimeType string) Kind {
	if mimeType == FolderMimeType {
		return KindFolder
	}
	return KindFile
}
