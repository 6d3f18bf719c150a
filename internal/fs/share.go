package fs

import "slices"

// FolderLinkPrefix 网页端文件夹链接
const FolderLinkPrefix = "https://drive.google.com/drive/folders/"

// ValidRoles 可授予的共享权限
var ValidRoles = []string{"reader", "writer", "commenter", "owner"}

// IsValidRole 校验共享权限
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, role)
}

// FolderLink 返回文件夹的网页链接
func FolderLink(id string) string {
	return FolderLinkPrefix + id
}
