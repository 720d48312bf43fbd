package access

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/omnisent/omnisent/internal/client/models"
	"github.com/omnisent/omnisent/internal/common"
)

// blockedExtensions are refused for every role. The backend keeps its own
// copy of this list and re-validates server-side.
var blockedExtensions = []string{"exe", "bat", "cmd", "scr", "pif", "com"}

// extensionCategories mirrors the backend's listing filters.
var extensionCategories = map[string][]string{
	"images":    {"jpg", "jpeg", "png", "gif", "svg", "webp", "bmp"},
	"documents": {"pdf", "doc", "docx", "txt", "rtf", "odt", "xls", "xlsx", "ppt", "pptx"},
	"videos":    {"mp4", "avi", "mov", "webm", "mkv", "flv", "wmv"},
	"music":     {"mp3", "wav", "ogg", "flac", "aac", "m4a"},
	"archives":  {"zip", "rar", "7z", "tar", "gz", "bz2"},
	"code":      {"js", "ts", "jsx", "tsx", "html", "css", "json", "xml", "py", "java", "cpp", "go"},
}

// Ext extracts the lowercase extension of a filename without the dot.
func Ext(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// CategoryExtensions returns the extensions of a listing category, or nil
// for an unknown category.
func CategoryExtensions(category string) []string {
	return extensionCategories[category]
}

// ExtensionAllowed reports whether the role may upload a file with the given
// extension. The wildcard "*" admits any type, but the blocked list wins for
// every role.
func ExtensionAllowed(role models.Role, ext string) bool {
	ext = strings.ToLower(ext)
	for _, blocked := range blockedExtensions {
		if ext == blocked {
			return false
		}
	}
	for _, allowed := range LimitsFor(role).AllowedExtensions {
		if allowed == "*" || allowed == ext {
			return true
		}
	}
	return false
}

// ValidateUpload checks a candidate upload against the role's limits before
// any network request is issued. Advisory pre-flight only: the backend
// re-validates. Errors wrap the common sentinels and carry a human-readable
// message.
func ValidateUpload(role models.Role, filename string, size int64) error {
	ext := Ext(filename)
	if !ExtensionAllowed(role, ext) {
		return fmt.Errorf("%w: .%s", common.ErrFileTypeNotAllowed, ext)
	}

	limits := LimitsFor(role)
	if max := limits.MaxUploadBytes(); max > 0 && size > max {
		return fmt.Errorf("%w: %d bytes exceeds the %d MB limit",
			common.ErrFileTooLarge, size, limits.MaxUploadSizeMB)
	}
	return nil
}
