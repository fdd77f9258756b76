package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxImageSize is the largest image accepted for upload (10 MiB).
const DefaultMaxImageSize int64 = 10 * 1024 * 1024

const fallbackMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// MimeTypeFor infers the MIME type from the file extension alone.
func MimeTypeFor(path string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return fallbackMimeType
}

// Supported reports whether the MIME type may be uploaded.
func Supported(mimeType string) bool {
	for _, known := range mimeTypes {
		if known == mimeType {
			return true
		}
	}
	return false
}

// ValidateImageFile lists every reason the file cannot be uploaded. A nil
// result means the file is acceptable. maxSize <= 0 selects the default.
func ValidateImageFile(path string, maxSize int64) []string {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}

	info, err := os.Stat(path)
	if err != nil {
		return []string{fmt.Sprintf("failed to read file: %v", err)}
	}

	var problems []string
	if !info.Mode().IsRegular() {
		problems = append(problems, "not a file")
	}
	if info.Size() == 0 {
		problems = append(problems, "file is empty")
	}
	if info.Size() > maxSize {
		problems = append(problems, fmt.Sprintf("file size (%d bytes) exceeds maximum (%d bytes)", info.Size(), maxSize))
	}
	if mime := MimeTypeFor(path); !Supported(mime) {
		problems = append(problems, "unsupported MIME type: "+mime)
	}
	return problems
}
