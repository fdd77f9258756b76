package media

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

const fallbackUploadName = "image"

// ReplaceImageReferences rewrites `![alt](path)` to `![alt](url)` for every
// path present in replacements. Alt text and unrelated links are preserved.
func ReplaceImageReferences(body []byte, replacements map[string]string) []byte {
	if len(replacements) == 0 {
		return body
	}

	var out bytes.Buffer
	out.Grow(len(body))
	last := 0
	for link := range ScanImageLinks(body) {
		url, ok := replacements[link.Path]
		if !ok {
			continue
		}
		out.Write(body[last:link.Start])
		out.WriteString("![")
		out.WriteString(link.Alt)
		out.WriteString("](")
		out.WriteString(url)
		out.WriteString(")")
		last = link.End
	}
	if last == 0 {
		return body
	}
	out.Write(body[last:])
	return out.Bytes()
}

// Replacements collects path to URL pairs for every uploaded reference.
func Replacements(refs []*interfaces.ImageReference) map[string]string {
	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		if ref.Uploaded() {
			out[ref.OriginalPath] = ref.URL
		}
	}
	return out
}

// UploadFileName derives the multipart file name for a reference: the base
// name slugified, extension preserved in lower case.
func UploadFileName(ref *interfaces.ImageReference) string {
	source := ref.AbsolutePath
	if source == "" {
		source = ref.OriginalPath
	}
	base := filepath.Base(source)
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	name, err := slug.Normalize(stem)
	if err != nil || name == "" {
		name = fallbackUploadName
	}
	return name + ext
}
