package interfaces

import "context"

// ImageReference links a local image mentioned in the Markdown body to the
// file on disk and, once uploaded, to the remote media asset. References
// live for a single publish run and are never persisted.
type ImageReference struct {
	// OriginalPath is the path exactly as written in the Markdown; it is the
	// key used when rewriting the body after upload.
	OriginalPath string
	AbsolutePath string
	MimeType     string
	Size         int64
	MediaID      string
	URL          string
}

// Uploaded reports whether the remote upload fields have been populated.
func (r *ImageReference) Uploaded() bool {
	return r != nil && r.URL != ""
}

// ImageResolver finds local image references in Markdown body text.
type ImageResolver interface {
	Resolve(ctx context.Context, body []byte, baseDir string) []*ImageReference
}
