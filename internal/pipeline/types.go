package pipeline

import (
	"time"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// Request describes a single publish run.
type Request struct {
	FilePath string
	// Status is the requested end state. Empty means draft.
	Status interfaces.ArticleStatus
}

// ImageOutcome records what happened to one local image during a run.
type ImageOutcome struct {
	Reference *interfaces.ImageReference
	MediaID   string
	URL       string
	Err       error
}

// Uploaded reports whether the image reached the platform.
func (o ImageOutcome) Uploaded() bool {
	return o.Err == nil && o.URL != ""
}

// Result summarises a publish run. HistoryErr is set when the article was
// created but the local record could not be written; the publish stands.
type Result struct {
	RunID       string
	DocumentKey string
	SourcePath  string
	Title       string

	ArticleID string
	Status    interfaces.ArticleStatus
	CreatedAt time.Time

	Images       []ImageOutcome
	Warnings     []string
	HistoryErr   error
	Stats        *interfaces.HistoryStats
	RequestStats interfaces.RequestStats
}

// UploadedImages counts images that were uploaded successfully.
func (r *Result) UploadedImages() int {
	count := 0
	for _, outcome := range r.Images {
		if outcome.Uploaded() {
			count++
		}
	}
	return count
}

// FailedImages counts images whose upload failed.
func (r *Result) FailedImages() int {
	return len(r.Images) - r.UploadedImages()
}

func (r *Result) warn(message string) {
	r.Warnings = append(r.Warnings, message)
}
