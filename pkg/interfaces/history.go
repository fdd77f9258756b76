package interfaces

import (
	"context"
	"time"
)

// HistoryRecord links a local source file to the remote article created from it.
// ID is the remote article id and the join key between local and remote state.
type HistoryRecord struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	SourceFileName string        `json:"sourceFileName"`
	SourceFilePath string        `json:"sourceFilePath"`
	PostedAt       time.Time     `json:"postedAt"`
	NoteURL        string        `json:"noteUrl,omitempty"`
	Status         ArticleStatus `json:"status"`
	MediaIDs       []string      `json:"mediaIds,omitempty"`
}

// HistoryStats aggregates the publication history.
type HistoryStats struct {
	TotalPosts     int
	DraftCount     int
	PublishedCount int
	LastPostDate   *time.Time
}

// HistoryRepository stores publication records keyed by remote article id.
// The JSON file implementation is one variant; alternative backends are
// selected at construction time.
type HistoryRepository interface {
	FindAll(ctx context.Context) ([]HistoryRecord, error)
	FindByID(ctx context.Context, id string) (*HistoryRecord, error)
	FindBySourcePath(ctx context.Context, path string) ([]HistoryRecord, error)
	// Save inserts the record or replaces the one with the same id in place.
	Save(ctx context.Context, record HistoryRecord) error
	SaveMultiple(ctx context.Context, records []HistoryRecord) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context) (bool, error)
	Stats(ctx context.Context) (HistoryStats, error)
}
