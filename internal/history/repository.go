package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// FormatVersion is written to files created by this package.
const FormatVersion = "1.0.0"

const (
	historyCorruptCode = "HISTORY_CORRUPT"
	historyReadCode    = "HISTORY_READ_FAILED"
	historyWriteCode   = "HISTORY_WRITE_FAILED"

	lastUpdatedLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ErrHistoryCorrupt reports a history file that is not valid JSON or does
// not have the expected shape.
var ErrHistoryCorrupt = errors.New("history: file is corrupt")

type historyFile struct {
	Version     string                     `json:"version"`
	Records     []interfaces.HistoryRecord `json:"records"`
	LastUpdated string                     `json:"lastUpdated"`
}

// Option customises a JSONFileRepository.
type Option func(*JSONFileRepository)

// WithClock sets the time source used for lastUpdated.
func WithClock(now func() time.Time) Option {
	return func(r *JSONFileRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *JSONFileRepository) {
		r.logger = logging.Ensure(logger)
	}
}

// JSONFileRepository keeps the whole history in one JSON document. Every
// mutation reads the file, applies the change and replaces the file.
// Concurrent processes writing the same file can lose updates.
type JSONFileRepository struct {
	path   string
	now    func() time.Time
	logger interfaces.Logger
	mu     sync.Mutex
}

var _ interfaces.HistoryRepository = (*JSONFileRepository)(nil)

// NewJSONFileRepository returns a repository backed by path. The file is
// not touched until the first call.
func NewJSONFileRepository(path string, opts ...Option) *JSONFileRepository {
	r := &JSONFileRepository{
		path:   path,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the backing file location.
func (r *JSONFileRepository) Path() string { return r.path }

func (r *JSONFileRepository) FindAll(ctx context.Context) ([]interfaces.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.read()
	if err != nil {
		return nil, err
	}
	return file.Records, nil
}

// FindByID returns nil without error when no record has the id.
func (r *JSONFileRepository) FindByID(ctx context.Context, id string) (*interfaces.HistoryRecord, error) {
	records, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			record := records[i]
			return &record, nil
		}
	}
	return nil, nil
}

func (r *JSONFileRepository) FindBySourcePath(ctx context.Context, path string) ([]interfaces.HistoryRecord, error) {
	records, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	target := filepath.Clean(path)
	var out []interfaces.HistoryRecord
	for _, record := range records {
		if record.SourceFilePath != "" && filepath.Clean(record.SourceFilePath) == target {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *JSONFileRepository) Save(ctx context.Context, record interfaces.HistoryRecord) error {
	return r.SaveMultiple(ctx, []interfaces.HistoryRecord{record})
}

// SaveMultiple upserts every record: an existing id is replaced in place,
// a new id is appended. PostedAt is stored in UTC without a monotonic reading.
func (r *JSONFileRepository) SaveMultiple(ctx context.Context, records []interfaces.HistoryRecord) error {
	return r.mutate(ctx, func(existing []interfaces.HistoryRecord) []interfaces.HistoryRecord {
		for _, record := range records {
			record.PostedAt = record.PostedAt.Round(0).UTC()
			replaced := false
			for i := range existing {
				if existing[i].ID == record.ID {
					existing[i] = record
					replaced = true
					break
				}
			}
			if !replaced {
				existing = append(existing, record)
			}
		}
		return existing
	})
}

// Delete removes the record with id. Unknown ids still rewrite the file.
func (r *JSONFileRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(ctx, func(existing []interfaces.HistoryRecord) []interfaces.HistoryRecord {
		kept := existing[:0]
		for _, record := range existing {
			if record.ID != id {
				kept = append(kept, record)
			}
		}
		return kept
	})
}

// Exists reports whether a readable history file is present.
func (r *JSONFileRepository) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, readError(err)
	}
	if _, err := r.read(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *JSONFileRepository) Stats(ctx context.Context) (interfaces.HistoryStats, error) {
	records, err := r.FindAll(ctx)
	if err != nil {
		return interfaces.HistoryStats{}, err
	}
	return ComputeStats(records), nil
}

// ComputeStats aggregates records by status and finds the latest post.
func ComputeStats(records []interfaces.HistoryRecord) interfaces.HistoryStats {
	stats := interfaces.HistoryStats{TotalPosts: len(records)}
	var latest time.Time
	for _, record := range records {
		switch record.Status {
		case interfaces.StatusDraft:
			stats.DraftCount++
		case interfaces.StatusPublished:
			stats.PublishedCount++
		}
		if record.PostedAt.After(latest) {
			latest = record.PostedAt
		}
	}
	if !latest.IsZero() {
		stats.LastPostDate = &latest
	}
	return stats
}

func (r *JSONFileRepository) mutate(ctx context.Context, apply func([]interfaces.HistoryRecord) []interfaces.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.read()
	if err != nil {
		return err
	}
	file.Records = apply(file.Records)
	return r.write(file)
}

// read loads the file; a missing file is an empty history.
func (r *JSONFileRepository) read() (historyFile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return historyFile{Version: FormatVersion, Records: []interfaces.HistoryRecord{}}, nil
		}
		return historyFile{}, readError(err)
	}

	if err := checkShape(data); err != nil {
		r.logger.Error("history.read.corrupt", "path", r.path, "error", err)
		return historyFile{}, corruptError(err)
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		r.logger.Error("history.read.corrupt", "path", r.path, "error", err)
		return historyFile{}, corruptError(err)
	}
	if file.Version == "" {
		file.Version = FormatVersion
	}
	if file.Records == nil {
		file.Records = []interfaces.HistoryRecord{}
	}
	return file, nil
}

// write replaces the file through a temp file and rename.
func (r *JSONFileRepository) write(file historyFile) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return writeError(err)
	}

	file.LastUpdated = r.now().UTC().Format(lastUpdatedLayout)
	if file.Records == nil {
		file.Records = []interfaces.HistoryRecord{}
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return writeError(err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return writeError(err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return writeError(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return writeError(err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return writeError(err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		cleanup()
		return writeError(err)
	}

	r.logger.Debug("history.write.complete", "path", r.path, "records", len(file.Records))
	return nil
}

func corruptError(cause error) error {
	return goerrors.Wrap(fmt.Errorf("%w: %v", ErrHistoryCorrupt, cause), goerrors.CategoryInternal, "history file could not be parsed").
		WithTextCode(historyCorruptCode)
}

func readError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "history file could not be read").
		WithTextCode(historyReadCode)
}

func writeError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "history file could not be written").
		WithTextCode(historyWriteCode)
}
