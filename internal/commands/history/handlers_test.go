package historycmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notepub/internal/history"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

func seededRepository(t *testing.T) *history.JSONFileRepository {
	t.Helper()
	repo := history.NewJSONFileRepository(filepath.Join(t.TempDir(), "history.json"))
	records := []interfaces.HistoryRecord{
		{ID: "n1", Title: "First", SourceFileName: "a.md", SourceFilePath: "/tmp/a.md", PostedAt: time.Unix(100, 0).UTC(), Status: interfaces.StatusDraft},
		{ID: "n2", Title: "Second", SourceFileName: "b.md", SourceFilePath: "/tmp/b.md", PostedAt: time.Unix(200, 0).UTC(), Status: interfaces.StatusPublished},
	}
	if err := repo.SaveMultiple(context.Background(), records); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func TestDeleteHandlerRemovesRecord(t *testing.T) {
	repo := seededRepository(t)
	handler := NewDeleteHandler(repo, nil)

	if err := handler.Execute(context.Background(), DeleteHistoryCommand{ID: "n1"}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	records, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(records) != 1 || records[0].ID != "n2" {
		t.Fatalf("expected only n2 to remain, got %+v", records)
	}
}

func TestDeleteHandlerUnknownID(t *testing.T) {
	repo := seededRepository(t)
	handler := NewDeleteHandler(repo, nil)

	err := handler.Execute(context.Background(), DeleteHistoryCommand{ID: "missing"})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPosts != 2 {
		t.Fatalf("expected records untouched, got %d", stats.TotalPosts)
	}
}

func TestDeleteHandlerRequiresID(t *testing.T) {
	handler := NewDeleteHandler(seededRepository(t), nil)

	err := handler.Execute(context.Background(), DeleteHistoryCommand{ID: "  "})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}
