package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("notepub.remote")
	logger = logging.WithFields(logger, map[string]any{"module": "notepub.remote"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"run_id": "run-1234",
	})
	logger = logger.WithContext(ctx)

	logger.Warn("remote.request.retry",
		"attempt", 1,
		"wait", 2*time.Second,
		"error", errors.New("HTTP 503"),
	)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z WARN remote.request.retry run_id=run-1234 attempt=1 error="HTTP 503" logger=notepub.remote module=notepub.remote wait=2s`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: time.Now,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("notepub.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected info log to be written, got %s", lines[0])
	}
}

func TestConsoleLogger_CompactOmitsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Compact: true})

	provider.GetLogger("notepub").Info("pipeline.done", "dangling")

	got := strings.TrimSpace(buf.String())
	want := "INFO pipeline.done field_0=dangling logger=notepub"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"":        console.LevelInfo,
		"debug":   console.LevelDebug,
		"WARNING": console.LevelWarn,
		"error":   console.LevelError,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}

func TestConsoleLogger_RunFieldsLead(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Compact: true})

	logger := logging.WithRunContext(provider.GetLogger("notepub.pipeline"), "/posts/a.md", "r1", "k1")
	logger.Info("pipeline.article.created", "article_id", "n9", "status", "draft")

	got := strings.TrimSpace(buf.String())
	want := "INFO pipeline.article.created run_id=r1 document_key=k1 article_id=n9 logger=notepub.pipeline source_path=/posts/a.md status=draft"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}
