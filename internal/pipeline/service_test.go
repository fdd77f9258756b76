package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notepub/internal/history"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

type uploadCall struct {
	fileName string
	mimeType string
	size     int
}

type fakeClient struct {
	mu sync.Mutex

	session   *interfaces.Session
	uploads   []uploadCall
	creates   []interfaces.CreateArticleRequest
	updates   []interfaces.UpdateArticleRequest
	uploadErr error
	createErr error
	updateErr error
	created   time.Time
}

func (c *fakeClient) SetSession(session interfaces.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &session
}

func (c *fakeClient) CreateArticle(_ context.Context, req interfaces.CreateArticleRequest) (*interfaces.ArticleRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates = append(c.creates, req)
	if c.createErr != nil {
		return nil, c.createErr
	}
	return &interfaces.ArticleRecord{
		ID:        "n1",
		Title:     req.Title,
		Body:      req.Body,
		MediaIDs:  req.MediaIDs,
		Status:    interfaces.StatusDraft,
		CreatedAt: c.created,
	}, nil
}

func (c *fakeClient) UpdateArticle(_ context.Context, id string, req interfaces.UpdateArticleRequest) (*interfaces.ArticleRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, req)
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	record := &interfaces.ArticleRecord{ID: id, Status: interfaces.StatusDraft}
	if req.Status != nil {
		record.Status = *req.Status
	}
	return record, nil
}

func (c *fakeClient) UploadImage(_ context.Context, data []byte, fileName, mimeType string) (*interfaces.UploadedImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploads = append(c.uploads, uploadCall{fileName: fileName, mimeType: mimeType, size: len(data)})
	if c.uploadErr != nil {
		return nil, c.uploadErr
	}
	return &interfaces.UploadedImage{
		MediaID:  "m1",
		URL:      "https://cdn.example.com/m1.png",
		FileName: fileName,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}

func (c *fakeClient) RequestStats() interfaces.RequestStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	used := len(c.uploads) + len(c.creates) + len(c.updates)
	return interfaces.RequestStats{RequestsInLastMinute: used, Remaining: 10 - used}
}

type staticSessions struct {
	session *interfaces.Session
	err     error
}

func (s staticSessions) Session(context.Context) (*interfaces.Session, error) {
	return s.session, s.err
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func validSessions() staticSessions {
	return staticSessions{session: &interfaces.Session{
		Cookies:   []interfaces.Cookie{{Name: "_note_session_v5", Value: "abc"}},
		ExpiresAt: fixedNow.Add(24 * time.Hour),
	}}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newFixture(t *testing.T, source string) (dir, mdPath string) {
	t.Helper()
	dir = t.TempDir()
	mdPath = filepath.Join(dir, "post.md")
	writeFile(t, mdPath, []byte(source))
	writeFile(t, filepath.Join(dir, "img.png"), bytes.Repeat([]byte{0x89}, 1024))
	return dir, mdPath
}

const helloSource = "---\ntitle: Hello\ntags: [go]\n---\n# Hi\n\n![x](./img.png)\n"

func newTestService(client *fakeClient, repo interfaces.HistoryRepository, sessions interfaces.SessionSource) Service {
	return NewService(client, repo, sessions,
		WithClock(func() time.Time { return fixedNow }),
		WithRunIDGenerator(func() string { return "run-1" }),
	)
}

func TestPublishEndToEnd(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "data", "history.json"))
	client := &fakeClient{created: fixedNow}

	result, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{FilePath: mdPath})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if client.session == nil {
		t.Fatal("expected session to be handed to the client")
	}
	if len(client.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(client.uploads))
	}
	upload := client.uploads[0]
	if upload.fileName != "img.png" || upload.mimeType != "image/png" || upload.size != 1024 {
		t.Fatalf("unexpected upload call: %+v", upload)
	}

	if len(client.creates) != 1 {
		t.Fatalf("expected one create call, got %d", len(client.creates))
	}
	created := client.creates[0]
	if created.Title != "Hello" {
		t.Fatalf("expected title Hello, got %q", created.Title)
	}
	if strings.Contains(created.Body, "./img.png") {
		t.Fatalf("expected local path to be rewritten, body: %s", created.Body)
	}
	if !strings.Contains(created.Body, "https://cdn.example.com/m1.png") {
		t.Fatalf("expected uploaded url in body, got %s", created.Body)
	}
	if !strings.Contains(created.Body, "<h1") {
		t.Fatalf("expected rendered heading, got %s", created.Body)
	}
	if len(created.MediaIDs) != 1 || created.MediaIDs[0] != "m1" {
		t.Fatalf("expected media ids [m1], got %v", created.MediaIDs)
	}

	if result.ArticleID != "n1" || result.Status != interfaces.StatusDraft {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.RunID != "run-1" || result.DocumentKey == "" {
		t.Fatalf("expected run id and document key, got %q %q", result.RunID, result.DocumentKey)
	}
	if result.UploadedImages() != 1 || result.FailedImages() != 0 {
		t.Fatalf("expected one uploaded image, got %d/%d", result.UploadedImages(), result.FailedImages())
	}
	if result.HistoryErr != nil {
		t.Fatalf("unexpected history error: %v", result.HistoryErr)
	}

	records, err := repo.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one history record, got %d", len(records))
	}
	record := records[0]
	if record.ID != "n1" || record.Status != interfaces.StatusDraft || record.Title != "Hello" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.SourceFileName != "post.md" || record.SourceFilePath != mdPath {
		t.Fatalf("unexpected source fields: %+v", record)
	}
	if !record.PostedAt.Equal(fixedNow) {
		t.Fatalf("expected postedAt %v, got %v", fixedNow, record.PostedAt)
	}
	if result.Stats == nil || result.Stats.TotalPosts != 1 || result.Stats.DraftCount != 1 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
}

func TestPublishValidationFailureSkipsRemote(t *testing.T) {
	source := "---\ntitle: " + strings.Repeat("a", 201) + "\n---\nbody\n"
	dir, mdPath := newFixture(t, source)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
	client := &fakeClient{}

	_, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{FilePath: mdPath})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(client.uploads)+len(client.creates) != 0 {
		t.Fatal("expected no remote calls")
	}
	if exists, _ := repo.Exists(context.Background()); exists {
		t.Fatal("expected no history file")
	}
}

func TestPublishRequiresSession(t *testing.T) {
	cases := map[string]interfaces.SessionSource{
		"nil source": nil,
		"no session": staticSessions{},
		"expired": staticSessions{session: &interfaces.Session{
			Cookies:   []interfaces.Cookie{{Name: "auth", Value: "x"}},
			ExpiresAt: fixedNow.Add(-time.Minute),
		}},
		"source error": staticSessions{err: errors.New("session file unreadable")},
	}

	for name, sessions := range cases {
		t.Run(name, func(t *testing.T) {
			dir, mdPath := newFixture(t, helloSource)
			repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
			client := &fakeClient{}

			_, err := newTestService(client, repo, sessions).Publish(context.Background(), Request{FilePath: mdPath})
			if err == nil {
				t.Fatal("expected session error")
			}
			if !goerrors.IsCategory(err, goerrors.CategoryAuth) {
				t.Fatalf("expected auth category, got %v", err)
			}
			if len(client.uploads)+len(client.creates) != 0 {
				t.Fatal("expected no remote calls without a session")
			}
		})
	}
}

func TestPublishContinuesWhenUploadFails(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
	client := &fakeClient{uploadErr: errors.New("upload rejected")}

	result, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{FilePath: mdPath})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(result.Images) != 1 || result.Images[0].Err == nil {
		t.Fatalf("expected failed image outcome, got %+v", result.Images)
	}
	if result.FailedImages() != 1 {
		t.Fatalf("expected one failed image, got %d", result.FailedImages())
	}
	body := client.creates[0].Body
	if !strings.Contains(body, "./img.png") {
		t.Fatalf("expected original path to stay in body, got %s", body)
	}
	if len(client.creates[0].MediaIDs) != 0 {
		t.Fatalf("expected no media ids, got %v", client.creates[0].MediaIDs)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning for the failed upload")
	}
}

func TestPublishCreateFailureStopsBeforeHistory(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
	client := &fakeClient{createErr: errors.New("remote down")}

	result, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{FilePath: mdPath})
	if err == nil {
		t.Fatal("expected create error")
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
	if exists, _ := repo.Exists(context.Background()); exists {
		t.Fatal("expected no history record after failed create")
	}
}

func TestPublishHistoryFailureKeepsArticle(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, []byte("not a directory"))
	repo := history.NewJSONFileRepository(filepath.Join(blocker, "history.json"))
	client := &fakeClient{}

	result, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{FilePath: mdPath})
	if err != nil {
		t.Fatalf("expected publish to stand, got %v", err)
	}
	if result.ArticleID != "n1" {
		t.Fatalf("expected article id n1, got %q", result.ArticleID)
	}
	if result.HistoryErr == nil {
		t.Fatal("expected history error on result")
	}
	if !result.CreatedAt.Equal(fixedNow) {
		t.Fatalf("expected fallback created at %v, got %v", fixedNow, result.CreatedAt)
	}
}

func TestPublishPromotesDraftWhenRequested(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
	client := &fakeClient{}

	result, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{
		FilePath: mdPath,
		Status:   interfaces.StatusPublished,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(client.updates) != 1 || client.updates[0].Status == nil || *client.updates[0].Status != interfaces.StatusPublished {
		t.Fatalf("expected one update to published, got %+v", client.updates)
	}
	if result.Status != interfaces.StatusPublished {
		t.Fatalf("expected published status, got %q", result.Status)
	}
	record, err := repo.FindByID(context.Background(), "n1")
	if err != nil || record == nil {
		t.Fatalf("expected record, got %v %v", record, err)
	}
	if record.Status != interfaces.StatusPublished {
		t.Fatalf("expected published record, got %q", record.Status)
	}
}

func TestPublishPromotionFailureKeepsDraft(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
	client := &fakeClient{updateErr: errors.New("forbidden")}

	result, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{
		FilePath: mdPath,
		Status:   interfaces.StatusPublished,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.Status != interfaces.StatusDraft {
		t.Fatalf("expected draft status, got %q", result.Status)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning about promotion failure")
	}
}

func TestPublishWarnsOnRepublish(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
	if err := repo.Save(context.Background(), interfaces.HistoryRecord{
		ID:             "old-1",
		Title:          "Hello",
		SourceFileName: "post.md",
		SourceFilePath: mdPath,
		PostedAt:       fixedNow.Add(-time.Hour),
		Status:         interfaces.StatusDraft,
	}); err != nil {
		t.Fatalf("seed history: %v", err)
	}
	client := &fakeClient{}

	result, err := newTestService(client, repo, validSessions()).Publish(context.Background(), Request{FilePath: mdPath})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	found := false
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "old-1") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected republish warning, got %v", result.Warnings)
	}
	if result.Stats == nil || result.Stats.TotalPosts != 2 {
		t.Fatalf("expected two records after republish, got %+v", result.Stats)
	}
}

func TestPublishRejectsBadRequests(t *testing.T) {
	svc := newTestService(&fakeClient{}, nil, validSessions())

	if _, err := svc.Publish(context.Background(), Request{}); !errors.Is(err, ErrFilePathRequired) {
		t.Fatalf("expected ErrFilePathRequired, got %v", err)
	}
	if _, err := svc.Publish(context.Background(), Request{FilePath: "x.md", Status: "archived"}); !errors.Is(err, ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
	_, err := svc.Publish(context.Background(), Request{FilePath: filepath.Join(t.TempDir(), "missing.md")})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestPublishHonoursCancellation(t *testing.T) {
	dir, mdPath := newFixture(t, helloSource)
	repo := history.NewJSONFileRepository(filepath.Join(dir, "history.json"))
	client := &fakeClient{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(client, repo, validSessions()).Publish(ctx, Request{FilePath: mdPath})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(client.creates) != 0 {
		t.Fatal("expected no article after cancellation")
	}
}
