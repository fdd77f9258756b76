package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-notepub/internal/identity"
	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/internal/markdown"
	"github.com/goliatone/go-notepub/internal/media"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// Service publishes one Markdown file per call.
type Service interface {
	Publish(ctx context.Context, req Request) (*Result, error)
}

// ServiceOption configures the publish service.
type ServiceOption func(*service)

// WithLogger sets the pipeline logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

// WithClock overrides the clock used for session checks and fallback
// timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunIDGenerator overrides how run ids are minted.
func WithRunIDGenerator(generator func() string) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.runID = generator
		}
	}
}

// WithResolver replaces the image resolver.
func WithResolver(resolver interfaces.ImageResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithConverter replaces the Markdown to HTML converter.
func WithConverter(converter interfaces.HTMLConverter) ServiceOption {
	return func(s *service) {
		if converter != nil {
			s.converter = converter
		}
	}
}

type service struct {
	client    interfaces.PublishingClient
	history   interfaces.HistoryRepository
	sessions  interfaces.SessionSource
	resolver  interfaces.ImageResolver
	converter interfaces.HTMLConverter
	logger    interfaces.Logger
	now       func() time.Time
	runID     func() string
}

// NewService wires the pipeline. The client, history repository and session
// source are required collaborators; resolver and converter default to the
// media and goldmark implementations.
func NewService(client interfaces.PublishingClient, history interfaces.HistoryRepository, sessions interfaces.SessionSource, opts ...ServiceOption) Service {
	s := &service{
		client:    client,
		history:   history,
		sessions:  sessions,
		resolver:  media.NewResolver(),
		converter: markdown.NewGoldmarkConverter(interfaces.ConvertOptions{}),
		logger:    logging.NoOp(),
		now:       time.Now,
		runID:     identity.RunID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Publish(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	path := strings.TrimSpace(req.FilePath)
	if path == "" {
		return nil, requestError(ErrFilePathRequired)
	}
	status := req.Status
	if status == "" {
		status = interfaces.StatusDraft
	}
	if !status.Valid() {
		return nil, requestError(fmt.Errorf("%w: %q", ErrStatusInvalid, status))
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	result := &Result{
		RunID:       s.runID(),
		DocumentKey: identity.DocumentKey(path),
		SourcePath:  path,
	}
	logger := logging.WithRunContext(s.logger, path, result.RunID, result.DocumentKey)
	logger.Info("pipeline.publish.start", "status", status)

	if err := ctx.Err(); err != nil {
		return nil, canceledError(err)
	}
	doc, err := markdown.LoadFile(ctx, path)
	if err != nil {
		logger.Error("pipeline.document.load_failed", "error", err)
		return nil, sourceError(err)
	}
	result.Title = doc.FrontMatter.Title

	if err := markdown.ValidateDocument(doc); err != nil {
		logger.Warn("pipeline.document.invalid", "error", err)
		return nil, err
	}

	if err := s.authenticate(ctx); err != nil {
		logger.Error("pipeline.session.unavailable", "error", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, canceledError(err)
	}
	s.noteRepublish(ctx, logger, result)

	refs := s.resolver.Resolve(ctx, doc.Body, filepath.Dir(doc.FilePath))
	logger.Debug("pipeline.images.resolved", "count", len(refs))

	mediaIDs, err := s.uploadImages(ctx, logger, refs, result)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, canceledError(err)
	}
	body := media.ReplaceImageReferences(doc.Body, media.Replacements(refs))
	html, err := s.render(logger, body, result)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, canceledError(err)
	}
	article, err := s.client.CreateArticle(ctx, interfaces.CreateArticleRequest{
		Title:    doc.FrontMatter.Title,
		Body:     string(html),
		MediaIDs: mediaIDs,
	})
	if err != nil {
		logger.Error("pipeline.article.create_failed", "error", err)
		return nil, err
	}
	if article == nil || strings.TrimSpace(article.ID) == "" {
		logger.Error("pipeline.article.create_failed", "error", ErrEmptyArticleID)
		return nil, articleError(ErrEmptyArticleID)
	}
	result.ArticleID = article.ID
	result.Status = article.Status
	if !result.Status.Valid() {
		result.Status = interfaces.StatusDraft
	}
	result.CreatedAt = article.CreatedAt
	if result.CreatedAt.IsZero() {
		result.CreatedAt = s.now()
	}
	logger.Info("pipeline.article.created", "article_id", article.ID, "status", result.Status)

	if status == interfaces.StatusPublished && result.Status != interfaces.StatusPublished {
		s.promote(ctx, logger, result)
	}

	// the article exists remotely now; record it even if the caller gave up
	bookkeeping := context.WithoutCancel(ctx)
	s.record(bookkeeping, logger, doc, mediaIDs, result)
	s.collectStats(bookkeeping, logger, result)
	result.RequestStats = s.client.RequestStats()

	logger.Info("pipeline.publish.completed",
		"article_id", result.ArticleID,
		"status", result.Status,
		"images_uploaded", result.UploadedImages(),
		"images_failed", result.FailedImages(),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

func (s *service) authenticate(ctx context.Context) error {
	if s.sessions == nil {
		return sessionError(nil)
	}
	session, err := s.sessions.Session(ctx)
	if err != nil {
		return sessionError(err)
	}
	if session == nil || !session.Valid(s.now()) {
		return sessionError(nil)
	}
	s.client.SetSession(*session)
	return nil
}

// noteRepublish warns when the file already produced an article. The new
// run still creates a separate remote article.
func (s *service) noteRepublish(ctx context.Context, logger interfaces.Logger, result *Result) {
	if s.history == nil {
		return
	}
	previous, err := s.history.FindBySourcePath(ctx, result.SourcePath)
	if err != nil {
		logger.Warn("pipeline.history.lookup_failed", "error", err)
		return
	}
	if len(previous) == 0 {
		return
	}
	ids := make([]string, 0, len(previous))
	for _, record := range previous {
		ids = append(ids, record.ID)
	}
	logger.Warn("pipeline.publish.republish", "previous_ids", ids)
	result.warn(fmt.Sprintf("file was published before (%s); a new article will be created", strings.Join(ids, ", ")))
}

func (s *service) uploadImages(ctx context.Context, logger interfaces.Logger, refs []*interfaces.ImageReference, result *Result) ([]string, error) {
	var mediaIDs []string
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, canceledError(err)
		}

		outcome := ImageOutcome{Reference: ref}
		uploaded, err := s.uploadImage(ctx, ref)
		if err != nil {
			outcome.Err = err
			logger.Warn("pipeline.image.upload_failed", "path", ref.OriginalPath, "error", err)
			result.warn(fmt.Sprintf("image %s was not uploaded: %v", ref.OriginalPath, err))
			result.Images = append(result.Images, outcome)
			continue
		}

		ref.MediaID = uploaded.MediaID
		ref.URL = uploaded.URL
		outcome.MediaID = uploaded.MediaID
		outcome.URL = uploaded.URL
		result.Images = append(result.Images, outcome)
		if uploaded.MediaID != "" {
			mediaIDs = append(mediaIDs, uploaded.MediaID)
		}
		logger.Info("pipeline.image.uploaded", "path", ref.OriginalPath, "media_id", uploaded.MediaID)
	}
	return mediaIDs, nil
}

func (s *service) uploadImage(ctx context.Context, ref *interfaces.ImageReference) (*interfaces.UploadedImage, error) {
	data, err := media.ReadImage(ctx, ref)
	if err != nil {
		return nil, err
	}
	uploaded, err := s.client.UploadImage(ctx, data, media.UploadFileName(ref), ref.MimeType)
	if err != nil {
		return nil, err
	}
	if uploaded == nil || uploaded.URL == "" {
		return nil, fmt.Errorf("upload of %s returned no url", ref.OriginalPath)
	}
	return uploaded, nil
}

func (s *service) render(logger interfaces.Logger, body []byte, result *Result) ([]byte, error) {
	raw, err := s.converter.Convert(body)
	if err != nil {
		logger.Error("pipeline.render.failed", "error", err)
		return nil, renderError(err)
	}
	report := markdown.InspectHTML(raw)
	for _, warning := range report.Warnings {
		logger.Warn("pipeline.render.warning", "warning", warning)
		result.warn(warning)
	}
	return markdown.SanitizeHTML(raw), nil
}

// promote flips a freshly created draft to published. Failure keeps the
// draft and is reported as a warning.
func (s *service) promote(ctx context.Context, logger interfaces.Logger, result *Result) {
	published := interfaces.StatusPublished
	updated, err := s.client.UpdateArticle(ctx, result.ArticleID, interfaces.UpdateArticleRequest{Status: &published})
	if err != nil {
		logger.Warn("pipeline.article.publish_failed", "article_id", result.ArticleID, "error", err)
		result.warn(fmt.Sprintf("article %s stays a draft: %v", result.ArticleID, err))
		return
	}
	result.Status = published
	if updated != nil && updated.Status.Valid() {
		result.Status = updated.Status
	}
	logger.Info("pipeline.article.published", "article_id", result.ArticleID, "status", result.Status)
}

func (s *service) record(ctx context.Context, logger interfaces.Logger, doc *interfaces.Document, mediaIDs []string, result *Result) {
	if s.history == nil {
		return
	}
	record := interfaces.HistoryRecord{
		ID:             result.ArticleID,
		Title:          doc.FrontMatter.Title,
		SourceFileName: doc.FileName,
		SourceFilePath: doc.FilePath,
		PostedAt:       result.CreatedAt,
		Status:         result.Status,
		MediaIDs:       append([]string(nil), mediaIDs...),
	}
	if err := s.history.Save(ctx, record); err != nil {
		result.HistoryErr = err
		logger.Warn("pipeline.history.save_failed", "article_id", result.ArticleID, "error", err)
		result.warn(fmt.Sprintf("article %s was created but history could not be saved: %v", result.ArticleID, err))
	}
}

func (s *service) collectStats(ctx context.Context, logger interfaces.Logger, result *Result) {
	if s.history == nil {
		return
	}
	stats, err := s.history.Stats(ctx)
	if err != nil {
		logger.Warn("pipeline.history.stats_failed", "error", err)
		return
	}
	result.Stats = &stats
}
