package notepub

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/goliatone/go-notepub/internal/auth"
	historycmd "github.com/goliatone/go-notepub/internal/commands/history"
	publishcmd "github.com/goliatone/go-notepub/internal/commands/publish"
	"github.com/goliatone/go-notepub/internal/di"
	"github.com/goliatone/go-notepub/internal/markdown"
	"github.com/goliatone/go-notepub/internal/media"
	"github.com/goliatone/go-notepub/internal/pipeline"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// PublishResult exports the outcome of a publish run.
type PublishResult = pipeline.Result

// ImageOutcome exports the per-image outcome of a publish run.
type ImageOutcome = pipeline.ImageOutcome

// HistoryRecord exports the persisted publication record.
type HistoryRecord = interfaces.HistoryRecord

// HistoryStats exports the history aggregate.
type HistoryStats = interfaces.HistoryStats

// HistoryRepository exports the history store contract.
type HistoryRepository = interfaces.HistoryRepository

// Session exports the cookie session contract.
type Session = interfaces.Session

// SessionStore exports the session file store.
type SessionStore = auth.SessionStore

// FrontMatter exports the parsed metadata block.
type FrontMatter = interfaces.FrontMatter

// Credentials exports the login account read from the environment.
type Credentials = auth.Credentials

// Cookie exports a single browser cookie.
type Cookie = interfaces.Cookie

// ParseCookieExport reads a browser cookie export (array or {"cookies": [...]}).
func ParseCookieExport(data []byte) ([]Cookie, error) {
	return auth.ParseCookieExport(data)
}

// CookieProbe exports the login surface probe used by WaitForSession.
type CookieProbe = auth.CookieProbe

// ErrRecordNotFound is returned by DeleteHistory for unknown ids.
var ErrRecordNotFound = historycmd.ErrRecordNotFound

// Option exports the container overrides.
type Option = di.Option

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

func WithPublishingClient(client interfaces.PublishingClient) Option {
	return di.WithPublishingClient(client)
}

func WithHistoryRepository(repo interfaces.HistoryRepository) Option {
	return di.WithHistoryRepository(repo)
}

func WithSessionSource(source interfaces.SessionSource) Option {
	return di.WithSessionSource(source)
}

func WithClock(now func() time.Time) Option {
	return di.WithClock(now)
}

func WithHTTPClient(client *http.Client) Option {
	return di.WithHTTPClient(client)
}

// Module is the top level publisher façade used by the CLI and by embedders.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg and optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Config returns the validated configuration the module was built with.
func (m *Module) Config() Config {
	return m.container.Config
}

// Publish posts one Markdown file. Articles stay drafts unless publish is set.
func (m *Module) Publish(ctx context.Context, path string, publish bool) (*PublishResult, error) {
	var result *PublishResult
	handler := m.container.PublishHandler(func(r *pipeline.Result) { result = r })
	if err := handler.Execute(ctx, publishcmd.PublishCommand{FilePath: path, Publish: publish}); err != nil {
		return nil, err
	}
	return result, nil
}

// History returns the publication history store.
func (m *Module) History() HistoryRepository {
	return m.container.HistoryRepository()
}

// DeleteHistory removes one record from the local history.
func (m *Module) DeleteHistory(ctx context.Context, id string) error {
	return m.container.DeleteHistoryHandler().Execute(ctx, historycmd.DeleteHistoryCommand{ID: id})
}

// Sessions returns the session file store.
func (m *Module) Sessions() *SessionStore {
	return m.container.SessionStore()
}

// ImportSession stores the cookies of a browser export as the active session.
func (m *Module) ImportSession(ctx context.Context, export []byte) (*Session, error) {
	cookies, err := ParseCookieExport(export)
	if err != nil {
		return nil, err
	}
	return m.container.SessionStore().Import(ctx, cookies)
}

// Credentials returns the configured login account, or
// auth.ErrCredentialsMissing when NOTE_EMAIL or NOTE_PASSWORD is unset.
func (m *Module) Credentials(ctx context.Context) (*Credentials, error) {
	return m.container.CredentialSource().Credentials(ctx)
}

// WaitForSession polls probe until it reports a session cookie, then stores
// the captured session.
func (m *Module) WaitForSession(ctx context.Context, probe CookieProbe, interval, timeout time.Duration) (*Session, error) {
	session, err := auth.PollForSession(ctx, probe, interval, timeout)
	if err != nil {
		return nil, err
	}
	if err := m.container.SessionStore().Save(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

// Format re-renders the file at path with its front matter normalised:
// default title applied, tags stringified and the block written as YAML, or
// TOML when toml is set.
func (m *Module) Format(ctx context.Context, path string, toml bool) ([]byte, error) {
	doc, err := markdown.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	format := markdown.FormatYAML
	if toml {
		format = markdown.FormatTOML
	}
	return markdown.ComposeFrontMatter(doc.FrontMatter, doc.Body, format)
}

// SkippedImage is a local image link the publish run would leave untouched.
type SkippedImage struct {
	Path    string
	Reasons []string
}

// Preview is a dry run of a publish: parsed metadata, rule violations, the
// local images that would be uploaded and the HTML that would be sent.
type Preview struct {
	FilePath    string
	FrontMatter FrontMatter
	Violations  []string
	Images      []*interfaces.ImageReference
	Skipped     []SkippedImage
	HTML        []byte
	Warnings    []string
}

// Preview renders path without touching the network or the history.
func (m *Module) Preview(ctx context.Context, path string) (*Preview, error) {
	doc, err := markdown.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	converter := m.container.Converter()
	raw, err := converter.Convert(doc.Body)
	if err != nil {
		return nil, err
	}
	html, err := markdown.Render(converter, doc.Body)
	if err != nil {
		return nil, err
	}
	baseDir := filepath.Dir(doc.FilePath)
	images := m.container.ImageResolver().Resolve(ctx, doc.Body, baseDir)
	return &Preview{
		FilePath:    doc.FilePath,
		FrontMatter: doc.FrontMatter,
		Violations:  markdown.ValidateFrontMatter(doc.FrontMatter),
		Images:      images,
		Skipped:     m.skippedImages(doc.Body, baseDir, images),
		HTML:        html,
		Warnings:    markdown.InspectHTML(raw).Warnings,
	}, nil
}

func (m *Module) skippedImages(body []byte, baseDir string, resolved []*interfaces.ImageReference) []SkippedImage {
	accepted := make(map[string]bool, len(resolved))
	for _, ref := range resolved {
		accepted[ref.OriginalPath] = true
	}
	var skipped []SkippedImage
	seen := map[string]bool{}
	for link := range media.ScanImageLinks(body) {
		if link.Remote() || accepted[link.Path] || seen[link.Path] {
			continue
		}
		seen[link.Path] = true
		path := link.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		reasons := media.ValidateImageFile(path, m.container.Config.Markdown.MaxImageSize)
		if len(reasons) == 0 {
			reasons = []string{"not resolved"}
		}
		skipped = append(skipped, SkippedImage{Path: link.Path, Reasons: reasons})
	}
	return skipped
}
