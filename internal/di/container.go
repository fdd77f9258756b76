package di

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-notepub/internal/auth"
	"github.com/goliatone/go-notepub/internal/commands"
	historycmd "github.com/goliatone/go-notepub/internal/commands/history"
	publishcmd "github.com/goliatone/go-notepub/internal/commands/publish"
	"github.com/goliatone/go-notepub/internal/history"
	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/internal/logging/console"
	"github.com/goliatone/go-notepub/internal/logging/gologger"
	"github.com/goliatone/go-notepub/internal/markdown"
	"github.com/goliatone/go-notepub/internal/media"
	"github.com/goliatone/go-notepub/internal/pipeline"
	"github.com/goliatone/go-notepub/internal/remote"
	"github.com/goliatone/go-notepub/internal/runtimeconfig"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// Container wires the publisher's collaborators from a validated config.
// Overrides supplied through options win over the defaults.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	httpClient     *http.Client
	clock          func() time.Time

	client      interfaces.PublishingClient
	history     interfaces.HistoryRepository
	sessions    interfaces.SessionSource
	credentials auth.CredentialSource
	converter   interfaces.HTMLConverter
	resolver    interfaces.ImageResolver

	sessionStore *auth.SessionStore
	pipelineSvc  pipeline.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider chosen from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithPublishingClient replaces the HTTP platform client.
func WithPublishingClient(client interfaces.PublishingClient) Option {
	return func(c *Container) {
		if client != nil {
			c.client = client
		}
	}
}

// WithHistoryRepository replaces the JSON file history.
func WithHistoryRepository(repo interfaces.HistoryRepository) Option {
	return func(c *Container) {
		if repo != nil {
			c.history = repo
		}
	}
}

// WithSessionSource replaces the session file as the source of cookies.
func WithSessionSource(source interfaces.SessionSource) Option {
	return func(c *Container) {
		if source != nil {
			c.sessions = source
		}
	}
}

// WithCredentialSource replaces the environment credential source.
func WithCredentialSource(source auth.CredentialSource) Option {
	return func(c *Container) {
		if source != nil {
			c.credentials = source
		}
	}
}

// WithConverter replaces the goldmark converter.
func WithConverter(converter interfaces.HTMLConverter) Option {
	return func(c *Container) {
		if converter != nil {
			c.converter = converter
		}
	}
}

// WithClock overrides the clock shared by every component.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithHTTPClient sets the transport used by the platform client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewContainer validates cfg and builds every component not supplied through
// options.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureClient(); err != nil {
		return nil, err
	}
	c.configureStorage()
	c.configureMarkdown()

	c.pipelineSvc = pipeline.NewService(c.client, c.history, c.sessions,
		pipeline.WithLogger(logging.PipelineLogger(c.loggerProvider)),
		pipeline.WithClock(c.clock),
		pipeline.WithResolver(c.resolver),
		pipeline.WithConverter(c.converter),
	)

	logging.ModuleLogger(c.loggerProvider, "notepub.di").Debug("container.configured",
		"history_path", cfg.HistoryPath(),
		"session_path", cfg.SessionPath(),
		"base_url", cfg.Remote.BaseURL,
		"logging_provider", c.providerName(),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.FromRuntime(cfg))
		if err != nil {
			return fmt.Errorf("di: configure go-logger: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{TimeFunc: c.clock, Compact: true}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureClient() error {
	if c.client != nil {
		return nil
	}
	opts := []remote.Option{
		remote.WithClock(c.clock),
		remote.WithLogger(logging.RemoteLogger(c.loggerProvider)),
	}
	if c.httpClient != nil {
		opts = append(opts, remote.WithHTTPClient(c.httpClient))
	}
	client, err := remote.New(c.Config.Remote, opts...)
	if err != nil {
		return fmt.Errorf("di: configure remote client: %w", err)
	}
	c.client = client
	return nil
}

func (c *Container) configureStorage() {
	if c.history == nil {
		c.history = history.NewJSONFileRepository(c.Config.HistoryPath(),
			history.WithClock(c.clock),
			history.WithLogger(logging.HistoryLogger(c.loggerProvider)),
		)
	}
	c.sessionStore = auth.NewSessionStore(c.Config.SessionPath(),
		auth.WithStoreClock(c.clock),
		auth.WithStoreLogger(logging.ModuleLogger(c.loggerProvider, "notepub.auth")),
	)
	if c.sessions == nil {
		c.sessions = c.sessionStore
	}
	if c.credentials == nil {
		c.credentials = auth.NewEnvSource()
	}
}

func (c *Container) configureMarkdown() {
	if c.converter == nil {
		c.converter = markdown.NewGoldmarkConverter(interfaces.ConvertOptions{
			Extensions:   c.Config.Markdown.Extensions,
			HardWraps:    c.Config.Markdown.HardWraps,
			AllowRawHTML: c.Config.Markdown.AllowRawHTML,
		})
	}
	c.resolver = media.NewResolver(
		media.WithMaxSize(c.Config.Markdown.MaxImageSize),
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
	)
}

func (c *Container) providerName() string {
	switch c.loggerProvider.(type) {
	case *gologger.Provider:
		return "gologger"
	default:
		return "console"
	}
}

// LoggerProvider returns the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// PublishingClient returns the platform client.
func (c *Container) PublishingClient() interfaces.PublishingClient { return c.client }

// HistoryRepository returns the history store.
func (c *Container) HistoryRepository() interfaces.HistoryRepository { return c.history }

// SessionStore returns the session file store, used by the session commands
// even when another SessionSource feeds the pipeline.
func (c *Container) SessionStore() *auth.SessionStore { return c.sessionStore }

// SessionSource returns the session source used by the pipeline.
func (c *Container) SessionSource() interfaces.SessionSource { return c.sessions }

// CredentialSource returns the login credential source.
func (c *Container) CredentialSource() auth.CredentialSource { return c.credentials }

// Converter returns the Markdown to HTML converter.
func (c *Container) Converter() interfaces.HTMLConverter { return c.converter }

// ImageResolver returns the resolver used for local image links.
func (c *Container) ImageResolver() interfaces.ImageResolver { return c.resolver }

// PipelineService returns the publish pipeline.
func (c *Container) PipelineService() pipeline.Service { return c.pipelineSvc }

// PublishHandler returns a command handler that reports results to sink.
func (c *Container) PublishHandler(sink publishcmd.ResultSink) *publishcmd.PublishHandler {
	return publishcmd.NewPublishHandler(c.pipelineSvc, commands.CommandLogger(c.loggerProvider, "publish"), sink)
}

// DeleteHistoryHandler returns the history delete command handler.
func (c *Container) DeleteHistoryHandler() *historycmd.DeleteHandler {
	return historycmd.NewDeleteHandler(c.history, commands.CommandLogger(c.loggerProvider, "history"))
}
