package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

var ErrBaseURLInvalid = errors.New("notepub config: remote base url must be an absolute http(s) url")
var ErrTimeoutInvalid = errors.New("notepub config: remote timeout must be positive")
var ErrRetriesInvalid = errors.New("notepub config: max retries must be zero or positive")
var ErrRetryDelayInvalid = errors.New("notepub config: retry delay must be zero or positive")
var ErrRateLimitInvalid = errors.New("notepub config: rate limit must be positive")
var ErrDataDirRequired = errors.New("notepub config: data directory is required")
var ErrHistoryFileRequired = errors.New("notepub config: history file name is required")
var ErrMaxImageSizeInvalid = errors.New("notepub config: max image size must be positive")
var ErrLoggingProviderUnknown = errors.New("notepub config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("notepub config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("notepub config: logging format is invalid")

// Config aggregates every tunable of the publisher. It is built once at
// process start and handed to the components that need it.
type Config struct {
	Remote   RemoteConfig
	Storage  StorageConfig
	Markdown MarkdownConfig
	Logging  LoggingConfig
}

// RemoteConfig controls the publishing platform client.
type RemoteConfig struct {
	BaseURL            string
	Timeout            time.Duration
	MaxRetries         int
	RetryDelay         time.Duration
	RateLimitPerMinute int
	UserAgent          string
}

// StorageConfig locates the local files the publisher maintains.
type StorageConfig struct {
	DataDir         string
	HistoryFileName string
	SessionFileName string
}

// MarkdownConfig tunes conversion and image handling.
type MarkdownConfig struct {
	Extensions   []string
	HardWraps    bool
	AllowRawHTML bool
	MaxImageSize int64
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the out-of-the-box settings.
func DefaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			BaseURL:            "https://note.com",
			Timeout:            30 * time.Second,
			MaxRetries:         3,
			RetryDelay:         1000 * time.Millisecond,
			RateLimitPerMinute: 10,
			UserAgent:          "Mozilla/5.0 (NotePub/1.0)",
		},
		Storage: StorageConfig{
			DataDir:         "./data",
			HistoryFileName: "history.json",
			SessionFileName: "session.json",
		},
		Markdown: MarkdownConfig{
			MaxImageSize: 10 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate reports the first inconsistent setting.
func (cfg Config) Validate() error {
	if u, err := url.Parse(strings.TrimSpace(cfg.Remote.BaseURL)); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrBaseURLInvalid, cfg.Remote.BaseURL)
	}
	if cfg.Remote.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	if cfg.Remote.MaxRetries < 0 {
		return ErrRetriesInvalid
	}
	if cfg.Remote.RetryDelay < 0 {
		return ErrRetryDelayInvalid
	}
	if cfg.Remote.RateLimitPerMinute <= 0 {
		return ErrRateLimitInvalid
	}
	if strings.TrimSpace(cfg.Storage.DataDir) == "" {
		return ErrDataDirRequired
	}
	if strings.TrimSpace(cfg.Storage.HistoryFileName) == "" {
		return ErrHistoryFileRequired
	}
	if cfg.Markdown.MaxImageSize <= 0 {
		return ErrMaxImageSizeInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// HistoryPath is the absolute-or-relative path of the history file.
func (cfg Config) HistoryPath() string {
	return filepath.Join(cfg.Storage.DataDir, cfg.Storage.HistoryFileName)
}

// SessionPath is the path of the stored session file.
func (cfg Config) SessionPath() string {
	name := cfg.Storage.SessionFileName
	if strings.TrimSpace(name) == "" {
		name = "session.json"
	}
	return filepath.Join(cfg.Storage.DataDir, name)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
