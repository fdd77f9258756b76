package runtimeconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	EnvBaseURL  = "NOTEPUB_BASE_URL"
	EnvDataDir  = "NOTEPUB_DATA_DIR"
	EnvLogLevel = "NOTEPUB_LOG_LEVEL"
)

// fileConfig is the on-disk shape. Durations are integer milliseconds and
// absent keys leave the defaults in place.
type fileConfig struct {
	API *struct {
		BaseURL                    *string `json:"baseUrl" yaml:"baseUrl" toml:"baseUrl"`
		TimeoutMs                  *int64  `json:"timeout" yaml:"timeout" toml:"timeout"`
		MaxRetries                 *int    `json:"maxRetries" yaml:"maxRetries" toml:"maxRetries"`
		RetryDelayMs               *int64  `json:"retryDelayMs" yaml:"retryDelayMs" toml:"retryDelayMs"`
		RateLimitRequestsPerMinute *int    `json:"rateLimitRequestsPerMinute" yaml:"rateLimitRequestsPerMinute" toml:"rateLimitRequestsPerMinute"`
		MaxImageSizeBytes          *int64  `json:"maxImageSizeBytes" yaml:"maxImageSizeBytes" toml:"maxImageSizeBytes"`
		UserAgent                  *string `json:"userAgent" yaml:"userAgent" toml:"userAgent"`
	} `json:"api" yaml:"api" toml:"api"`
	Storage *struct {
		DataDir         *string `json:"dataDir" yaml:"dataDir" toml:"dataDir"`
		HistoryFileName *string `json:"historyFileName" yaml:"historyFileName" toml:"historyFileName"`
		SessionFileName *string `json:"sessionFileName" yaml:"sessionFileName" toml:"sessionFileName"`
	} `json:"storage" yaml:"storage" toml:"storage"`
	Markdown *struct {
		Extensions   []string `json:"extensions" yaml:"extensions" toml:"extensions"`
		HardWraps    *bool    `json:"hardWraps" yaml:"hardWraps" toml:"hardWraps"`
		AllowRawHTML *bool    `json:"allowRawHtml" yaml:"allowRawHtml" toml:"allowRawHtml"`
	} `json:"markdown" yaml:"markdown" toml:"markdown"`
	Logging *struct {
		Provider  *string  `json:"provider" yaml:"provider" toml:"provider"`
		Level     *string  `json:"level" yaml:"level" toml:"level"`
		Format    *string  `json:"format" yaml:"format" toml:"format"`
		AddSource *bool    `json:"addSource" yaml:"addSource" toml:"addSource"`
		Focus     []string `json:"focus" yaml:"focus" toml:"focus"`
	} `json:"logging" yaml:"logging" toml:"logging"`
}

// Load merges the optional config file at path over DefaultConfig, applies
// environment overrides and validates the result. An empty path skips the
// file. The decoder is chosen by extension: .yaml/.yml, .toml, else JSON.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("notepub config: read %s: %w", path, err)
		}
		var raw fileConfig
		if err := decode(path, data, &raw); err != nil {
			return Config{}, fmt.Errorf("notepub config: decode %s: %w", path, err)
		}
		raw.apply(&cfg)
	}

	ApplyEnv(&cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays NOTEPUB_* variables. lookup is usually os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		cfg.Remote.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvDataDir); ok && strings.TrimSpace(v) != "" {
		cfg.Storage.DataDir = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.Logging.Level = strings.TrimSpace(v)
	}
}

func decode(path string, data []byte, out *fileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".toml":
		return toml.Unmarshal(data, out)
	default:
		return json.Unmarshal(data, out)
	}
}

func (raw fileConfig) apply(cfg *Config) {
	if api := raw.API; api != nil {
		setString(&cfg.Remote.BaseURL, api.BaseURL)
		setString(&cfg.Remote.UserAgent, api.UserAgent)
		if api.TimeoutMs != nil {
			cfg.Remote.Timeout = time.Duration(*api.TimeoutMs) * time.Millisecond
		}
		if api.MaxRetries != nil {
			cfg.Remote.MaxRetries = *api.MaxRetries
		}
		if api.RetryDelayMs != nil {
			cfg.Remote.RetryDelay = time.Duration(*api.RetryDelayMs) * time.Millisecond
		}
		if api.RateLimitRequestsPerMinute != nil {
			cfg.Remote.RateLimitPerMinute = *api.RateLimitRequestsPerMinute
		}
		if api.MaxImageSizeBytes != nil {
			cfg.Markdown.MaxImageSize = *api.MaxImageSizeBytes
		}
	}
	if storage := raw.Storage; storage != nil {
		setString(&cfg.Storage.DataDir, storage.DataDir)
		setString(&cfg.Storage.HistoryFileName, storage.HistoryFileName)
		setString(&cfg.Storage.SessionFileName, storage.SessionFileName)
	}
	if md := raw.Markdown; md != nil {
		if md.Extensions != nil {
			cfg.Markdown.Extensions = md.Extensions
		}
		if md.HardWraps != nil {
			cfg.Markdown.HardWraps = *md.HardWraps
		}
		if md.AllowRawHTML != nil {
			cfg.Markdown.AllowRawHTML = *md.AllowRawHTML
		}
	}
	if logging := raw.Logging; logging != nil {
		setString(&cfg.Logging.Provider, logging.Provider)
		setString(&cfg.Logging.Level, logging.Level)
		setString(&cfg.Logging.Format, logging.Format)
		if logging.AddSource != nil {
			cfg.Logging.AddSource = *logging.AddSource
		}
		if logging.Focus != nil {
			cfg.Logging.Focus = logging.Focus
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
