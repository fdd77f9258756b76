package notepub

import "github.com/goliatone/go-notepub/internal/runtimeconfig"

var (
	ErrBaseURLInvalid         = runtimeconfig.ErrBaseURLInvalid
	ErrTimeoutInvalid         = runtimeconfig.ErrTimeoutInvalid
	ErrRetriesInvalid         = runtimeconfig.ErrRetriesInvalid
	ErrRetryDelayInvalid      = runtimeconfig.ErrRetryDelayInvalid
	ErrRateLimitInvalid       = runtimeconfig.ErrRateLimitInvalid
	ErrDataDirRequired        = runtimeconfig.ErrDataDirRequired
	ErrHistoryFileRequired    = runtimeconfig.ErrHistoryFileRequired
	ErrMaxImageSizeInvalid    = runtimeconfig.ErrMaxImageSizeInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	RemoteConfig   = runtimeconfig.RemoteConfig
	StorageConfig  = runtimeconfig.StorageConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a JSON, YAML or TOML file over the defaults and applies
// NOTEPUB_* environment overrides. An empty path only applies the
// environment.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
