package commands

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// DefaultCommandTimeout bounds a whole command, uploads and retries included.
const DefaultCommandTimeout = 5 * time.Minute

// commandContext never returns a nil context and applies timeout when positive.
func commandContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// CommandLogger returns the logger for the handlers of one command family,
// e.g. "publish" logs under notepub.commands.publish.
func CommandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	family = strings.TrimSpace(family)
	if family == "" {
		family = "core"
	}
	logger := logging.ModuleLogger(provider, "notepub.commands."+family)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_family": family,
	})
}
