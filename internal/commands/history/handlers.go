package historycmd

import (
	"context"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-notepub/internal/commands"
	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

const deleteOperation = "history.delete"

// ErrRecordNotFound is returned when the id is not in the history.
var ErrRecordNotFound = fmt.Errorf("history record: %w", commands.ErrNotFound)

var _ command.Commander[DeleteHistoryCommand] = (*DeleteHandler)(nil)

// DeleteHandler removes history records through the shared command handler.
type DeleteHandler struct {
	inner *commands.Handler[DeleteHistoryCommand]
}

// NewDeleteHandler creates a handler bound to the supplied repository.
func NewDeleteHandler(repo interfaces.HistoryRepository, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteHistoryCommand]) *DeleteHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg DeleteHistoryCommand) error {
		id := strings.TrimSpace(msg.ID)
		record, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrRecordNotFound
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"id":    id,
			"title": record.Title,
		}).Info("history.command.delete.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeleteHistoryCommand]{
		commands.WithLogger[DeleteHistoryCommand](baseLogger),
		commands.WithOperation[DeleteHistoryCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteHistoryCommand) map[string]any {
			return map[string]any{"id": msg.ID}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DeleteHistoryCommand].
func (h *DeleteHandler) Execute(ctx context.Context, msg DeleteHistoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
