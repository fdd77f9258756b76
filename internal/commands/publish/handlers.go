package publishcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-notepub/internal/commands"
	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/internal/pipeline"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

const publishOperation = "article.publish"

var _ command.Commander[PublishCommand] = (*PublishHandler)(nil)

// ResultSink receives the pipeline result of a successful run. Commanders
// only return errors, so callers that need the result register a sink.
type ResultSink func(*pipeline.Result)

// PublishHandler runs the publish pipeline through the shared command handler.
type PublishHandler struct {
	inner *commands.Handler[PublishCommand]
}

// NewPublishHandler creates a handler bound to the supplied pipeline service.
func NewPublishHandler(service pipeline.Service, logger interfaces.Logger, sink ResultSink, opts ...commands.HandlerOption[PublishCommand]) *PublishHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg PublishCommand) error {
		status := interfaces.StatusDraft
		if msg.Publish {
			status = interfaces.StatusPublished
		}
		result, err := service.Publish(ctx, pipeline.Request{
			FilePath: msg.FilePath,
			Status:   status,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"article_id":      result.ArticleID,
			"status":          result.Status,
			"images_uploaded": result.UploadedImages(),
			"images_failed":   result.FailedImages(),
		}).Info("publish.command.completed")
		if sink != nil {
			sink(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishCommand]{
		commands.WithLogger[PublishCommand](baseLogger),
		commands.WithOperation[PublishCommand](publishOperation),
		commands.WithMessageFields(func(msg PublishCommand) map[string]any {
			fields := map[string]any{
				"file_path": msg.FilePath,
			}
			if msg.Publish {
				fields["publish"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishCommand].
func (h *PublishHandler) Execute(ctx context.Context, msg PublishCommand) error {
	return h.inner.Execute(ctx, msg)
}
