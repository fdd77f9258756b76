package commands

import (
	"errors"

	internalcommands "github.com/goliatone/go-notepub/internal/commands"
	historycmd "github.com/goliatone/go-notepub/internal/commands/history"
	publishcmd "github.com/goliatone/go-notepub/internal/commands/publish"
	"github.com/goliatone/go-notepub/internal/di"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via their own CLI.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
	// ResultSink receives every publish result produced through the registered handler.
	ResultSink publishcmd.ResultSink
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Close unsubscribes every dispatcher subscription. It is safe to call twice.
func (r *RegistrationResult) Close() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands builds the publish and history handlers backed by
// container and optionally registers them with registry/dispatcher integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0, 2),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	if service := container.PipelineService(); service != nil {
		register(publishcmd.NewPublishHandler(service, internalcommands.CommandLogger(provider, "publish"), opts.ResultSink))
	}
	if repo := container.HistoryRepository(); repo != nil {
		register(historycmd.NewDeleteHandler(repo, internalcommands.CommandLogger(provider, "history")))
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; container has no pipeline or history configured")
	}

	return result, errs
}
