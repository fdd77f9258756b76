package commands

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"

	historycmd "github.com/goliatone/go-notepub/internal/commands/history"
	publishcmd "github.com/goliatone/go-notepub/internal/commands/publish"
	"github.com/goliatone/go-notepub/internal/di"
	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/internal/runtimeconfig"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

func newContainer(t *testing.T) *di.Container {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()

	container, err := di.NewContainer(cfg, di.WithLoggerProvider(silentProvider{}))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	return container
}

func TestRegisterContainerCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}

	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{
		Registry:   registry,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 2 {
		t.Fatalf("expected publish and history handlers, got %d", len(result.Handlers))
	}
	if len(registry.handlers) != len(result.Handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(result.Subscriptions) != len(result.Handlers) {
		t.Fatalf("expected one subscription per handler, got %d", len(result.Subscriptions))
	}

	result.Close()
	for _, sub := range dispatcher.subscriptions {
		if !sub.unsubscribed {
			t.Fatal("expected Close to unsubscribe every handler")
		}
	}
	result.Close()

	var hasPublish, hasDelete bool
	for _, handler := range result.Handlers {
		switch handler.(type) {
		case *publishcmd.PublishHandler:
			hasPublish = true
		case *historycmd.DeleteHandler:
			hasDelete = true
		}
	}
	if !hasPublish || !hasDelete {
		t.Fatalf("unexpected handler set %#v", result.Handlers)
	}
}

func TestRegisterContainerCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) == 0 {
		t.Fatal("expected handlers to be built even without registrars")
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestRegisterContainerCommandsNilContainer(t *testing.T) {
	result, err := RegisterContainerCommands(nil, RegistrationOptions{})
	if err != nil {
		t.Fatalf("expected nil container to be a no-op, got %v", err)
	}
	if len(result.Handlers) != 0 {
		t.Fatalf("expected no handlers, got %d", len(result.Handlers))
	}
}

func TestRegisterContainerCommandsJoinsRegistryErrors(t *testing.T) {
	boom := errors.New("registry full")
	registry := &recordingRegistry{err: boom}

	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{Registry: registry})
	if !errors.Is(err, boom) {
		t.Fatalf("expected registry error, got %v", err)
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("expected handlers to be returned alongside the error, got %d", len(result.Handlers))
	}
}

func TestRegisteredDeleteHandlerRemovesRecord(t *testing.T) {
	container := newContainer(t)
	ctx := context.Background()
	if err := container.HistoryRepository().Save(ctx, interfaces.HistoryRecord{ID: "n7", Title: "Seven", Status: interfaces.StatusDraft}); err != nil {
		t.Fatalf("save: %v", err)
	}

	result, err := RegisterContainerCommands(container, RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	var handler command.Commander[historycmd.DeleteHistoryCommand]
	for _, h := range result.Handlers {
		if typed, ok := h.(*historycmd.DeleteHandler); ok {
			handler = typed
		}
	}
	if handler == nil {
		t.Fatal("delete handler not registered")
	}
	if err := handler.Execute(ctx, historycmd.DeleteHistoryCommand{ID: "n7"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	record, err := container.HistoryRepository().FindByID(ctx, "n7")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record != nil {
		t.Fatalf("expected record to be removed, got %+v", record)
	}
}

type silentProvider struct{}

func (silentProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

type recordingRegistry struct {
	handlers []any
	err      error
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	if r.err != nil {
		return r.err
	}
	r.handlers = append(r.handlers, handler)
	return nil
}

type recordingDispatcher struct {
	subscriptions []*recordingSubscription
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	sub := &recordingSubscription{handler: handler}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type recordingSubscription struct {
	handler      any
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() {
	s.unsubscribed = true
}
