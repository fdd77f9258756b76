package interfaces

import "context"

// Logger defines the leveled logging contract used across the publisher.
// It mirrors github.com/goliatone/go-logger so the glog provider plugs in
// without reshaping calls. Messages are dotted event names followed by
// key/value pairs.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers, typically one per module
// (notepub.pipeline, notepub.remote, ...).
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for attaching persistent structured
// fields. The returned logger applies the fields to every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
