package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidationFailed = "NOTEPUB_COMMAND_INVALID"
	codeCanceled         = "NOTEPUB_COMMAND_CANCELED"
	codeTimeout          = "NOTEPUB_COMMAND_TIMEOUT"
	codeContextError     = "NOTEPUB_COMMAND_CONTEXT_ERROR"
	codeNotFound         = "NOTEPUB_COMMAND_NOT_FOUND"
	codeFailed           = "NOTEPUB_COMMAND_FAILED"
)

// ErrNotFound marks a command whose target does not exist. Handlers wrap it
// with their own sentinel so callers can match either.
var ErrNotFound = errors.New("command target not found")

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message is invalid").
		WithTextCode(codeValidationFailed)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command cancelled").
			WithTextCode(codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").
			WithTextCode(codeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(codeContextError)
	}
}

// wrapExecuteError leaves errors that already carry a category alone so the
// pipeline taxonomy (auth, rate limit, remote) reaches the caller intact.
func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "command target not found").
			WithTextCode(codeNotFound)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
		WithTextCode(codeFailed)
}
