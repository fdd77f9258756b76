package remote

import (
	"errors"
	"fmt"
	"math"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	authNotConfiguredCode = "AUTH_NOT_CONFIGURED"
	rateLimitCode         = "RATE_LIMIT_EXCEEDED"
	clientErrorCode       = "REMOTE_CLIENT_ERROR"
	unavailableCode       = "REMOTE_UNAVAILABLE"
	invalidResponseCode   = "REMOTE_RESPONSE_INVALID"
	requestBuildCode      = "REMOTE_REQUEST_INVALID"
)

// ErrAuthNotConfigured is returned when an operation runs before SetSession.
var ErrAuthNotConfigured = errors.New("remote: session not configured, call SetSession first")

// RateLimitError reports that the local request window is full.
type RateLimitError struct {
	Wait  time.Duration
	Limit int
}

func (e *RateLimitError) Error() string {
	seconds := int(math.Ceil(e.Wait.Seconds()))
	return fmt.Sprintf("rate limit exceeded (%d requests/minute), wait %d seconds", e.Limit, seconds)
}

// HTTPError is a non-2xx response from the platform.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Status, e.URL)
}

// Retryable reports whether the platform signalled a server side failure.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode >= 500
}

// transportError marks network level failures and per-attempt timeouts.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func authError() error {
	return goerrors.Wrap(ErrAuthNotConfigured, goerrors.CategoryAuth, "remote session missing").
		WithTextCode(authNotConfiguredCode)
}

func rateLimitError(err *RateLimitError) error {
	return goerrors.Wrap(err, goerrors.CategoryRateLimit, "local rate limit reached").
		WithTextCode(rateLimitCode)
}

func clientError(err *HTTPError) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "remote rejected the request").
		WithTextCode(clientErrorCode)
}

func unavailableError(err error, attempts int) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf("remote unavailable after %d attempts", attempts)).
		WithTextCode(unavailableCode)
}

func invalidResponseError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "remote response could not be decoded").
		WithTextCode(invalidResponseCode)
}

func requestError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "remote request could not be built").
		WithTextCode(requestBuildCode)
}
