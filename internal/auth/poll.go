package auth

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

const (
	DefaultPollInterval = time.Second
	DefaultLoginTimeout = 2 * time.Minute

	loginTimeoutCode = "LOGIN_TIMEOUT"
)

// ErrLoginTimeout is returned when no session cookie appears before the deadline.
var ErrLoginTimeout = errors.New("auth: login timed out before a session cookie appeared")

// CookieProbe returns the cookies currently held by the login surface.
type CookieProbe func(ctx context.Context) ([]interfaces.Cookie, error)

// PollForSession calls probe every interval until a session cookie shows up
// or timeout elapses. Probe errors are treated as "not yet". The returned
// session expires DefaultSessionLifetime after capture.
func PollForSession(ctx context.Context, probe CookieProbe, interval, timeout time.Duration) (*interfaces.Session, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}

	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		cookies, err := probe(deadline)
		if err == nil && HasSessionCookie(cookies) {
			session := NewSession(cookies, time.Now())
			return &session, nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-deadline.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			cause := ErrLoginTimeout
			if lastErr != nil {
				cause = errors.Join(ErrLoginTimeout, lastErr)
			}
			return nil, goerrors.Wrap(cause, goerrors.CategoryAuth, "interactive login timed out").
				WithTextCode(loginTimeoutCode)
		case <-ticker.C:
		}
	}
}
