package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// DefaultSessionLifetime is applied to sessions captured without an explicit
// expiry.
const DefaultSessionLifetime = 24 * time.Hour

var (
	ErrNoSession        = errors.New("auth: no session stored, log in first")
	ErrSessionExpired   = errors.New("auth: stored session has expired, log in again")
	ErrNoSessionCookie  = errors.New("auth: no session or auth cookie found")
	ErrCookieFileFormat = errors.New("auth: cookie file must be a JSON array or an object with a cookies field")
)

const (
	sessionMissingCode = "SESSION_MISSING"
	sessionExpiredCode = "SESSION_EXPIRED"
	sessionStoreCode   = "SESSION_STORE_FAILED"
)

// IsSessionCookie reports whether a cookie name looks like it carries the
// login session.
func IsSessionCookie(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "session") || strings.Contains(lower, "auth")
}

// HasSessionCookie reports whether any cookie qualifies as a session cookie.
func HasSessionCookie(cookies []interfaces.Cookie) bool {
	for _, cookie := range cookies {
		if IsSessionCookie(cookie.Name) {
			return true
		}
	}
	return false
}

// NewSession wraps captured cookies with the default lifetime.
func NewSession(cookies []interfaces.Cookie, now time.Time) interfaces.Session {
	return interfaces.Session{
		Cookies:   append([]interfaces.Cookie(nil), cookies...),
		ExpiresAt: now.Add(DefaultSessionLifetime),
	}
}

// ParseCookieExport decodes a browser cookie export. Both a bare array and
// an object with a cookies field are accepted.
func ParseCookieExport(data []byte) ([]interfaces.Cookie, error) {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "["):
		var cookies []interfaces.Cookie
		if err := json.Unmarshal([]byte(trimmed), &cookies); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCookieFileFormat, err)
		}
		return cookies, nil
	case strings.HasPrefix(trimmed, "{"):
		var wrapped struct {
			Cookies []interfaces.Cookie `json:"cookies"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCookieFileFormat, err)
		}
		return wrapped.Cookies, nil
	default:
		return nil, ErrCookieFileFormat
	}
}

// StoreOption configures SessionStore.
type StoreOption func(*SessionStore)

// WithStoreClock overrides the clock used for expiry checks.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStoreLogger sets the logger used by the store.
func WithStoreLogger(logger interfaces.Logger) StoreOption {
	return func(s *SessionStore) {
		s.logger = logging.Ensure(logger)
	}
}

// SessionStore persists the cookie session as JSON next to the history file.
type SessionStore struct {
	path   string
	now    func() time.Time
	logger interfaces.Logger
}

var _ interfaces.SessionSource = (*SessionStore)(nil)

// NewSessionStore returns a store backed by path.
func NewSessionStore(path string, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		path:   path,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the session file location.
func (s *SessionStore) Path() string { return s.path }

// Load reads the stored session regardless of expiry.
func (s *SessionStore) Load(ctx context.Context) (*interfaces.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerrors.Wrap(ErrNoSession, goerrors.CategoryAuth, "session not found").
				WithTextCode(sessionMissingCode)
		}
		return nil, storeError(err, "read session")
	}
	var session interfaces.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, storeError(err, "decode session")
	}
	return &session, nil
}

// Session implements interfaces.SessionSource and only yields sessions that
// are still valid.
func (s *SessionStore) Session(ctx context.Context) (*interfaces.Session, error) {
	session, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !session.Valid(s.now()) {
		s.logger.Warn("auth.session.expired", "path", s.path, "expires_at", session.ExpiresAt)
		return nil, goerrors.Wrap(ErrSessionExpired, goerrors.CategoryAuth, "session expired").
			WithTextCode(sessionExpiredCode)
	}
	return session, nil
}

// Save writes the session with owner-only permissions.
func (s *SessionStore) Save(ctx context.Context, session interfaces.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(session.Cookies) == 0 {
		return goerrors.Wrap(ErrNoSessionCookie, goerrors.CategoryValidation, "session has no cookies").
			WithTextCode(sessionStoreCode)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return storeError(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return storeError(err, "create session directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return storeError(err, "create temp session file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return storeError(err, "write session")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return storeError(err, "chmod session")
	}
	if err := tmp.Close(); err != nil {
		return storeError(err, "close session")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return storeError(err, "replace session")
	}
	s.logger.Info("auth.session.saved", "path", s.path, "cookies", len(session.Cookies), "expires_at", session.ExpiresAt)
	return nil
}

// Import turns a cookie export into a stored session. At least one session
// cookie must be present.
func (s *SessionStore) Import(ctx context.Context, cookies []interfaces.Cookie) (*interfaces.Session, error) {
	if !HasSessionCookie(cookies) {
		return nil, goerrors.Wrap(ErrNoSessionCookie, goerrors.CategoryValidation, "cookie export has no session cookie").
			WithTextCode(sessionStoreCode)
	}
	session := NewSession(cookies, s.now())
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Clear removes the stored session. Clearing an absent session is not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storeError(err, "remove session")
	}
	s.logger.Info("auth.session.cleared", "path", s.path)
	return nil
}

func storeError(err error, action string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "session store: "+action).
		WithTextCode(sessionStoreCode)
}
