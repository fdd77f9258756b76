package auth

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvEmail    = "NOTE_EMAIL"
	EnvPassword = "NOTE_PASSWORD"
	EnvUserID   = "NOTE_USER_ID"
)

// ErrCredentialsMissing is returned when email or password is not configured.
var ErrCredentialsMissing = errors.New("auth: NOTE_EMAIL and NOTE_PASSWORD must be set")

// Credentials identify the account used for the interactive login.
type Credentials struct {
	Email    string
	Password string
	UserID   string
}

// CredentialSource supplies login credentials.
type CredentialSource interface {
	Credentials(ctx context.Context) (*Credentials, error)
}

// EnvOption configures EnvSource.
type EnvOption func(*EnvSource)

// WithLookup replaces os.LookupEnv.
func WithLookup(lookup func(string) (string, bool)) EnvOption {
	return func(s *EnvSource) {
		if lookup != nil {
			s.lookup = lookup
		}
	}
}

// WithDotEnv sets the .env files consulted for keys missing from the
// process environment. Missing files are ignored.
func WithDotEnv(paths ...string) EnvOption {
	return func(s *EnvSource) {
		s.dotenv = append([]string(nil), paths...)
	}
}

// EnvSource reads credentials from the environment, falling back to .env
// files. Process variables win over file values.
type EnvSource struct {
	lookup func(string) (string, bool)
	dotenv []string
}

var _ CredentialSource = (*EnvSource)(nil)

// NewEnvSource builds a source that consults ./.env by default.
func NewEnvSource(opts ...EnvOption) *EnvSource {
	s := &EnvSource{
		lookup: os.LookupEnv,
		dotenv: []string{".env"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credentials returns the configured account or ErrCredentialsMissing.
func (s *EnvSource) Credentials(ctx context.Context) (*Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := s.readDotEnv()
	get := func(key string) string {
		if value, ok := s.lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return strings.TrimSpace(file[key])
	}

	creds := &Credentials{
		Email:    get(EnvEmail),
		Password: get(EnvPassword),
		UserID:   get(EnvUserID),
	}
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrCredentialsMissing
	}
	return creds, nil
}

func (s *EnvSource) readDotEnv() map[string]string {
	values := map[string]string{}
	for _, path := range s.dotenv {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		parsed, err := godotenv.Read(path)
		if err != nil {
			continue
		}
		for key, value := range parsed {
			if _, seen := values[key]; !seen {
				values[key] = value
			}
		}
	}
	return values
}
