package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"
	"time"

	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/internal/runtimeconfig"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

const maxResponseBytes = 8 << 20

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport used for every attempt.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithClock injects the time source used by the rate limiter.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleeper injects the backoff wait.
func WithSleeper(sleep Sleeper) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Ensure(logger)
	}
}

// Client implements interfaces.PublishingClient over HTTP. A Client owns its
// rate limit window; share one instance to share the budget.
type Client struct {
	cfg     runtimeconfig.RemoteConfig
	http    *http.Client
	routes  *routes
	limiter *SlidingWindow
	now     func() time.Time
	sleep   Sleeper
	logger  interfaces.Logger

	mu      sync.RWMutex
	session *interfaces.Session
}

var _ interfaces.PublishingClient = (*Client)(nil)

// New builds a client for cfg.
func New(cfg runtimeconfig.RemoteConfig, opts ...Option) (*Client, error) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, runtimeconfig.ErrRateLimitInvalid
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		now:    time.Now,
		sleep:  sleepContext,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}

	r, err := newRoutes(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	c.routes = r
	c.limiter = NewSlidingWindow(cfg.RateLimitPerMinute, DefaultWindow, c.now)
	return c, nil
}

// SetSession installs the cookie set sent with every request.
func (c *Client) SetSession(session interfaces.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := session
	copied.Cookies = append([]interfaces.Cookie(nil), session.Cookies...)
	c.session = &copied
}

// RequestStats reports the rate limit window usage.
func (c *Client) RequestStats() interfaces.RequestStats {
	return c.limiter.Stats()
}

// CreateArticle submits a new article.
func (c *Client) CreateArticle(ctx context.Context, req interfaces.CreateArticleRequest) (*interfaces.ArticleRecord, error) {
	url, err := c.routes.url(routeCreateArticle, nil)
	if err != nil {
		return nil, requestError(err)
	}
	var out interfaces.ArticleRecord
	if err := c.do(ctx, "create_article", http.MethodPost, url, jsonBody(req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateArticle applies a partial update to an existing article.
func (c *Client) UpdateArticle(ctx context.Context, id string, req interfaces.UpdateArticleRequest) (*interfaces.ArticleRecord, error) {
	url, err := c.routes.url(routeUpdateArticle, map[string]any{"id": id})
	if err != nil {
		return nil, requestError(err)
	}
	var out interfaces.ArticleRecord
	if err := c.do(ctx, "update_article", http.MethodPut, url, jsonBody(req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage sends the raw image as the multipart part "file".
func (c *Client) UploadImage(ctx context.Context, data []byte, fileName, mimeType string) (*interfaces.UploadedImage, error) {
	url, err := c.routes.url(routeUploadImage, nil)
	if err != nil {
		return nil, requestError(err)
	}
	var out interfaces.UploadedImage
	if err := c.do(ctx, "upload_image", http.MethodPost, url, multipartBody(data, fileName, mimeType), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// bodyFunc builds a fresh request body for every attempt.
type bodyFunc func() (io.Reader, string, error)

func jsonBody(payload any) bodyFunc {
	return func() (io.Reader, string, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func multipartBody(data []byte, fileName, mimeType string) bodyFunc {
	return func() (io.Reader, string, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
		header.Set("Content-Type", mimeType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
		if err := writer.Close(); err != nil {
			return nil, "", err
		}
		return &buf, writer.FormDataContentType(), nil
	}
}

func (c *Client) cookieHeader() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", false
	}
	return c.session.CookieHeader(), true
}

// do runs attempt 0..MaxRetries. The limiter is consulted before every
// attempt and a full window ends the call immediately.
func (c *Client) do(ctx context.Context, op, method, url string, body bodyFunc, out any) error {
	cookie, ok := c.cookieHeader()
	if !ok {
		return authError()
	}

	logger := logging.WithFields(c.logger, map[string]any{
		"operation": op,
		"url":       url,
	})

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Acquire(); err != nil {
			var rl *RateLimitError
			if errors.As(err, &rl) {
				logger.Warn("remote.request.rate_limited", "wait", rl.Wait)
				return rateLimitError(rl)
			}
			return err
		}

		attempts++
		data, err := c.attempt(ctx, method, url, cookie, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return invalidResponseError(err)
			}
			logger.Debug("remote.request.success", "attempt", attempt+1)
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("remote %s: %w", op, ctxErr)
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			logger.Warn("remote.request.rejected", "status", httpErr.StatusCode)
			return clientError(httpErr)
		}

		var reqErr *requestBuildError
		if errors.As(err, &reqErr) {
			return requestError(reqErr.err)
		}

		lastErr = err
		if attempt == c.cfg.MaxRetries {
			break
		}

		wait := c.cfg.RetryDelay << attempt
		logger.Warn("remote.request.retry",
			"attempt", attempt+1,
			"max_attempts", c.cfg.MaxRetries+1,
			"wait", wait,
			"error", err,
		)
		if err := c.sleep(ctx, wait); err != nil {
			return fmt.Errorf("remote %s: %w", op, err)
		}
	}

	logger.Error("remote.request.exhausted", "attempts", attempts, "error", lastErr)
	return unavailableError(lastErr, attempts)
}

type requestBuildError struct {
	err error
}

func (e *requestBuildError) Error() string { return e.err.Error() }

// attempt performs one bounded round trip.
func (c *Client) attempt(ctx context.Context, method, url, cookie string, body bodyFunc) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reader, contentType, err := body()
	if err != nil {
		return nil, &requestBuildError{err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &requestBuildError{err: err}
	}
	req.Header.Set("Cookie", cookie)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &transportError{err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			URL:        url,
			Body:       string(data),
		}
	}
	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
