package interfaces

import (
	"context"
	"strings"
	"time"
)

// ArticleStatus is the publication state reported by the remote service.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

// Valid reports whether the status is one the platform understands.
func (s ArticleStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Cookie mirrors a browser cookie captured after login.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Session is the cookie set that authenticates requests against the platform.
type Session struct {
	Cookies   []Cookie  `json:"cookies"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CookieHeader renders the Cookie request header value.
func (s Session) CookieHeader() string {
	parts := make([]string, 0, len(s.Cookies))
	for _, cookie := range s.Cookies {
		if cookie.Name == "" {
			continue
		}
		parts = append(parts, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(parts, "; ")
}

// Valid reports whether the session carries cookies and has not expired.
// A zero ExpiresAt means the session never expires locally.
func (s Session) Valid(now time.Time) bool {
	if len(s.Cookies) == 0 {
		return false
	}
	return s.ExpiresAt.IsZero() || s.ExpiresAt.After(now)
}

// SessionSource supplies the authenticated session established out of band.
type SessionSource interface {
	Session(ctx context.Context) (*Session, error)
}

// CreateArticleRequest is the payload for POST /api/v1/text_notes.
type CreateArticleRequest struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	MediaIDs []string `json:"mediaIds,omitempty"`
}

// UpdateArticleRequest is the partial payload for PUT /api/v1/text_notes/{id}.
type UpdateArticleRequest struct {
	Title    *string        `json:"title,omitempty"`
	Body     *string        `json:"body,omitempty"`
	MediaIDs []string       `json:"mediaIds,omitempty"`
	Status   *ArticleStatus `json:"status,omitempty"`
}

// ArticleRecord is the article as returned by the remote service.
type ArticleRecord struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	HTMLBody  string        `json:"htmlBody"`
	MediaIDs  []string      `json:"mediaIds"`
	Status    ArticleStatus `json:"status"`
	LikeCount int           `json:"likeCount"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// UploadedImage is the response of POST /api/v1/upload_image.
type UploadedImage struct {
	MediaID      string `json:"mediaId"`
	URL          string `json:"url"`
	OriginalURL  string `json:"originalUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	Width        *int   `json:"width,omitempty"`
	Height       *int   `json:"height,omitempty"`
}

// RequestStats describes the client's rate limit window.
type RequestStats struct {
	RequestsInLastMinute int
	Remaining            int
}

// PublishingClient talks to the remote publishing platform. Every operation
// requires a session set through SetSession.
type PublishingClient interface {
	SetSession(session Session)
	CreateArticle(ctx context.Context, req CreateArticleRequest) (*ArticleRecord, error)
	UpdateArticle(ctx context.Context, id string, req UpdateArticleRequest) (*ArticleRecord, error)
	UploadImage(ctx context.Context, data []byte, fileName, mimeType string) (*UploadedImage, error)
	RequestStats() RequestStats
}
