package media

import (
	"context"
	"os"
	"path/filepath"

	"github.com/goliatone/go-notepub/internal/logging"
	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger used to report skipped images.
func WithLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logging.Ensure(logger)
	}
}

// WithMaxSize overrides the upload size ceiling. Non-positive values keep the default.
func WithMaxSize(size int64) ResolverOption {
	return func(r *Resolver) {
		if size > 0 {
			r.maxSize = size
		}
	}
}

// Resolver maps image links in a Markdown body onto uploadable local files.
type Resolver struct {
	logger  interfaces.Logger
	maxSize int64
}

var _ interfaces.ImageResolver = (*Resolver)(nil)

// NewResolver constructs a resolver with a 10 MiB ceiling and a no-op logger.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		logger:  logging.NoOp(),
		maxSize: DefaultMaxImageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a reference for every local image link that points at an
// existing regular file within the size ceiling and of a supported type.
// Other links are skipped with a warning. Order follows the body; repeated
// paths yield repeated references.
func (r *Resolver) Resolve(ctx context.Context, body []byte, baseDir string) []*interfaces.ImageReference {
	var refs []*interfaces.ImageReference

	for link := range ScanImageLinks(body) {
		if ctx.Err() != nil {
			r.logger.Warn("media.resolve.cancelled", "error", ctx.Err())
			return refs
		}
		if link.Remote() {
			continue
		}

		absolute := resolvePath(baseDir, link.Path)
		info, err := os.Stat(absolute)
		if err != nil {
			r.skip(absolute, "unreadable", "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			r.skip(absolute, "not_a_file")
			continue
		}
		if info.Size() > r.maxSize {
			r.skip(absolute, "too_large", "size", info.Size(), "max_size", r.maxSize)
			continue
		}
		mime := MimeTypeFor(absolute)
		if !Supported(mime) {
			r.skip(absolute, "unsupported_type", "mime_type", mime)
			continue
		}

		refs = append(refs, &interfaces.ImageReference{
			OriginalPath: link.Path,
			AbsolutePath: absolute,
			MimeType:     mime,
			Size:         info.Size(),
		})
	}

	return refs
}

func (r *Resolver) skip(path, reason string, args ...any) {
	fields := append([]any{"path", path, "reason", reason}, args...)
	r.logger.Warn("media.image.skipped", fields...)
}

func resolvePath(baseDir, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// ReadImage loads the bytes of a resolved reference.
func ReadImage(ctx context.Context, ref *interfaces.ImageReference) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(ref.AbsolutePath)
}
