package media

import (
	"iter"
	"regexp"
	"strings"
)

var imageLinkPattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// ImageLink is a single `![alt](path)` occurrence. Start and End are byte
// offsets of the whole link within the scanned body.
type ImageLink struct {
	Alt   string
	Path  string
	Start int
	End   int
}

// Remote reports whether the link points at an http(s) URL.
func (l ImageLink) Remote() bool {
	return strings.HasPrefix(l.Path, "http://") || strings.HasPrefix(l.Path, "https://")
}

// ScanImageLinks yields every image link in body in left-to-right order.
// Each range over the returned sequence scans body again from the start.
func ScanImageLinks(body []byte) iter.Seq[ImageLink] {
	return func(yield func(ImageLink) bool) {
		for _, m := range imageLinkPattern.FindAllSubmatchIndex(body, -1) {
			link := ImageLink{
				Alt:   string(body[m[2]:m[3]]),
				Path:  string(body[m[4]:m[5]]),
				Start: m[0],
				End:   m[1],
			}
			if !yield(link) {
				return
			}
		}
	}
}
