package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// LargeHTMLThreshold is the soft size above which InspectHTML warns.
const LargeHTMLThreshold = 1_000_000

var (
	scriptElement     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleElement      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	doubleQuotedEvent = regexp.MustCompile(`(?i)\son\w+\s*=\s*"[^"]*"`)
	singleQuotedEvent = regexp.MustCompile(`(?i)\son\w+\s*=\s*'[^']*'`)
	deniedValues      = regexp.MustCompile(`(?i)datauri|vbscript:|javascript:`)

	scriptOpenTag = regexp.MustCompile(`(?i)<script`)
	eventHandler  = regexp.MustCompile(`(?i)\son\w+\s*=`)
)

// HTMLReport is the outcome of InspectHTML. Valid is true when no warning
// was raised.
type HTMLReport struct {
	Valid    bool
	Warnings []string
}

// SanitizeHTML strips script and style elements, inline event handlers and
// script-executing URL schemes, then trims surrounding whitespace.
func SanitizeHTML(html []byte) []byte {
	out := scriptElement.ReplaceAll(html, nil)
	out = styleElement.ReplaceAll(out, nil)
	out = doubleQuotedEvent.ReplaceAll(out, nil)
	out = singleQuotedEvent.ReplaceAll(out, nil)
	// removing one scheme can splice another together ("javajavascript:script:")
	for deniedValues.Match(out) {
		out = deniedValues.ReplaceAll(out, nil)
	}
	return bytes.TrimSpace(out)
}

// InspectHTML reports HTML that still looks risky or is unusually large. It
// never mutates its input and never blocks publication.
func InspectHTML(html []byte) HTMLReport {
	var warnings []string
	if scriptOpenTag.Match(html) {
		warnings = append(warnings, "HTML contains <script> tags (will be stripped)")
	}
	if eventHandler.Match(html) {
		warnings = append(warnings, "HTML contains event handlers (will be removed)")
	}
	if len(html) > LargeHTMLThreshold {
		warnings = append(warnings, "HTML content is very large (>1MB)")
	}
	return HTMLReport{Valid: len(warnings) == 0, Warnings: warnings}
}

// Render converts Markdown with the given converter and sanitises the result.
func Render(converter interfaces.HTMLConverter, markdown []byte) ([]byte, error) {
	if converter == nil {
		return nil, fmt.Errorf("markdown render: converter is nil")
	}
	html, err := converter.Convert(markdown)
	if err != nil {
		return nil, err
	}
	return SanitizeHTML(html), nil
}
