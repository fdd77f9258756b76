package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// platformExtensions is what the editor on the remote side can display. Names
// outside this table are dropped when building the engine.
var platformExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"footnote":      extension.Footnote,
}

var extensionAliases = map[string]string{
	"tables":   "table",
	"autolink": "linkify",
	"strike":   "strikethrough",
}

var defaultExtensions = []string{"gfm", "linkify", "tasklist"}

// GoldmarkConverter renders article bodies with goldmark. It is safe for
// concurrent use.
type GoldmarkConverter struct {
	engine     goldmark.Markdown
	extensions []string
}

var _ interfaces.HTMLConverter = (*GoldmarkConverter)(nil)

// NewGoldmarkConverter builds a converter for the platform's HTML subset:
// plain HTML5 tags, no generated heading ids, raw HTML escaped unless
// AllowRawHTML is set. An empty extension list means gfm, linkify and tasklist.
func NewGoldmarkConverter(opts interfaces.ConvertOptions) *GoldmarkConverter {
	names := ExtensionNames(opts.Extensions)
	if len(opts.Extensions) == 0 {
		names = slices.Clone(defaultExtensions)
	}

	extenders := make([]goldmark.Extender, 0, len(names))
	for _, name := range names {
		extenders = append(extenders, platformExtensions[name])
	}

	var renderOpts []renderer.Option
	if opts.HardWraps {
		renderOpts = append(renderOpts, html.WithHardWraps())
	}
	if opts.AllowRawHTML {
		renderOpts = append(renderOpts, html.WithUnsafe())
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithRendererOptions(renderOpts...),
	)
	return &GoldmarkConverter{engine: engine, extensions: names}
}

// Extensions lists the extension names the engine was built with.
func (c *GoldmarkConverter) Extensions() []string {
	return slices.Clone(c.extensions)
}

// Convert renders Markdown into HTML. Output is not sanitised; see Render.
func (c *GoldmarkConverter) Convert(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtensionNames normalises configured names: lower case, aliases resolved,
// unknown and repeated names removed, first occurrence order kept.
func ExtensionNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if alias, ok := extensionAliases[key]; ok {
			key = alias
		}
		if _, ok := platformExtensions[key]; !ok || slices.Contains(out, key) {
			continue
		}
		out = append(out, key)
	}
	return out
}
