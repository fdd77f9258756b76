package markdown

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// DefaultTitle is applied when the metadata block carries no title.
const DefaultTitle = "Untitled"

// Format selects the metadata block syntax used by ComposeFrontMatter.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// known keys are lifted into typed FrontMatter fields; everything else is
// kept in Custom untouched.
var knownKeys = map[string]struct{}{
	"title":       {},
	"description": {},
	"image":       {},
	"tags":        {},
}

// ParseFrontMatter splits a leading metadata block from the Markdown body.
// It never fails: when the block is malformed the defaults are returned and
// the block is dropped from the body. The body is trimmed.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte) {
	source = bytes.TrimPrefix(source, utf8BOM)

	raw := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return frontMatterFromMap(nil), bytes.TrimSpace(stripMetadataBlock(source))
	}
	return frontMatterFromMap(raw), bytes.TrimSpace(body)
}

// BuildDocument parses source and records its checksum. Path is resolved to
// an absolute path when possible.
func BuildDocument(path string, source []byte) *interfaces.Document {
	fm, body := ParseFrontMatter(source)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha256.Sum256(source)
	return &interfaces.Document{
		FilePath:    path,
		FileName:    filepath.Base(path),
		FrontMatter: fm,
		Body:        body,
		Checksum:    sum[:],
	}
}

// LoadFile reads a Markdown file from disk and parses it.
func LoadFile(ctx context.Context, path string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("markdown read %s: %w", path, err)
	}
	return BuildDocument(path, data), nil
}

// ComposeFrontMatter renders metadata and body back into a Markdown source.
// Parsing the result yields the same FrontMatter field for field.
func ComposeFrontMatter(fm interfaces.FrontMatter, body []byte, format Format) ([]byte, error) {
	meta := frontMatterToMap(fm)

	var buf bytes.Buffer
	switch format {
	case FormatYAML, "":
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("compose yaml frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("compose yaml frontmatter: %w", err)
		}
		buf.WriteString("---\n")
	case FormatTOML:
		out, err := toml.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("compose toml frontmatter: %w", err)
		}
		buf.WriteString("+++\n")
		buf.Write(out)
		buf.WriteString("+++\n")
	default:
		return nil, fmt.Errorf("compose frontmatter: unsupported format %q", format)
	}

	if len(body) > 0 {
		buf.WriteByte('\n')
		buf.Write(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func frontMatterFromMap(raw map[string]any) interfaces.FrontMatter {
	fm := interfaces.FrontMatter{
		Title:  DefaultTitle,
		Custom: map[string]any{},
	}
	if raw == nil {
		return fm
	}

	if title, ok := scalarString(raw["title"]); ok && title != "" {
		fm.Title = title
	}
	if description, ok := scalarString(raw["description"]); ok {
		fm.Description = description
	}
	if image, ok := scalarString(raw["image"]); ok {
		fm.Image = image
	}
	fm.Tags = stringList(raw["tags"])

	for key, value := range raw {
		if _, known := knownKeys[key]; known {
			continue
		}
		fm.Custom[key] = normalizeValue(value)
	}
	return fm
}

func frontMatterToMap(fm interfaces.FrontMatter) map[string]any {
	meta := make(map[string]any, len(fm.Custom)+4)
	for key, value := range fm.Custom {
		meta[key] = value
	}
	meta["title"] = fm.Title
	if fm.Description != "" {
		meta["description"] = fm.Description
	}
	if fm.Image != "" {
		meta["image"] = fm.Image
	}
	if fm.Tags != nil {
		meta["tags"] = append([]string{}, fm.Tags...)
	}
	return meta
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case time.Time:
		return v.Format(time.RFC3339), true
	case map[string]any, map[any]any, []any:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// stringList accepts only list values; anything else means "no tags".
func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

// normalizeValue rewrites map[any]any produced by the YAML decoder into
// map[string]any so custom fields can be encoded again.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = normalizeValue(inner)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = normalizeValue(v[i])
		}
		return out
	default:
		return v
	}
}

// stripMetadataBlock drops a leading ---/+++ delimited block even when its
// contents could not be decoded.
func stripMetadataBlock(source []byte) []byte {
	text := strings.ReplaceAll(string(source), "\r\n", "\n")
	for _, delim := range []string{"---", "+++"} {
		if !strings.HasPrefix(text, delim+"\n") {
			continue
		}
		rest := text[len(delim)+1:]
		if idx := strings.Index(rest, "\n"+delim); idx >= 0 {
			after := rest[idx+len(delim)+1:]
			return []byte(after)
		}
	}
	return []byte(text)
}

// CustomKeys lists the preserved unknown metadata keys in sorted order.
func CustomKeys(fm interfaces.FrontMatter) []string {
	keys := make([]string, 0, len(fm.Custom))
	for key := range fm.Custom {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
