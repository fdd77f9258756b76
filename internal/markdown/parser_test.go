package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

func TestGoldmarkConverter_Convert(t *testing.T) {
	converter := NewGoldmarkConverter(interfaces.ConvertOptions{})

	html, err := converter.Convert([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkConverter_HardWraps(t *testing.T) {
	converter := NewGoldmarkConverter(interfaces.ConvertOptions{HardWraps: true})

	html, err := converter.Convert([]byte("line one\nline two"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(string(html), "line one<br") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkConverter_RawHTMLIsOmittedByDefault(t *testing.T) {
	source := []byte("before\n\n<div onclick=\"x()\">raw</div>\n\nafter")

	html, err := NewGoldmarkConverter(interfaces.ConvertOptions{}).Convert(source)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if strings.Contains(string(html), "onclick") {
		t.Fatalf("expected raw HTML to be omitted, got %q", html)
	}

	html, err = NewGoldmarkConverter(interfaces.ConvertOptions{AllowRawHTML: true}).Convert(source)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(string(html), "<div onclick") {
		t.Fatalf("expected raw HTML with AllowRawHTML, got %q", html)
	}
}

func TestGoldmarkConverter_Deterministic(t *testing.T) {
	converter := NewGoldmarkConverter(interfaces.ConvertOptions{})
	source := []byte("- [x] done\n- [ ] todo\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\nhttps://example.com")

	first, err := converter.Convert(source)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	second, err := converter.Convert(source)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected identical output\nfirst:  %s\nsecond: %s", first, second)
	}
	if !strings.Contains(string(first), "<table>") {
		t.Fatalf("expected GFM table, got %q", first)
	}
	if !strings.Contains(string(first), `<a href="https://example.com">`) {
		t.Fatalf("expected linkified URL, got %q", first)
	}
}

func TestExtensionNamesNormalises(t *testing.T) {
	got := ExtensionNames([]string{"table", " TABLES ", "emoji", "", "autolink", "footnote"})
	want := []string{"table", "linkify", "footnote"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ExtensionNames = %v, want %v", got, want)
	}
}

func TestGoldmarkConverter_DefaultExtensions(t *testing.T) {
	converter := NewGoldmarkConverter(interfaces.ConvertOptions{})
	if got := strings.Join(converter.Extensions(), ","); got != "gfm,linkify,tasklist" {
		t.Fatalf("unexpected default extensions %q", got)
	}

	restricted := NewGoldmarkConverter(interfaces.ConvertOptions{Extensions: []string{"emoji"}})
	if len(restricted.Extensions()) != 0 {
		t.Fatalf("expected unknown names to leave no extensions, got %v", restricted.Extensions())
	}
	html, err := restricted.Convert([]byte("| a |\n|---|\n| 1 |"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if strings.Contains(string(html), "<table>") {
		t.Fatalf("expected no table without the extension, got %q", html)
	}
}

func TestGoldmarkConverter_NoHeadingIDs(t *testing.T) {
	html, err := NewGoldmarkConverter(interfaces.ConvertOptions{}).Convert([]byte("## Section"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := strings.TrimSpace(string(html)); got != "<h2>Section</h2>" {
		t.Fatalf("expected plain heading, got %q", got)
	}
}
