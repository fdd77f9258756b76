// Package markdown turns a Markdown source file into the pieces the publish
// pipeline needs: front matter (parsed, validated and re-composable), the
// body text, and platform HTML rendered through goldmark and sanitised for
// the publishing platform's accepted subset.
package markdown
