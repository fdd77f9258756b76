// Package pipeline runs a publish: load and validate a Markdown file, upload
// its local images, render platform HTML, create the remote article and
// record it in the local history. Stages run sequentially and the context is
// checked between them.
package pipeline
