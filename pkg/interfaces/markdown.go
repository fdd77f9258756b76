package interfaces

// HTMLConverter turns Markdown body text into the HTML subset accepted by the
// publishing platform. Implementations must be deterministic: the same input
// always yields the same bytes.
type HTMLConverter interface {
	Convert(markdown []byte) ([]byte, error)
}

// ConvertOptions customises Markdown rendering. Option names stay readable for
// configuration unmarshalling and CLI flags.
type ConvertOptions struct {
	Extensions   []string
	HardWraps    bool
	AllowRawHTML bool
}

// Document represents a Markdown file with parsed metadata and body text.
type Document struct {
	FilePath    string
	FileName    string
	FrontMatter FrontMatter
	Body        []byte
	// Checksum stores the SHA-256 digest of the original file content so
	// republish runs of an unchanged file can be correlated.
	Checksum []byte
}

// FrontMatter models the metadata block at the top of a Markdown file. Fields
// the publisher does not understand are kept in Custom so they survive a
// parse/compose round trip.
type FrontMatter struct {
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Image       string         `yaml:"image,omitempty" json:"image,omitempty"`
	Tags        []string       `yaml:"tags,omitempty" json:"tags,omitempty"`
	Custom      map[string]any `yaml:",inline" json:"custom,omitempty"`
}
