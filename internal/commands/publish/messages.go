package publishcmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const publishMessageType = "notepub.article.publish"

var markdownExtensions = map[string]struct{}{
	".md":       {},
	".markdown": {},
}

// PublishCommand asks the pipeline to post one Markdown file. Articles are
// created as drafts unless Publish is set.
type PublishCommand struct {
	FilePath string `json:"file_path"`
	Publish  bool   `json:"publish,omitempty"`
}

// Type implements command.Message.
func (PublishCommand) Type() string { return publishMessageType }

// Validate ensures the command names a Markdown file before handlers execute.
func (cmd PublishCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.FilePath,
			validation.Required.ErrorObject(validation.NewError(
				"notepub.article.publish.file_required", "file path is required")),
			validation.By(func(value any) error {
				path, _ := value.(string)
				if strings.TrimSpace(path) == "" {
					return validation.NewError("notepub.article.publish.file_required", "file path is required")
				}
				ext := strings.ToLower(filepath.Ext(path))
				if _, ok := markdownExtensions[ext]; !ok {
					return validation.NewError("notepub.article.publish.file_extension", "file must have a .md or .markdown extension")
				}
				return nil
			}),
		),
	)
}
