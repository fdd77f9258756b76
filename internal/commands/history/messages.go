package historycmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const deleteRecordMessageType = "notepub.history.delete"

// DeleteHistoryCommand removes one record from the local history. The
// remote article is left untouched.
type DeleteHistoryCommand struct {
	ID string `json:"id"`
}

// Type implements command.Message.
func (DeleteHistoryCommand) Type() string { return deleteRecordMessageType }

// Validate ensures an id is present before handlers execute.
func (cmd DeleteHistoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ID, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("notepub.history.delete.id_required", "id is required")
			}
			return nil
		})),
	)
}
