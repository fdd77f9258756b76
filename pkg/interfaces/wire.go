package interfaces

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads the timestamp shapes seen in remote responses and
// stored history. Blank or unrecognised values yield the zero time.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// looseTime accepts any JSON value; non-string values decode to the zero time.
type looseTime struct {
	time.Time
}

func (t *looseTime) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = ParseTimestamp(value)
	return nil
}

// looseID accepts a JSON string or number.
type looseID string

func (id *looseID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*id = looseID(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", data)
	}
	*id = looseID(number.String())
	return nil
}

func (r *ArticleRecord) UnmarshalJSON(data []byte) error {
	type plain ArticleRecord
	var wire struct {
		plain
		ID        looseID   `json:"id"`
		UserID    looseID   `json:"userId"`
		CreatedAt looseTime `json:"createdAt"`
		UpdatedAt looseTime `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = ArticleRecord(wire.plain)
	r.ID = string(wire.ID)
	r.UserID = string(wire.UserID)
	r.CreatedAt = wire.CreatedAt.Time
	r.UpdatedAt = wire.UpdatedAt.Time
	return nil
}

// UnmarshalJSON tolerates a blank or malformed postedAt so one bad record
// does not make the whole history unreadable.
func (r *HistoryRecord) UnmarshalJSON(data []byte) error {
	type plain HistoryRecord
	var wire struct {
		plain
		PostedAt looseTime `json:"postedAt"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = HistoryRecord(wire.plain)
	r.PostedAt = wire.PostedAt.Time
	return nil
}
