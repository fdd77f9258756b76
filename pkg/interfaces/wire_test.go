package interfaces

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"2024-05-01T10:00:00Z":      want,
		"2024-05-01T19:00:00+09:00": want,
		"2024-05-01T10:00:00":       want,
		"2024-05-01 10:00:00":       want,
		" 2024-05-01 10:00:00Z ":    want,
		"2024-05-01":                time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		"":                          {},
		"soon":                      {},
	}
	for input, expected := range cases {
		if got := ParseTimestamp(input); !got.Equal(expected) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestArticleRecordRejectsStructuredID(t *testing.T) {
	var record ArticleRecord
	if err := json.Unmarshal([]byte(`{"id":{"value":1}}`), &record); err == nil {
		t.Fatalf("expected an error for an object id, got %+v", record)
	}
}

func TestArticleRecordKeepsRemainingFields(t *testing.T) {
	var record ArticleRecord
	body := `{"id":"n1","title":"Hello","mediaIds":["m1"],"likeCount":3,"status":"published","updatedAt":null}`
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if record.Title != "Hello" || record.LikeCount != 3 || len(record.MediaIDs) != 1 || record.Status != StatusPublished {
		t.Fatalf("unexpected record %+v", record)
	}
	if !record.UpdatedAt.IsZero() {
		t.Fatalf("expected zero updatedAt, got %v", record.UpdatedAt)
	}
}
