package markdown

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

const (
	titleRequiredMsg = "title is required and cannot be empty"
	titleLengthMsg   = "title must be less than 200 characters"
	descLengthMsg    = "description must be less than 500 characters"
	tagsLimitMsg     = "tags must have 10 or fewer items"
)

func elevenTags() []string {
	tags := make([]string, 11)
	for i := range tags {
		tags[i] = "tag"
	}
	return tags
}

func TestValidateFrontMatter(t *testing.T) {
	cases := []struct {
		name string
		fm   interfaces.FrontMatter
		want []string
	}{
		{
			name: "valid",
			fm:   interfaces.FrontMatter{Title: "Hello", Tags: []string{"a"}},
		},
		{
			name: "empty tag slice is valid",
			fm:   interfaces.FrontMatter{Title: "Hello", Tags: []string{}},
		},
		{
			name: "empty title",
			fm:   interfaces.FrontMatter{Title: ""},
			want: []string{titleRequiredMsg},
		},
		{
			name: "whitespace title",
			fm:   interfaces.FrontMatter{Title: "   "},
			want: []string{titleRequiredMsg},
		},
		{
			name: "eleven tags",
			fm:   interfaces.FrontMatter{Title: "Hello", Tags: elevenTags()},
			want: []string{tagsLimitMsg},
		},
		{
			name: "empty title and eleven tags",
			fm:   interfaces.FrontMatter{Title: "", Tags: elevenTags()},
			want: []string{titleRequiredMsg, tagsLimitMsg},
		},
		{
			name: "title counted in characters",
			fm:   interfaces.FrontMatter{Title: strings.Repeat("あ", 200)},
		},
		{
			name: "long title and description",
			fm: interfaces.FrontMatter{
				Title:       strings.Repeat("a", 201),
				Description: strings.Repeat("b", 501),
			},
			want: []string{titleLengthMsg, descLengthMsg},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateFrontMatter(tc.fm)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ValidateFrontMatter() = %#v, want %#v", got, tc.want)
			}
			// pure: a second call yields the same ordered result
			if again := ValidateFrontMatter(tc.fm); !reflect.DeepEqual(got, again) {
				t.Fatalf("expected stable result, got %#v then %#v", got, again)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	doc := &interfaces.Document{FrontMatter: interfaces.FrontMatter{Title: " ", Tags: elevenTags()}}

	err := ValidateDocument(doc)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError in chain, got %T", err)
	}
	if !reflect.DeepEqual(verr.Violations, []string{titleRequiredMsg, tagsLimitMsg}) {
		t.Fatalf("unexpected violations %#v", verr.Violations)
	}

	doc.FrontMatter = interfaces.FrontMatter{Title: "Fine"}
	if err := ValidateDocument(doc); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}
