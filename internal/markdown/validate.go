package markdown

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
	MaxTags              = 10

	frontMatterInvalidCode = "FRONTMATTER_INVALID"
)

type frontMatterRule struct {
	value func(interfaces.FrontMatter) any
	rule  validation.Rule
}

// Rules run in this order and each contributes at most one message.
var frontMatterRules = []frontMatterRule{
	{
		value: func(fm interfaces.FrontMatter) any { return strings.TrimSpace(fm.Title) },
		rule: validation.Required.ErrorObject(validation.NewError(
			"notepub.frontmatter.title_required", "title is required and cannot be empty")),
	},
	{
		value: func(fm interfaces.FrontMatter) any { return fm.Title },
		rule: validation.RuneLength(0, MaxTitleLength).ErrorObject(validation.NewError(
			"notepub.frontmatter.title_too_long", "title must be less than 200 characters")),
	},
	{
		value: func(fm interfaces.FrontMatter) any { return fm.Description },
		rule: validation.RuneLength(0, MaxDescriptionLength).ErrorObject(validation.NewError(
			"notepub.frontmatter.description_too_long", "description must be less than 500 characters")),
	},
	{
		value: func(fm interfaces.FrontMatter) any { return fm.Tags },
		rule: validation.Length(0, MaxTags).ErrorObject(validation.NewError(
			"notepub.frontmatter.too_many_tags", "tags must have 10 or fewer items")),
	},
}

// ValidateFrontMatter returns the ordered list of rule violations. An empty
// result means the metadata is publishable.
func ValidateFrontMatter(fm interfaces.FrontMatter) []string {
	var violations []string
	for _, r := range frontMatterRules {
		if err := validation.Validate(r.value(fm), r.rule); err != nil {
			violations = append(violations, err.Error())
		}
	}
	return violations
}

// ValidationError carries every front matter violation found for a document.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "frontmatter invalid"
	}
	return "frontmatter invalid: " + strings.Join(e.Violations, "; ")
}

// ValidateDocument checks the document's front matter and returns a
// validation-category error wrapping *ValidationError when any rule fails.
func ValidateDocument(doc *interfaces.Document) error {
	if doc == nil {
		return goerrors.New("document is required", goerrors.CategoryValidation).
			WithTextCode(frontMatterInvalidCode)
	}
	violations := ValidateFrontMatter(doc.FrontMatter)
	if len(violations) == 0 {
		return nil
	}
	return goerrors.Wrap(&ValidationError{Violations: violations}, goerrors.CategoryValidation, "front matter validation failed").
		WithTextCode(frontMatterInvalidCode)
}
