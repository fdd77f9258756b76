package pipeline

import (
	"errors"
	"io/fs"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrFilePathRequired indicates the request named no source file.
	ErrFilePathRequired = errors.New("pipeline: file path is required")
	// ErrStatusInvalid indicates the requested status is neither draft nor published.
	ErrStatusInvalid = errors.New("pipeline: status must be draft or published")
	// ErrSessionRequired indicates no usable session was available before remote calls.
	ErrSessionRequired = errors.New("pipeline: a valid session is required, run the login flow first")
	// ErrEmptyArticleID indicates the platform accepted the article but returned no id.
	ErrEmptyArticleID = errors.New("pipeline: platform returned an article without id")
)

const (
	requestInvalidCode  = "PUBLISH_REQUEST_INVALID"
	sourceNotFoundCode  = "SOURCE_NOT_FOUND"
	sourceReadCode      = "SOURCE_READ_FAILED"
	sessionRequiredCode = "SESSION_REQUIRED"
	renderFailedCode    = "MARKDOWN_RENDER_FAILED"
	articleInvalidCode  = "ARTICLE_RESPONSE_INVALID"
	publishCanceledCode = "PUBLISH_CANCELED"
)

func requestError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "publish request invalid").
		WithTextCode(requestInvalidCode)
}

func sourceError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "markdown source not found").
			WithTextCode(sourceNotFoundCode)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "markdown source unreadable").
		WithTextCode(sourceReadCode)
}

func sessionError(cause error) error {
	if cause == nil {
		cause = ErrSessionRequired
	}
	return goerrors.Wrap(cause, goerrors.CategoryAuth, "publish requires a session").
		WithTextCode(sessionRequiredCode)
}

func renderError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "markdown render failed").
		WithTextCode(renderFailedCode)
}

func articleError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, "article response invalid").
		WithTextCode(articleInvalidCode)
}

func canceledError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryCommand, "publish cancelled").
		WithTextCode(publishCanceledCode)
}
