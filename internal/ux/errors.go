package ux

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that do not carry one.
// Coded errors already explain themselves and are returned as-is.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.CodeOf(err) != "" {
		return err
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "no such host"):
		return NewErrorWithSuggestion(err,
			"Check api_url, or start a local backend with 'rolegate mock-server'")

	case strings.Contains(errMsg, "deadline exceeded"), strings.Contains(errMsg, "Client.Timeout"):
		return NewErrorWithSuggestion(err,
			"The backend is slow to answer; raise timeout in the config file or ROLEGATE_TIMEOUT")

	case strings.Contains(errMsg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check the permissions of storage_dir (default ~/.rolegate)")

	case strings.Contains(errMsg, "no such file or directory") && strings.Contains(errMsg, "config"):
		return NewErrorWithSuggestion(err,
			"Create the config file or drop --config to use defaults; see 'rolegate config path'")

	case strings.Contains(errMsg, "prompt failed"):
		return NewErrorWithSuggestion(err,
			"Pass the values as flags when running without a terminal")
	}

	return err
}
