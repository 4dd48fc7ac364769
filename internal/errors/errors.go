package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// API gateway errors (API-001 to API-099)
	ErrCodeNetworkFailure ErrorCode = "API-001"
	ErrCodeRequestFailed  ErrorCode = "API-002"
	ErrCodeProtocol       ErrorCode = "API-003"
	ErrCodeEncodeRequest  ErrorCode = "API-004"

	// Session and token errors (AUTH-001 to AUTH-099)
	ErrCodeNotAuthenticated ErrorCode = "AUTH-001"
	ErrCodeForbidden        ErrorCode = "AUTH-002"
	ErrCodeMalformedToken   ErrorCode = "AUTH-003"
	ErrCodeMissingIdentity  ErrorCode = "AUTH-004"
	ErrCodeInvalidSession   ErrorCode = "AUTH-005"
	ErrCodeTokenExpired     ErrorCode = "AUTH-006"
	ErrCodeInvalidRole      ErrorCode = "AUTH-007"
	ErrCodeSuperseded       ErrorCode = "AUTH-008"

	// Form validation errors (FORM-001 to FORM-099)
	ErrCodeFormInvalid ErrorCode = "FORM-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// Error is a coded error carrying a human-readable message, optional
// suggestions and a documentation link.
type Error struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *Error) WithDocs(url string) *Error {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Is reports whether any *Error in err's chain carries the given code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if coded, ok := err.(*Error); ok && coded.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// UserMessage returns the single human-readable string shown to users.
// Coded errors contribute only their Message; codes, causes and
// suggestions stay out of the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var coded *Error
	if stderrors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return err.Error()
}

// Common error constructors for frequently used errors

// NewNetworkError creates a transport-level failure
func NewNetworkError(cause error) *Error {
	return Wrap(ErrCodeNetworkFailure, "unable to reach the server", cause).
		WithSuggestion("Check that the API is running and api_url is correct").
		WithSuggestion("Run 'rolegate mock-server' to start a local backend")
}

// NewInvalidSessionError marks a token the server issued but the client
// cannot turn into a session.
func NewInvalidSessionError(cause error) *Error {
	return Wrap(ErrCodeInvalidSession, "received an invalid session token", cause).
		WithSuggestion("Try signing in again").
		WithSuggestion("Check that the client clock is correct if the token looks expired")
}

// NewNotAuthenticatedError reports a protected action without a session
func NewNotAuthenticatedError() *Error {
	return New(ErrCodeNotAuthenticated, "authentication required").
		WithSuggestion("Run 'rolegate auth login' to sign in")
}

// NewForbiddenError reports a role mismatch for a path
func NewForbiddenError(path string) *Error {
	return New(ErrCodeForbidden, fmt.Sprintf("access denied: %s", path)).
		WithSuggestion("Sign in with an account that has the required role")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *Error {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
