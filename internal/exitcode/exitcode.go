package exitcode

import (
	stderrors "errors"
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage or configuration
	UsageError = 2

	// AccessDenied indicates the signed-in role may not open the target
	AccessDenied = 3

	// ValidationError indicates rejected input, locally or by the server
	ValidationError = 4

	// AuthError indicates a missing, invalid or expired session
	AuthError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the user cancelled with Ctrl+C
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

type statusCoder interface {
	HTTPStatus() int
}

// DetermineExitCode maps an error to an exit code, using its error code
// when it has one and its message otherwise
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeNetworkFailure:
		return NetworkError
	case errors.ErrCodeNotAuthenticated, errors.ErrCodeMalformedToken, errors.ErrCodeMissingIdentity,
		errors.ErrCodeInvalidSession, errors.ErrCodeTokenExpired, errors.ErrCodeSuperseded:
		return AuthError
	case errors.ErrCodeForbidden:
		return AccessDenied
	case errors.ErrCodeFormInvalid, errors.ErrCodeInvalidRole:
		return ValidationError
	case errors.ErrCodeConfigInvalid:
		return UsageError
	case errors.ErrCodeRequestFailed:
		var sc statusCoder
		if stderrors.As(err, &sc) {
			return fromStatus(sc.HTTPStatus())
		}
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors as reported by cobra
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") ||
		strings.Contains(errMsg, "accepts ") {
		return UsageError
	}

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "timeout") {
		return NetworkError
	}

	return GeneralError
}

func fromStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized:
		return AuthError
	case status == http.StatusForbidden:
		return AccessDenied
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity, status == http.StatusConflict:
		return ValidationError
	case status == http.StatusRequestTimeout, status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return NetworkError
	default:
		return GeneralError
	}
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or configuration)"
	case AccessDenied:
		return "Access denied"
	case ValidationError:
		return "Validation error"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
