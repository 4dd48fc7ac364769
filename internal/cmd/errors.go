package cmd

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// SignInRequiredError is returned when a page needs a session. from is
// the page to come back to after signing in.
func SignInRequiredError(from string) error {
	err := errors.NewNotAuthenticatedError()
	if from != "" && from != access.PathLogin {
		err = err.WithSuggestion(fmt.Sprintf("Return here after signing in: rolegate auth login --redirect %s", from))
	}
	return err
}

// AccessDeniedError is returned when the session's role may not open path
func AccessDeniedError(path string) error {
	return errors.NewForbiddenError(path).
		WithSuggestion("Check your role with: rolegate auth status")
}

// PageNotFoundError is returned for paths outside the route table
func PageNotFoundError(path string, known []string) error {
	return errors.New(errors.ErrCodeRequestFailed, fmt.Sprintf("page not found: %s", path)).
		WithSuggestion("Known pages: " + strings.Join(known, ", "))
}

// UserNotFoundError is returned when an admin command names an unknown id
func UserNotFoundError(id string) error {
	return errors.New(errors.ErrCodeRequestFailed, fmt.Sprintf("user %q not found", id)).
		WithSuggestion("List users and their ids: rolegate admin users list")
}

// NonInteractiveError is returned when input is missing and prompting is off
func NonInteractiveError(what string, flags ...string) error {
	return errors.New(errors.ErrCodeFormInvalid, what+" required when not running in a terminal").
		WithSuggestion("Pass " + strings.Join(flags, ", "))
}

// guardError turns a non-render landing into the matching error
func guardError(l access.Landing) error {
	switch {
	case l.NotFound:
		return PageNotFoundError(l.Requested, knownPages())
	case l.Decision.Outcome == access.RedirectToLogin:
		return SignInRequiredError(l.Decision.From)
	case l.Decision.Outcome == access.RedirectToForbidden:
		return AccessDeniedError(l.Requested)
	}
	return nil
}

func knownPages() []string {
	var pages []string
	for _, r := range access.DefaultTable().Routes() {
		if !r.IsAlias() {
			pages = append(pages, r.Path)
		}
	}
	return pages
}
