package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/errors"
	"github.com/felixgeelhaar/rolegate/internal/exitcode"
	"github.com/felixgeelhaar/rolegate/internal/session"
)

type fixedState session.State

func (s fixedState) State() session.State { return session.State(s) }

func signedInAs(role domain.Role) fixedState {
	return fixedState{
		IsAuthenticated: true,
		User:            &domain.User{ID: "u-1", Email: "u@example.com", Name: "U", Role: role},
	}
}

func TestGuardError(t *testing.T) {
	tests := []struct {
		name     string
		state    fixedState
		path     string
		wantCode errors.ErrorCode
		wantExit int
	}{
		{"public page", fixedState{}, "/", "", exitcode.Success},
		{"signed out", fixedState{}, "/dashboard/employee", errors.ErrCodeNotAuthenticated, exitcode.AuthError},
		{"wrong role", signedInAs(domain.RoleEmployee), "/admin-dashboard", errors.ErrCodeForbidden, exitcode.AccessDenied},
		{"own dashboard", signedInAs(domain.RoleManager), "/manager-dashboard", "", exitcode.Success},
		{"unknown page", signedInAs(domain.RoleAdmin), "/reports", errors.ErrCodeRequestFailed, exitcode.GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := access.NewNavigator(nil, tt.state)
			err := guardError(nav.Navigate(tt.path))
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Equal(t, tt.wantExit, exitcode.DetermineExitCode(err))
		})
	}
}

func TestSignInRequiredError(t *testing.T) {
	err := SignInRequiredError("/dashboard/admin")
	assert.Contains(t, err.Error(), "rolegate auth login --redirect /dashboard/admin")

	err = SignInRequiredError(access.PathLogin)
	assert.NotContains(t, err.Error(), "--redirect")
}

func TestNonInteractiveError(t *testing.T) {
	err := NonInteractiveError("confirmation", "--yes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFormInvalid))
	assert.Contains(t, err.Error(), "Pass --yes")
}

func TestKnownPagesSkipsAliases(t *testing.T) {
	pages := knownPages()
	assert.Contains(t, pages, "/dashboard/employee")
	assert.Contains(t, pages, access.PathForbidden)
	assert.NotContains(t, pages, "/employee-dashboard")
}

func TestDashboardRole(t *testing.T) {
	role, ok := dashboardRole("/dashboard/manager")
	assert.True(t, ok)
	assert.Equal(t, domain.RoleManager, role)

	_, ok = dashboardRole("/login")
	assert.False(t, ok)
}
