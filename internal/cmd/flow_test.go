package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/rolegate/internal/exitcode"
	"github.com/felixgeelhaar/rolegate/internal/mockapi"
)

// setupBackend starts a seeded mock backend and points the CLI at it with a
// private HOME and storage_dir. Prompts are off.
func setupBackend(t *testing.T) string {
	t.Helper()

	srv, err := mockapi.NewServer(mockapi.Config{
		SigningKey: "cmd-test-key",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Seed:       true,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CI", "true")
	t.Setenv("ROLEGATE_API_URL", ts.URL+"/api")
	t.Setenv("ROLEGATE_STORAGE_DIR", filepath.Join(home, "state"))
	return home
}

// run executes the CLI with args and returns everything it printed
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer resetFlags(rootCmd)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag so one invocation cannot leak into the next
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func login(t *testing.T, email string) {
	t.Helper()
	_, err := run(t, "auth", "login", "--email", email, "--password", mockapi.SeedPassword)
	require.NoError(t, err)
}

func TestAuthFlow(t *testing.T) {
	home := setupBackend(t)

	out, err := run(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	out, err = run(t, "auth", "login",
		"--email", "employee@example.com",
		"--password", mockapi.SeedPassword,
		"--redirect", "/employee-dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as John Employee <employee@example.com> (employee)")
	assert.Contains(t, out, "Next: /dashboard/employee")
	assert.FileExists(t, filepath.Join(home, "state", "auth-storage.json"))

	// The session is read back from disk by the next command.
	out, err = run(t, "auth", "status", "--remote", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "authenticated: true")
	assert.Contains(t, out, "role: employee")
	assert.Contains(t, out, "dashboard: /dashboard/employee")
	assert.Contains(t, out, "first_name: John")

	out, err = run(t, "open", "/employee-dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing:   /dashboard/employee (Employee dashboard)")
	assert.Contains(t, out, "Outcome:   render")
	assert.Contains(t, out, "Engineering")

	out, err = run(t, "open", "/manager-dashboard")
	require.Error(t, err)
	assert.Equal(t, exitcode.AccessDenied, exitcode.DetermineExitCode(err))
	assert.Contains(t, out, "Outcome:   redirect_to_forbidden")

	out, err = run(t, "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	out, err = run(t, "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	out, err = run(t, "open", "/dashboard/employee")
	require.Error(t, err)
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))
	assert.Contains(t, err.Error(), "rolegate auth login --redirect /dashboard/employee")
	assert.Contains(t, out, "Outcome:   redirect_to_login")
}

func TestLogin_RedirectForAnotherRoleIsIgnored(t *testing.T) {
	setupBackend(t)

	out, err := run(t, "auth", "login",
		"--email", "manager@example.com",
		"--password", mockapi.SeedPassword,
		"--redirect", "/dashboard/employee")
	require.NoError(t, err)
	assert.Contains(t, out, "Next: /dashboard/manager")

	out, err = run(t, "open", "/dashboard/manager", "-o", "json")
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "/dashboard/manager", report["path"])
	assert.Equal(t, "render", report["outcome"])
	assert.NotEmpty(t, report["data"])
}

func TestLogin_Errors(t *testing.T) {
	setupBackend(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "wrong password",
			args:     []string{"--email", "employee@example.com", "--password", "wrong-password"},
			wantCode: exitcode.AuthError,
			wantMsg:  "Invalid email or password",
		},
		{
			name:     "missing password without a terminal",
			args:     []string{"--email", "employee@example.com"},
			wantCode: exitcode.ValidationError,
			wantMsg:  "--password",
		},
		{
			name:     "invalid email",
			args:     []string{"--email", "nope", "--password", "x"},
			wantCode: exitcode.ValidationError,
			wantMsg:  "Email is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"auth", "login"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, exitcode.DetermineExitCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	out, err := run(t, "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestRegister(t *testing.T) {
	setupBackend(t)

	out, err := run(t, "auth", "register",
		"--name", "Ann Lee",
		"--email", "ann@example.com",
		"--password", "secret1",
		"--role", "Manager")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ann Lee <ann@example.com> (manager)")
	assert.Contains(t, out, "Next: /dashboard/manager")

	_, err = run(t, "auth", "register",
		"--name", "Ann Lee",
		"--email", "ann@example.com",
		"--password", "secret1",
		"--role", "pilot")
	require.Error(t, err)
	assert.Equal(t, exitcode.ValidationError, exitcode.DetermineExitCode(err))
}

func TestOpen_NotFound(t *testing.T) {
	setupBackend(t)

	out, err := run(t, "open", "/nope")
	require.Error(t, err)
	assert.Equal(t, exitcode.GeneralError, exitcode.DetermineExitCode(err))
	assert.Contains(t, err.Error(), "page not found: /nope")
	assert.Contains(t, err.Error(), "/dashboard/admin")
	assert.Contains(t, out, "Outcome:   not_found")
}

func TestAdminUsers(t *testing.T) {
	setupBackend(t)
	login(t, "admin@example.com")

	out, err := run(t, "admin", "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "employee@example.com")
	assert.Contains(t, out, "manages Engineering")

	out, err = run(t, "admin", "users", "add",
		"--first-name", "New", "--last-name", "Hire",
		"--email", "new.hire@example.com",
		"--password", "s3cretpass",
		"--role", "employee",
		"--employment-date", "2024-01-15",
		"--department", "Sales", "--position", "Rep",
		"-o", "json")
	require.NoError(t, err)

	var created struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "new.hire@example.com", created.Email)

	out, err = run(t, "admin", "users", "update", created.ID,
		"--role", "manager", "--managed-department", "Sales")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:       New Hire")
	assert.Contains(t, out, "Role:       manager")
	assert.Contains(t, out, "manages Sales")

	_, err = run(t, "admin", "users", "delete", created.ID)
	require.Error(t, err)
	assert.Equal(t, exitcode.ValidationError, exitcode.DetermineExitCode(err))
	assert.Contains(t, err.Error(), "--yes")

	out, err = run(t, "admin", "users", "delete", created.ID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted user "+created.ID)

	_, err = run(t, "admin", "users", "update", created.ID, "--position", "Lead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	out, err = run(t, "admin", "users", "list", "-o", "json")
	require.NoError(t, err)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	assert.Len(t, users, 3)
}

func TestAdminUsers_AddValidation(t *testing.T) {
	setupBackend(t)
	login(t, "admin@example.com")

	_, err := run(t, "admin", "users", "add",
		"--first-name", "New", "--last-name", "Hire",
		"--email", "new.hire@example.com",
		"--password", "s3cretpass",
		"--role", "employee",
		"--employment-date", "15/01/2024")
	require.Error(t, err)
	assert.Equal(t, exitcode.ValidationError, exitcode.DetermineExitCode(err))
	assert.Contains(t, err.Error(), "Employment date must be YYYY-MM-DD.")
}

func TestAdminUsers_RequiresAdmin(t *testing.T) {
	setupBackend(t)

	_, err := run(t, "admin", "users", "list")
	require.Error(t, err)
	assert.Equal(t, exitcode.AuthError, exitcode.DetermineExitCode(err))

	login(t, "employee@example.com")
	_, err = run(t, "admin", "users", "list")
	require.Error(t, err)
	assert.Equal(t, exitcode.AccessDenied, exitcode.DetermineExitCode(err))
}

func TestConfigCommands(t *testing.T) {
	home := setupBackend(t)

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file: (none")
	assert.Contains(t, out, "api_url: http://127.0.0.1")
	assert.Contains(t, out, filepath.Join(home, "state"))

	out, err = run(t, "config", "show", "-o", "json", "--api-url", "http://example.test/api")
	require.NoError(t, err)
	var shown map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "http://example.test/api", shown["api_url"])

	out, err = run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".rolegate", "config.yaml")+"\n", out)

	_, err = run(t, "config", "show", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestConfigFile(t *testing.T) {
	home := setupBackend(t)
	t.Setenv("ROLEGATE_API_URL", "")

	file := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("api_url: http://from-file.test/api\n"), 0o600))

	out, err := run(t, "config", "show", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file: "+file)
	assert.Contains(t, out, "http://from-file.test/api")

	_, err = run(t, "config", "show", "--config", filepath.Join(home, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitcode.UsageError, exitcode.DetermineExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	setupBackend(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rolegate ")

	out, err = run(t, "version", "-o", "json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
}
