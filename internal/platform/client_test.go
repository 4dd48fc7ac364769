package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/errors"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/api")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLogin_Success(t *testing.T) {
	var got LoginRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Contains(t, r.Header.Get("User-Agent"), "rolegate/")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]string{"access": "tok"})
	})
	client.SetToken("should-not-be-sent")

	resp, err := client.Login(context.Background(), "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Access)
	assert.Equal(t, LoginRequest{Email: "a@example.com", Password: "secret"}, got)
}

func TestLogin_MissingAccessIsProtocolError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "legacy"})
	})

	resp, err := client.Login(context.Background(), "a@example.com", "secret")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, errors.ErrCodeProtocol))
}

func TestRegister_SplitsName(t *testing.T) {
	var got RegisterRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/register/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, map[string]string{"access": "tok"})
	})

	_, err := client.Register(context.Background(), RegisterRequest{
		Name:     "Jane Manager",
		Email:    "jane@example.com",
		Password: "secret1",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Manager", got.LastName)
	assert.Equal(t, domain.RoleManager, got.Role)
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"detail wins", 401, `{"detail":"Token invalid","message":"ignored"}`, "Token invalid"},
		{"message", 400, `{"message":"Bad input"}`, "Bad input"},
		{"error", 401, `{"error":"Invalid email or password"}`, "Invalid email or password"},
		{"field errors", 400, `{"password":["too short"],"email":["user with this email already exists."]}`, "email: user with this email already exists."},
		{"non field errors", 400, `{"non_field_errors":["Unable to log in"]}`, "Unable to log in"},
		{"empty body falls back to status text", 503, ``, "Service Unavailable"},
		{"html body falls back to status text", 500, `<html>oops</html>`, "Internal Server Error"},
		{"blank detail skipped", 404, `{"detail":"  "}`, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Login(context.Background(), "a@example.com", "pw")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeRequestFailed))
			assert.Equal(t, tt.wantMsg, errors.UserMessage(err))

			var coded *errors.Error
			require.ErrorAs(t, err, &coded)
			apiErr, ok := coded.Cause.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestStatusOf(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	client.SetToken("t")

	_, err := client.GetUser(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Equal(t, 0, StatusOf(fmt.Errorf("plain")))
	assert.Equal(t, 0, StatusOf(nil))
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url)
	_, err := client.Login(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNetworkFailure))
	assert.Equal(t, "unable to reach the server", errors.UserMessage(err))
}

func TestProtectedCallsInjectBearer(t *testing.T) {
	token := "first"
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/logout/":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
		case "/api/user/":
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": 7, "email": "e@example.com", "role": "employee"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client.SetTokenSource(func() string { return token })

	user, err := client.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ID("7"), user.ID)

	token = "second"
	require.NoError(t, client.Logout(context.Background()))
}

func TestAdminUserCRUD(t *testing.T) {
	var created, patched map[string]interface{}
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/users/":
			writeJSON(w, http.StatusOK, []map[string]interface{}{
				{"id": 1, "email": "e@example.com", "role": "employee", "employee_profile": map[string]interface{}{"department": "Ops"}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/admin/users/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			writeJSON(w, http.StatusCreated, map[string]interface{}{"id": "n-1", "email": created["email"], "role": created["role"]})
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/users/n-1/":
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": "n-1", "email": "new@example.com", "role": "employee"})
		case r.Method == http.MethodPatch && r.URL.Path == "/api/admin/users/n-1/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": "n-1", "role": "manager"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/admin/users/n-1/":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	client.SetToken("admin-token")
	ctx := context.Background()

	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].EmployeeProfile)
	assert.Equal(t, "Ops", users[0].EmployeeProfile.Department)

	user, err := client.CreateUser(ctx, domain.UserInput{
		FirstName:         "New",
		LastName:          "Hire",
		Email:             "new@example.com",
		Password:          "password123",
		Role:              domain.RoleEmployee,
		Department:        "Ops",
		ManagedDepartment: "dropped",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ID("n-1"), user.ID)
	assert.Equal(t, "Ops", created["department"])
	assert.NotContains(t, created, "managed_department")

	fetched, err := client.GetUser(ctx, "n-1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", fetched.Email)

	_, err = client.UpdateUser(ctx, "n-1", domain.UserInput{Role: domain.RoleManager, ManagedDepartment: "Sales"})
	require.NoError(t, err)
	assert.Equal(t, "Sales", patched["managed_department"])

	require.NoError(t, client.DeleteUser(ctx, "n-1"))
}

func TestGetDashboardData(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/manager/data/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "hello manager"})
	})

	data, err := client.GetDashboardData(context.Background(), domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, "hello manager", data["message"])

	_, err = client.GetDashboardData(context.Background(), domain.Role("guest"))
	assert.Error(t, err)
}
