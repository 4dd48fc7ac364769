package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/forms"
)

func TestShouldPrompt_DisabledInCI(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"GitHub Actions", "GITHUB_ACTIONS", "true"},
		{"GitLab CI", "GITLAB_CI", "true"},
		{"Jenkins", "JENKINS_URL", "http://jenkins.local"},
		{"Generic CI", "CI", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			assert.False(t, ShouldPrompt())
		})
	}
}

// Complete input never opens a form, so these run without a terminal.
func TestPrompts_SkipWhenComplete(t *testing.T) {
	login := forms.Login{Email: "a@example.com", Password: "secret"}
	assert.NoError(t, PromptLogin(&login))

	reg := forms.Register{Name: "Ann", Email: "a@example.com", Password: "secret", Role: domain.RoleManager}
	assert.NoError(t, PromptRegister(&reg))

	user := forms.UserForm{
		FirstName:      "Ann",
		LastName:       "Lee",
		Email:          "a@example.com",
		Role:           domain.RoleEmployee,
		EmploymentDate: "2024-01-02",
		Department:     "Sales",
		Position:       "Rep",
	}
	assert.NoError(t, PromptUserForm(&user))

	admin := forms.UserForm{
		FirstName:      "Ada",
		LastName:       "Admin",
		Email:          "ada@example.com",
		Role:           domain.RoleAdmin,
		EmploymentDate: "2024-01-02",
	}
	assert.NoError(t, PromptUserForm(&admin))
}
