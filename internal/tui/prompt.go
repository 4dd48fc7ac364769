package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/forms"
)

// PromptLogin asks for whatever credentials are still missing from f
func PromptLogin(f *forms.Login) error {
	var fields []huh.Field
	if f.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&f.Email))
	}
	if f.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&f.Password))
	}
	return run(fields)
}

// PromptRegister asks for the registration fields still missing from f
func PromptRegister(f *forms.Register) error {
	var fields []huh.Field
	if f.Name == "" {
		fields = append(fields, huh.NewInput().Title("Full name").Value(&f.Name))
	}
	if f.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Placeholder("you@example.com").Value(&f.Email))
	}
	if f.Password == "" {
		fields = append(fields,
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&f.ConfirmPassword),
		)
	}
	if f.Role == "" {
		fields = append(fields, roleSelect(&f.Role))
	}
	return run(fields)
}

// PromptUserForm asks for the admin user fields still missing from f.
// Role-specific fields are only asked for the matching role.
func PromptUserForm(f *forms.UserForm) error {
	var fields []huh.Field
	if f.FirstName == "" {
		fields = append(fields, huh.NewInput().Title("First name").Value(&f.FirstName))
	}
	if f.LastName == "" {
		fields = append(fields, huh.NewInput().Title("Last name").Value(&f.LastName))
	}
	if f.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&f.Email))
	}
	if f.Creating && f.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password))
	}
	if f.Role == "" {
		fields = append(fields, roleSelect(&f.Role))
	}
	if f.EmploymentDate == "" {
		fields = append(fields, huh.NewInput().Title("Employment date").Placeholder("YYYY-MM-DD").Value(&f.EmploymentDate))
	}
	if err := run(fields); err != nil {
		return err
	}

	// The role may only be known now.
	var extra []huh.Field
	switch f.Role {
	case domain.RoleEmployee:
		if f.Department == "" {
			extra = append(extra, huh.NewInput().Title("Department").Value(&f.Department))
		}
		if f.Position == "" {
			extra = append(extra, huh.NewInput().Title("Position").Value(&f.Position))
		}
	case domain.RoleManager:
		if f.ManagedDepartment == "" {
			extra = append(extra, huh.NewInput().Title("Managed department").Value(&f.ManagedDepartment))
		}
	}
	return run(extra)
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	var confirmed bool = defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(confirm))

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

func roleSelect(value *domain.Role) huh.Field {
	options := make([]huh.Option[domain.Role], 0, len(domain.Roles()))
	for _, r := range domain.Roles() {
		options = append(options, huh.NewOption(r.Title(), r))
	}
	return huh.NewSelect[domain.Role]().
		Title("Role").
		Options(options...).
		Value(value)
}

func run(fields []huh.Field) error {
	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	// Check common CI environment variables
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
