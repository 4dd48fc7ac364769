// Package forms validates user input before it reaches the session store or
// the API.
package forms

import (
	stderrors "errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/errors"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Login is the sign-in form
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (f Login) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Email,
			validation.Required.Error("Email is required"),
			validation.Match(emailPattern).Error("Email is invalid"),
		),
		validation.Field(&f.Password,
			validation.Required.Error("Password is required"),
		),
	)
}

// Register is the account creation form
type Register struct {
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	ConfirmPassword string      `json:"confirmPassword"`
	Role            domain.Role `json:"role"`
}

// Validate will run validation rules
func (f Register) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required.Error("Name is required"),
		),
		validation.Field(&f.Email,
			validation.Required.Error("Email is required"),
			validation.Match(emailPattern).Error("Email is invalid"),
		),
		validation.Field(&f.Password,
			validation.Required.Error("Password is required"),
			validation.Length(6, 0).Error("Password must be at least 6 characters"),
		),
		validation.Field(&f.ConfirmPassword,
			validation.By(stringEquals(f.Password, "Passwords do not match")),
		),
		validation.Field(&f.Role,
			validation.Required.Error("Role is required"),
			validation.In(roleValues()...).Error("Role must be employee, manager or admin"),
		),
	)
}

// UserForm is the admin create/edit form for an account
type UserForm struct {
	FirstName         string      `json:"first_name"`
	LastName          string      `json:"last_name"`
	Email             string      `json:"email"`
	Password          string      `json:"password"`
	Role              domain.Role `json:"role"`
	EmploymentDate    string      `json:"employment_date"`
	Department        string      `json:"department"`
	Position          string      `json:"position"`
	ManagedDepartment string      `json:"managed_department"`

	// Creating makes the password mandatory.
	Creating bool `json:"-"`
}

// UserFormFromProfile prefills the edit form from an existing account
func UserFormFromProfile(p domain.UserProfile) UserForm {
	f := UserForm{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Role:           p.Role,
		EmploymentDate: p.EmploymentDate,
	}
	if p.EmployeeProfile != nil {
		f.Department = p.EmployeeProfile.Department
		f.Position = p.EmployeeProfile.Position
	}
	if p.ManagerProfile != nil {
		f.ManagedDepartment = p.ManagerProfile.ManagedDepartment
	}
	return f
}

// Validate will run validation rules
func (f UserForm) Validate() error {
	passwordRules := []validation.Rule{
		validation.Length(8, 0).Error("Password must be at least 8 characters."),
	}
	if f.Creating {
		passwordRules = append([]validation.Rule{validation.Required.Error("Password is required.")}, passwordRules...)
	}

	return validation.ValidateStruct(&f,
		validation.Field(&f.FirstName,
			validation.Required.Error("First name must be at least 2 characters."),
			validation.Length(2, 0).Error("First name must be at least 2 characters."),
		),
		validation.Field(&f.LastName,
			validation.Required.Error("Last name must be at least 2 characters."),
			validation.Length(2, 0).Error("Last name must be at least 2 characters."),
		),
		validation.Field(&f.Email,
			validation.Required.Error("Please enter a valid email address."),
			validation.Match(emailPattern).Error("Please enter a valid email address."),
		),
		validation.Field(&f.Password, passwordRules...),
		validation.Field(&f.Role,
			validation.Required.Error("Please select a role."),
			validation.In(roleValues()...).Error("Please select a role."),
		),
		validation.Field(&f.EmploymentDate,
			validation.Required.Error("Employment date is required."),
			validation.Date("2006-01-02").Error("Employment date must be YYYY-MM-DD."),
		),
	)
}

// ToInput converts the form to the API write shape, dropping fields that do
// not apply to the selected role
func (f UserForm) ToInput() domain.UserInput {
	return domain.UserInput{
		FirstName:         strings.TrimSpace(f.FirstName),
		LastName:          strings.TrimSpace(f.LastName),
		Email:             strings.TrimSpace(f.Email),
		Password:          f.Password,
		Role:              f.Role,
		EmploymentDate:    f.EmploymentDate,
		Department:        f.Department,
		Position:          f.Position,
		ManagedDepartment: f.ManagedDepartment,
	}.Gate()
}

// FieldErrors flattens a validation error into field -> message
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}
	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}
	out["form"] = err.Error()
	return out
}

// Check validates v and reports the first failing field as a coded error
func Check(v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	fields := FieldErrors(err)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return errors.Wrap(errors.ErrCodeFormInvalid, fields[names[0]], err)
}

func stringEquals(str, message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New(message)
		}
		return nil
	}
}

func roleValues() []interface{} {
	roles := domain.Roles()
	values := make([]interface{}, len(roles))
	for i, r := range roles {
		values[i] = r
	}
	return values
}
