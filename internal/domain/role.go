package domain

import "fmt"

// Role is the account role carried by a session.
// This is a value object over a closed set of values.
type Role string

// Known roles
const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Roles lists every known role in display order
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAdmin}
}

// NewRole creates a Role value object with validation
func NewRole(value string) (Role, error) {
	r := Role(value)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate checks if the role is one of the known roles
func (r Role) Validate() error {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("invalid role %q: must be employee, manager, or admin", string(r))
	}
}

// IsValid reports whether Validate would succeed
func (r Role) IsValid() bool {
	return r.Validate() == nil
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// Title returns the role name for display
func (r Role) Title() string {
	switch r {
	case RoleEmployee:
		return "Employee"
	case RoleManager:
		return "Manager"
	case RoleAdmin:
		return "Admin"
	default:
		return string(r)
	}
}
