package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// User is the identity derived from a bearer token.
// It is never constructed independently of a token.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
	Role  Role   `json:"role" yaml:"role"`
}

// ID is a record identifier that decodes from either a JSON string or a
// JSON number.
type ID string

// UnmarshalJSON accepts "42" and 42 alike
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier
func (id ID) String() string {
	return string(id)
}

// Int returns the numeric form when the id is numeric
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// EmployeeProfile holds fields that only apply to employees
type EmployeeProfile struct {
	Department   string `json:"department" yaml:"department"`
	Position     string `json:"position" yaml:"position"`
	LeaveBalance int    `json:"leave_balance" yaml:"leave_balance"`
}

// ManagerProfile holds fields that only apply to managers
type ManagerProfile struct {
	ManagedDepartment string `json:"managed_department" yaml:"managed_department"`
}

// UserProfile is the account record managed from the admin dashboard
type UserProfile struct {
	ID              ID               `json:"id" yaml:"id"`
	Email           string           `json:"email" yaml:"email"`
	FirstName       string           `json:"first_name" yaml:"first_name"`
	LastName        string           `json:"last_name" yaml:"last_name"`
	Role            Role             `json:"role" yaml:"role"`
	EmploymentDate  string           `json:"employment_date,omitempty" yaml:"employment_date,omitempty"`
	DateJoined      string           `json:"date_joined,omitempty" yaml:"date_joined,omitempty"`
	EmployeeProfile *EmployeeProfile `json:"employee_profile,omitempty" yaml:"employee_profile,omitempty"`
	ManagerProfile  *ManagerProfile  `json:"manager_profile,omitempty" yaml:"manager_profile,omitempty"`
}

// FullName joins first and last name
func (p UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// UserInput is the write shape for creating or updating a UserProfile.
// Role-gated fields are dropped by Gate before sending.
type UserInput struct {
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	Email             string `json:"email,omitempty"`
	Password          string `json:"password,omitempty"`
	Role              Role   `json:"role,omitempty"`
	EmploymentDate    string `json:"employment_date,omitempty"`
	Department        string `json:"department,omitempty"`
	Position          string `json:"position,omitempty"`
	ManagedDepartment string `json:"managed_department,omitempty"`
}

// Gate clears fields that do not apply to the input's role
func (in UserInput) Gate() UserInput {
	if in.Role != RoleEmployee {
		in.Department = ""
		in.Position = ""
	}
	if in.Role != RoleManager {
		in.ManagedDepartment = ""
	}
	return in
}

// SplitName splits a display name into first and last name at the first space
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}
