package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/felixgeelhaar/rolegate/internal/domain"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "password123"

const defaultLeaveBalance = 20

// FieldErrors is a validation failure keyed by field, rendered as
// {"field": ["message"]}
type FieldErrors map[string][]string

func (f FieldErrors) Error() string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(f[name], " "))
	}
	return strings.Join(parts, "; ")
}

func (f FieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

type account struct {
	profile domain.UserProfile
	hash    []byte
}

// Directory is the in-memory account database
type Directory struct {
	mu      sync.RWMutex
	byID    map[domain.ID]*account
	byEmail map[string]domain.ID
	cost    int
	now     func() time.Time
}

// NewDirectory creates an empty directory hashing passwords at cost
func NewDirectory(cost int) *Directory {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Directory{
		byID:    map[domain.ID]*account{},
		byEmail: map[string]domain.ID{},
		cost:    cost,
		now:     time.Now,
	}
}

// Seed adds one account per role, all with SeedPassword
func (d *Directory) Seed() error {
	seeds := []domain.UserInput{
		{FirstName: "John", LastName: "Employee", Email: "employee@example.com", Role: domain.RoleEmployee,
			EmploymentDate: "2023-01-15", Department: "Engineering", Position: "Developer"},
		{FirstName: "Jane", LastName: "Manager", Email: "manager@example.com", Role: domain.RoleManager,
			EmploymentDate: "2021-06-01", ManagedDepartment: "Engineering"},
		{FirstName: "Ada", LastName: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin,
			EmploymentDate: "2020-03-10"},
	}
	for _, in := range seeds {
		in.Password = SeedPassword
		if _, err := d.Create(in); err != nil {
			return err
		}
	}
	return nil
}

// Authenticate returns the account matching email and password
func (d *Directory) Authenticate(email, password string) (domain.UserProfile, bool) {
	d.mu.RLock()
	id, ok := d.byEmail[normalizeEmail(email)]
	var acct *account
	if ok {
		acct = d.byID[id]
	}
	d.mu.RUnlock()

	if acct == nil {
		return domain.UserProfile{}, false
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return domain.UserProfile{}, false
	}
	return acct.profile, true
}

// Get returns the account with id
func (d *Directory) Get(id domain.ID) (domain.UserProfile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.byID[id]
	if !ok {
		return domain.UserProfile{}, false
	}
	return acct.profile, true
}

// List returns every account ordered by email
func (d *Directory) List() []domain.UserProfile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.UserProfile, 0, len(d.byID))
	for _, acct := range d.byID {
		out = append(out, acct.profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// CountByRole returns the number of accounts per role
func (d *Directory) CountByRole() map[domain.Role]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	counts := map[domain.Role]int{}
	for _, acct := range d.byID {
		counts[acct.profile.Role]++
	}
	return counts
}

// Create adds an account
func (d *Directory) Create(in domain.UserInput) (domain.UserProfile, error) {
	fields := FieldErrors{}
	if strings.TrimSpace(in.FirstName) == "" {
		fields.add("first_name", "This field is required.")
	}
	if strings.TrimSpace(in.Email) == "" {
		fields.add("email", "This field is required.")
	}
	if in.Password == "" {
		fields.add("password", "This field is required.")
	} else if len(in.Password) < 6 {
		fields.add("password", "Ensure this field has at least 6 characters.")
	}
	if !in.Role.IsValid() {
		fields.add("role", `"`+string(in.Role)+`" is not a valid choice.`)
	}
	if len(fields) > 0 {
		return domain.UserProfile{}, fields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), d.cost)
	if err != nil {
		return domain.UserProfile{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	email := normalizeEmail(in.Email)
	if _, exists := d.byEmail[email]; exists {
		return domain.UserProfile{}, FieldErrors{"email": {"user with this email already exists."}}
	}

	profile := domain.UserProfile{
		ID:             domain.ID(uuid.NewString()),
		Email:          email,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		EmploymentDate: in.EmploymentDate,
		DateJoined:     d.now().UTC().Format(time.RFC3339),
	}
	applyRole(&profile, in)

	d.byID[profile.ID] = &account{profile: profile, hash: hash}
	d.byEmail[email] = profile.ID
	return profile, nil
}

// Update applies the non-empty fields of in to the account with id
func (d *Directory) Update(id domain.ID, in domain.UserInput) (domain.UserProfile, bool, error) {
	if in.Role != "" && !in.Role.IsValid() {
		return domain.UserProfile{}, true, FieldErrors{"role": {`"` + string(in.Role) + `" is not a valid choice.`}}
	}
	if in.Password != "" && len(in.Password) < 6 {
		return domain.UserProfile{}, true, FieldErrors{"password": {"Ensure this field has at least 6 characters."}}
	}

	var hash []byte
	if in.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(in.Password), d.cost); err != nil {
			return domain.UserProfile{}, true, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	acct, ok := d.byID[id]
	if !ok {
		return domain.UserProfile{}, false, nil
	}

	p := acct.profile
	if in.Email != "" {
		email := normalizeEmail(in.Email)
		if other, exists := d.byEmail[email]; exists && other != id {
			return domain.UserProfile{}, true, FieldErrors{"email": {"user with this email already exists."}}
		}
		delete(d.byEmail, p.Email)
		d.byEmail[email] = id
		p.Email = email
	}
	if in.FirstName != "" {
		p.FirstName = strings.TrimSpace(in.FirstName)
	}
	if in.LastName != "" {
		p.LastName = strings.TrimSpace(in.LastName)
	}
	if in.EmploymentDate != "" {
		p.EmploymentDate = in.EmploymentDate
	}
	if in.Role == "" {
		in.Role = p.Role
		if p.EmployeeProfile != nil {
			if in.Department == "" {
				in.Department = p.EmployeeProfile.Department
			}
			if in.Position == "" {
				in.Position = p.EmployeeProfile.Position
			}
		}
		if p.ManagerProfile != nil && in.ManagedDepartment == "" {
			in.ManagedDepartment = p.ManagerProfile.ManagedDepartment
		}
	}
	applyRole(&p, in)

	acct.profile = p
	if hash != nil {
		acct.hash = hash
	}
	return p, true, nil
}

// Delete removes the account with id
func (d *Directory) Delete(id domain.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.byID[id]
	if !ok {
		return false
	}
	delete(d.byEmail, acct.profile.Email)
	delete(d.byID, id)
	return true
}

// applyRole sets the role and the profile record that goes with it
func applyRole(p *domain.UserProfile, in domain.UserInput) {
	leave := defaultLeaveBalance
	if p.EmployeeProfile != nil {
		leave = p.EmployeeProfile.LeaveBalance
	}

	p.Role = in.Role
	p.EmployeeProfile = nil
	p.ManagerProfile = nil
	switch in.Role {
	case domain.RoleEmployee:
		p.EmployeeProfile = &domain.EmployeeProfile{
			Department:   in.Department,
			Position:     in.Position,
			LeaveBalance: leave,
		}
	case domain.RoleManager:
		p.ManagerProfile = &domain.ManagerProfile{ManagedDepartment: in.ManagedDepartment}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
