package access

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/domain"
)

// Well-known paths
const (
	PathHome      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathForbidden = "/forbidden"
	PathNotFound  = "/not-found"

	dashboardPrefix = "/dashboard/"
)

// Route is one entry of the route table
type Route struct {
	Path string
	Name string

	// Public routes skip the guard.
	Public bool

	// Roles admitted to a protected route; nil admits any signed-in user.
	Roles []domain.Role

	// AliasOf makes the route a redirect to another path.
	AliasOf string
}

// IsAlias reports whether the route only redirects
func (r Route) IsAlias() bool {
	return r.AliasOf != ""
}

// Table maps paths to routes
type Table struct {
	routes []Route
	byPath map[string]Route
}

// NewTable builds a table; later routes with the same path win
func NewTable(routes ...Route) *Table {
	t := &Table{byPath: make(map[string]Route, len(routes))}
	index := make(map[string]int, len(routes))
	for _, r := range routes {
		r.Path = Normalize(r.Path)
		if r.AliasOf != "" {
			r.AliasOf = Normalize(r.AliasOf)
		}
		if i, exists := index[r.Path]; exists {
			t.routes[i] = r
		} else {
			index[r.Path] = len(t.routes)
			t.routes = append(t.routes, r)
		}
		t.byPath[r.Path] = r
	}
	return t
}

// DefaultTable is the application's route table
func DefaultTable() *Table {
	return NewTable(
		Route{Path: PathHome, Name: "Home", Public: true},
		Route{Path: PathLogin, Name: "Sign in", Public: true},
		Route{Path: PathRegister, Name: "Register", Public: true},
		Route{Path: DashboardPath(domain.RoleEmployee), Name: "Employee dashboard", Roles: []domain.Role{domain.RoleEmployee}},
		Route{Path: DashboardPath(domain.RoleManager), Name: "Manager dashboard", Roles: []domain.Role{domain.RoleManager}},
		Route{Path: DashboardPath(domain.RoleAdmin), Name: "Admin dashboard", Roles: []domain.Role{domain.RoleAdmin}},
		Route{Path: "/employee-dashboard", AliasOf: DashboardPath(domain.RoleEmployee)},
		Route{Path: "/manager-dashboard", AliasOf: DashboardPath(domain.RoleManager)},
		Route{Path: "/admin-dashboard", AliasOf: DashboardPath(domain.RoleAdmin)},
		Route{Path: PathForbidden, Name: "Access denied", Public: true},
	)
}

// Routes returns the routes in declaration order
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Lookup finds the route registered at path, without following aliases
func (t *Table) Lookup(path string) (Route, bool) {
	r, ok := t.byPath[Normalize(path)]
	return r, ok
}

// Resolve finds the route for path, following aliases.
// Alias chains and cycles are cut after len(routes) hops.
func (t *Table) Resolve(path string) (Route, bool) {
	r, ok := t.Lookup(path)
	for hops := 0; ok && r.IsAlias(); hops++ {
		if hops > len(t.routes) {
			return Route{}, false
		}
		r, ok = t.Lookup(r.AliasOf)
	}
	return r, ok
}

// Canonical returns the path a request for path ends up on, or path itself
// when it is unknown
func (t *Table) Canonical(path string) string {
	if r, ok := t.Resolve(path); ok {
		return r.Path
	}
	return Normalize(path)
}

// Validate checks that aliases resolve and that every protected route is
// reachable by at least one known role
func (t *Table) Validate() error {
	for _, r := range t.routes {
		if r.IsAlias() {
			if _, ok := t.Resolve(r.Path); !ok {
				return fmt.Errorf("route %s: alias target %s does not resolve", r.Path, r.AliasOf)
			}
			continue
		}
		if r.Public || r.Roles == nil {
			continue
		}
		if len(r.Roles) == 0 {
			return fmt.Errorf("route %s: no role may access it", r.Path)
		}
		for _, role := range r.Roles {
			if err := role.Validate(); err != nil {
				return fmt.Errorf("route %s: %w", r.Path, err)
			}
		}
	}
	for _, role := range domain.Roles() {
		dash, ok := t.Resolve(DashboardPath(role))
		if !ok {
			return fmt.Errorf("role %s has no dashboard route", role)
		}
		if !dash.Public && dash.Roles != nil && !containsRole(dash.Roles, role) {
			return fmt.Errorf("role %s cannot open its own dashboard %s", role, dash.Path)
		}
	}
	return nil
}

// DashboardPath returns /dashboard/<role>
func DashboardPath(role domain.Role) string {
	return dashboardPrefix + string(role)
}

// Normalize trims whitespace, a query string and trailing slashes, and
// ensures a leading slash
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
