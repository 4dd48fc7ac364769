package access

import (
	"sync"

	"github.com/felixgeelhaar/rolegate/internal/session"
)

// StateSource exposes the current session
type StateSource interface {
	State() session.State
}

// Landing is where a navigation ended up
type Landing struct {
	// Requested is the normalized path that was asked for.
	Requested string

	// Path is the path actually shown.
	Path  string
	Route Route

	// Decision is the guard's verdict; Render for public routes.
	Decision Decision

	NotFound bool
}

// Navigator applies the route table and guard against a live session and
// remembers the last path a signed-out user was turned away from.
type Navigator struct {
	table *Table
	state StateSource

	mu   sync.Mutex
	from string
}

// NewNavigator creates a navigator over table; nil means DefaultTable
func NewNavigator(table *Table, state StateSource) *Navigator {
	if table == nil {
		table = DefaultTable()
	}
	return &Navigator{table: table, state: state}
}

// Table returns the route table
func (n *Navigator) Table() *Table {
	return n.table
}

// Navigate resolves path and applies the guard
func (n *Navigator) Navigate(path string) Landing {
	requested := Normalize(path)
	route, ok := n.table.Resolve(requested)
	if !ok {
		return Landing{
			Requested: requested,
			Path:      PathNotFound,
			Route:     Route{Path: PathNotFound, Name: "Not found", Public: true},
			NotFound:  true,
		}
	}

	landing := Landing{Requested: requested, Path: route.Path, Route: route}
	if route.Public {
		return landing
	}

	landing.Decision = Decide(n.state.State(), route.Roles, route.Path)
	switch landing.Decision.Outcome {
	case RedirectToLogin:
		n.Remember(landing.Decision.From)
		landing.Path = PathLogin
		landing.Route, _ = n.table.Lookup(PathLogin)
	case RedirectToForbidden:
		landing.Path = PathForbidden
		landing.Route, _ = n.table.Lookup(PathForbidden)
	}
	return landing
}

// Remember records path as the post-login destination
func (n *Navigator) Remember(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if path == "" {
		n.from = ""
		return
	}
	n.from = n.table.Canonical(path)
}

// Remembered returns the pending post-login destination
func (n *Navigator) Remembered() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.from
}

// AfterLogin consumes the remembered path and returns where the signed-in
// user should go. current is returned when no destination applies.
func (n *Navigator) AfterLogin(current string) string {
	n.mu.Lock()
	from := n.from
	n.from = ""
	n.mu.Unlock()

	return ResolvePostLogin(n.state.State().User, from, current)
}

// Home returns the signed-in user's dashboard, or the login page
func (n *Navigator) Home() string {
	st := n.state.State()
	if !st.IsAuthenticated || st.User == nil || !st.User.Role.IsValid() {
		return PathLogin
	}
	return DashboardPath(st.User.Role)
}
