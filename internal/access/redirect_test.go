package access

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/felixgeelhaar/rolegate/internal/domain"
)

func TestResolvePostLogin(t *testing.T) {
	manager := &domain.User{ID: "1", Role: domain.RoleManager}

	tests := []struct {
		name    string
		user    *domain.User
		from    string
		current string
		want    string
	}{
		{"no memory goes to dashboard", manager, "", "/login", "/dashboard/manager"},
		{"own dashboard remembered", manager, "/dashboard/manager", "/login", "/dashboard/manager"},
		{"path under own dashboard", manager, "/dashboard/manager/reports/", "/login", "/dashboard/manager/reports"},
		{"other role's dashboard ignored", manager, "/dashboard/admin", "/login", "/dashboard/manager"},
		{"prefix lookalike ignored", manager, "/dashboard/managerial", "/login", "/dashboard/manager"},
		{"public path ignored", manager, "/register", "/login", "/dashboard/manager"},
		{"unknown role stays", &domain.User{Role: "guest"}, "/dashboard/manager", "/login", "/login"},
		{"no user stays", nil, "/dashboard/manager", "/somewhere", "/somewhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePostLogin(tt.user, tt.from, tt.current))
		})
	}
}

func TestResolvePostLogin_StaysInRoleArea(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		role := rapid.SampledFrom(domain.Roles()).Draw(rt, "role")
		from := rapid.StringMatching(`(/dashboard/(employee|manager|admin)(/[a-z]{1,6})?)?|/[a-z-]{0,12}`).Draw(rt, "from")

		got := ResolvePostLogin(&domain.User{ID: "1", Role: role}, from, "/login")

		dashboard := DashboardPath(role)
		if got != dashboard && !strings.HasPrefix(got, dashboard+"/") {
			rt.Fatalf("role %s sent to %q (from %q)", role, got, from)
		}
	})
}
