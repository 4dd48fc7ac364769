package access

import (
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/domain"
)

// ResolvePostLogin picks where a freshly signed-in user lands.
//
// from is the path remembered when the user was sent to login, already
// alias-normalized. It is honored only when it is the user's dashboard or a
// path under it. Otherwise the user goes to their role's dashboard, and a
// user with an unknown role stays on current.
func ResolvePostLogin(user *domain.User, from, current string) string {
	if user == nil || !user.Role.IsValid() {
		return current
	}

	dashboard := DashboardPath(user.Role)
	if from != "" {
		from = Normalize(from)
		if from == dashboard || strings.HasPrefix(from, dashboard+"/") {
			return from
		}
	}
	return dashboard
}
