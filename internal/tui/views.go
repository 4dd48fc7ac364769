package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/session"
)

// View renders the UI
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	st := a.session.State()

	var b strings.Builder
	b.WriteString(a.renderHeader(st))
	b.WriteString("\n\n")

	if a.warning != "" {
		b.WriteString(a.styles.Warning.Render(a.warning))
		b.WriteString("\n\n")
	}
	if a.notice != "" {
		b.WriteString(a.styles.Success.Render(a.notice))
		b.WriteString("\n\n")
	}

	switch {
	case a.landing.NotFound:
		b.WriteString(a.renderNotFound())
	case a.landing.Path == access.PathLogin, a.landing.Path == access.PathRegister:
		b.WriteString(a.renderForm(st))
	case a.landing.Path == access.PathForbidden:
		b.WriteString(a.renderForbidden())
	case a.isAdminPage():
		b.WriteString(a.renderAdmin())
	default:
		if role, ok := dashboardRole(a.landing.Path); ok {
			b.WriteString(a.renderDashboard(role))
		} else {
			b.WriteString(a.renderHome(st))
		}
	}

	b.WriteString("\n")
	b.WriteString(a.renderHelpLine(st))
	return b.String()
}

// renderHeader shows the page name and who is signed in
func (a *App) renderHeader(st session.State) string {
	name := a.landing.Route.Name
	if name == "" {
		name = a.landing.Path
	}
	title := a.styles.Title.Render("rolegate · " + name)

	who := "not signed in"
	if st.IsAuthenticated && st.User != nil {
		who = fmt.Sprintf("%s (%s)", st.User.Name, st.User.Role)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, a.styles.Muted.Render(who))
}

func (a *App) renderHome(st session.State) string {
	var b strings.Builder
	b.WriteString(a.styles.Status.Render("Role-based access for employees, managers and admins."))
	b.WriteString("\n\n")
	if st.IsAuthenticated {
		b.WriteString("Press " + a.styles.Key.Render("g") + " to go to your dashboard.")
	} else {
		b.WriteString("Press " + a.styles.Key.Render("i") + " to sign in or " + a.styles.Key.Render("u") + " to create an account.")
	}
	return b.String()
}

// renderForm shows the active sign-in or registration form
func (a *App) renderForm(st session.State) string {
	var b strings.Builder

	if a.busy || st.IsLoading {
		label := "Signing in..."
		if a.landing.Path == access.PathRegister {
			label = "Creating account..."
		}
		b.WriteString(a.spinner.View() + " " + a.styles.Muted.Render(label))
		return b.String()
	}

	if a.form != nil {
		b.WriteString(a.form.View())
		b.WriteString("\n")
	}
	if a.formErr != "" {
		b.WriteString(a.styles.Error.Render(a.formErr))
		b.WriteString("\n")
	}
	if st.Error != "" {
		b.WriteString(a.styles.Error.Render(st.Error))
		b.WriteString("\n")
	}

	if a.landing.Path == access.PathLogin {
		b.WriteString(a.styles.Muted.Render("Don't have an account? Press esc, then u to sign up."))
	} else {
		b.WriteString(a.styles.Muted.Render("Already have an account? Press esc, then i to sign in."))
	}
	return b.String()
}

// renderDashboard shows the role data as key/value pairs
func (a *App) renderDashboard(role domain.Role) string {
	if a.busy {
		return a.spinner.View() + " " + a.styles.Muted.Render("Loading dashboard...")
	}
	if a.loadErr != "" {
		return a.styles.Error.Render(a.loadErr)
	}
	if len(a.data) == 0 {
		return a.styles.Muted.Render("No data available.")
	}

	var b strings.Builder
	names := sortedKeys(a.data)
	width := 0
	for _, k := range names {
		if len(k) > width {
			width = len(k)
		}
	}
	for i, k := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.styles.Key.Render(fmt.Sprintf("%-*s", width, k)))
		b.WriteString("  ")
		b.WriteString(fmt.Sprintf("%v", a.data[k]))
	}
	return a.styles.Subtitle.Render(role.Title()+" overview") + "\n" + a.styles.Border.Render(b.String())
}

// renderAdmin shows role counts and the user table
func (a *App) renderAdmin() string {
	var b strings.Builder

	counts := a.roleCounts()
	parts := make([]string, 0, len(domain.Roles())+1)
	parts = append(parts, fmt.Sprintf("Total: %d", len(a.users)))
	for _, r := range domain.Roles() {
		parts = append(parts, fmt.Sprintf("%s: %d", r.Title(), counts[r]))
	}
	b.WriteString(a.styles.Status.Render(strings.Join(parts, "  ")))
	b.WriteString("\n\n")

	if a.busy {
		b.WriteString(a.spinner.View() + " " + a.styles.Muted.Render("Loading users..."))
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Border.Render(a.table.View()))
	if a.loadErr != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Error.Render(a.loadErr))
	}
	return b.String()
}

func (a *App) renderForbidden() string {
	var b strings.Builder
	b.WriteString(a.styles.Error.Render("Access denied"))
	b.WriteString("\n\n")
	b.WriteString("You don't have permission to access this page.\n")
	b.WriteString(a.styles.Muted.Render("Press g to go to your dashboard or h to return home."))
	return b.String()
}

func (a *App) renderNotFound() string {
	var b strings.Builder
	b.WriteString(a.styles.Error.Render("404"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Page not found: %s\n", a.landing.Requested))
	b.WriteString(a.styles.Muted.Render("Press h to return home."))
	return b.String()
}

// renderHelpLine renders the help line at the bottom
func (a *App) renderHelpLine(st session.State) string {
	var bindings []key.Binding
	if a.form != nil {
		bindings = []key.Binding{keys.Back, keys.ForceQuit}
	} else {
		admin := st.User != nil && st.User.Role == domain.RoleAdmin && a.isAdminPage()
		bindings = keys.shortHelp(st.IsAuthenticated, admin)
	}

	items := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		items = append(items, a.styles.Key.Render(h.Key)+" "+h.Desc)
	}
	return a.styles.Help.Render(strings.Join(items, " • "))
}
