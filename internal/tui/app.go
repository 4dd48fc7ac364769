// Package tui is the interactive terminal client.
//
// The App drives every page through an access.Navigator, so the same guard
// and redirect memory apply here as on the command line.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/errors"
	"github.com/felixgeelhaar/rolegate/internal/forms"
	"github.com/felixgeelhaar/rolegate/internal/platform"
	"github.com/felixgeelhaar/rolegate/internal/session"
)

// Session is the part of the session store the UI drives
type Session interface {
	State() session.State
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, in session.RegisterInput) error
	Logout(ctx context.Context)
	ClearError()
}

// API loads what the dashboards show
type API interface {
	GetDashboardData(ctx context.Context, role domain.Role) (platform.DashboardData, error)
	ListUsers(ctx context.Context) ([]domain.UserProfile, error)
	DeleteUser(ctx context.Context, id domain.ID) error
}

// Banner texts shown after a guarded navigation
const (
	signInNotice    = "Please sign in to access this page."
	forbiddenNotice = "You don't have permission to access this page."
)

// Messages produced by commands
type (
	authDoneMsg struct {
		err error
	}

	loggedOutMsg struct{}

	dataMsg struct {
		role domain.Role
		data platform.DashboardData
		err  error
	}

	usersMsg struct {
		users []domain.UserProfile
		err   error
	}

	deletedMsg struct {
		id  domain.ID
		err error
	}
)

// App is the bubbletea model for the whole client
type App struct {
	ctx     context.Context
	session Session
	api     API
	nav     *access.Navigator

	// Page state
	landing access.Landing
	warning string
	notice  string

	// Forms are bound to these values
	form     *huh.Form
	login    forms.Login
	register forms.Register
	formErr  string

	// Dashboard state
	busy    bool
	data    platform.DashboardData
	users   []domain.UserProfile
	table   table.Model
	loadErr string

	spinner  spinner.Model
	pending  tea.Cmd
	styles   Styles
	width    int
	height   int
	quitting bool
}

// NewApp creates the client positioned at start
func NewApp(ctx context.Context, sess Session, api API, nav *access.Navigator, start string) *App {
	if start == "" {
		start = access.PathHome
	}

	a := &App{
		ctx:     ctx,
		session: sess,
		api:     api,
		nav:     nav,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		table:   newUserTable(),
		styles:  DefaultStyles(),
	}
	a.pending = a.navigate(start)
	return a
}

// Init starts the spinner and whatever the first page needs
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.pending)
}

// Path returns the page being shown
func (a *App) Path() string {
	return a.landing.Path
}

// Landing returns the last navigation result
func (a *App) Landing() access.Landing {
	return a.landing
}

// Update handles messages and updates the model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case authDoneMsg:
		return a, a.handleAuthDone(msg)

	case loggedOutMsg:
		a.busy = false
		return a, a.navigate(access.PathLogin)

	case dataMsg:
		if a.landing.Path != access.DashboardPath(msg.role) {
			return a, nil
		}
		a.busy = false
		if msg.err != nil {
			a.loadErr = errors.UserMessage(msg.err)
			return a, nil
		}
		a.data = msg.data
		return a, nil

	case usersMsg:
		if !a.isAdminPage() {
			return a, nil
		}
		a.busy = false
		if msg.err != nil {
			a.loadErr = errors.UserMessage(msg.err)
			return a, nil
		}
		a.setUsers(msg.users)
		return a, nil

	case deletedMsg:
		if msg.err != nil {
			a.busy = false
			a.loadErr = errors.UserMessage(msg.err)
			return a, nil
		}
		a.notice = fmt.Sprintf("Deleted user %s.", msg.id)
		return a, a.loadUsers()
	}

	return a.updateForm(msg)
}

// handleKeyPress processes keyboard input
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		a.quitting = true
		return a, tea.Quit
	}

	// Forms own the keyboard except for leaving the page.
	if a.form != nil {
		if key.Matches(msg, keys.Back) {
			return a, a.navigate(access.PathHome)
		}
		return a.updateForm(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		a.quitting = true
		return a, tea.Quit
	case key.Matches(msg, keys.Home), key.Matches(msg, keys.Back):
		return a, a.navigate(access.PathHome)
	case key.Matches(msg, keys.Dashboard):
		return a, a.navigate(a.nav.Home())
	case key.Matches(msg, keys.SignIn):
		return a, a.navigate(access.PathLogin)
	case key.Matches(msg, keys.SignUp):
		return a, a.navigate(access.PathRegister)
	case key.Matches(msg, keys.Logout):
		return a, a.logout()
	case key.Matches(msg, keys.Refresh):
		return a, a.navigate(a.landing.Requested)
	case key.Matches(msg, keys.Delete):
		return a, a.deleteSelected()
	}

	if a.isAdminPage() {
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}
	return a, nil
}

// navigate moves to path through the navigator and prepares the page
func (a *App) navigate(path string) tea.Cmd {
	a.landing = a.nav.Navigate(path)
	a.warning = ""
	a.notice = ""
	a.form = nil
	a.formErr = ""
	a.data = nil
	a.loadErr = ""
	a.busy = false

	switch a.landing.Decision.Outcome {
	case access.RedirectToLogin:
		a.warning = signInNotice
	case access.RedirectToForbidden:
		a.warning = forbiddenNotice
	}

	switch a.landing.Path {
	case access.PathLogin:
		a.session.ClearError()
		a.login = forms.Login{}
		a.form = a.newLoginForm()
		return a.form.Init()
	case access.PathRegister:
		a.session.ClearError()
		a.register = forms.Register{Role: domain.RoleEmployee}
		a.form = a.newRegisterForm()
		return a.form.Init()
	}

	if role, ok := dashboardRole(a.landing.Path); ok {
		if role == domain.RoleAdmin {
			return a.loadUsers()
		}
		return a.loadData(role)
	}
	return nil
}

func (a *App) newLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&a.login.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&a.login.Password),
		).Title("Sign in"),
	)
}

func (a *App) newRegisterForm() *huh.Form {
	roles := make([]huh.Option[domain.Role], 0, len(domain.Roles()))
	for _, r := range domain.Roles() {
		roles = append(roles, huh.NewOption(r.Title(), r))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&a.register.Name),
			huh.NewInput().Title("Email").Placeholder("you@example.com").Value(&a.register.Email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&a.register.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&a.register.ConfirmPassword),
			huh.NewSelect[domain.Role]().Title("Role").Options(roles...).Value(&a.register.Role),
		).Title("Create an account"),
	)
}

// updateForm forwards msg to the active form and submits it once complete
func (a *App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.form == nil {
		return a, nil
	}

	model, cmd := a.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		if a.landing.Path == access.PathRegister {
			return a, a.submitRegister()
		}
		return a, a.submitLogin()
	case huh.StateAborted:
		return a, a.navigate(access.PathHome)
	}
	return a, cmd
}

// submitLogin validates the login form and signs in
func (a *App) submitLogin() tea.Cmd {
	a.session.ClearError()
	if err := forms.Check(a.login); err != nil {
		a.formErr = errors.UserMessage(err)
		a.form = a.newLoginForm()
		return a.form.Init()
	}

	a.formErr = ""
	a.busy = true
	ctx, sess := a.ctx, a.session
	email, password := strings.TrimSpace(a.login.Email), a.login.Password
	return func() tea.Msg {
		return authDoneMsg{err: sess.Login(ctx, email, password)}
	}
}

// submitRegister validates the registration form and creates the account
func (a *App) submitRegister() tea.Cmd {
	a.session.ClearError()
	if err := forms.Check(a.register); err != nil {
		a.formErr = errors.UserMessage(err)
		a.form = a.newRegisterForm()
		return a.form.Init()
	}

	a.formErr = ""
	a.busy = true
	ctx, sess := a.ctx, a.session
	in := session.RegisterInput{
		Name:     strings.TrimSpace(a.register.Name),
		Email:    strings.TrimSpace(a.register.Email),
		Password: a.register.Password,
		Role:     a.register.Role,
	}
	return func() tea.Msg {
		return authDoneMsg{err: sess.Register(ctx, in)}
	}
}

func (a *App) handleAuthDone(msg authDoneMsg) tea.Cmd {
	if errors.Is(msg.err, errors.ErrCodeSuperseded) {
		return nil
	}
	a.busy = false

	st := a.session.State()
	if msg.err != nil || !st.IsAuthenticated {
		// The store already carries the message; give the user a fresh form.
		if a.landing.Path == access.PathRegister {
			a.form = a.newRegisterForm()
		} else {
			a.form = a.newLoginForm()
		}
		return a.form.Init()
	}

	cmd := a.navigate(a.nav.AfterLogin(access.PathLogin))
	if st.User != nil {
		a.notice = fmt.Sprintf("Welcome! You've successfully signed in as %s.", article(st.User.Role))
	}
	return cmd
}

func (a *App) logout() tea.Cmd {
	if !a.session.State().IsAuthenticated {
		return nil
	}
	a.busy = true
	ctx, sess := a.ctx, a.session
	return func() tea.Msg {
		sess.Logout(ctx)
		return loggedOutMsg{}
	}
}

func (a *App) loadData(role domain.Role) tea.Cmd {
	a.busy = true
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		data, err := api.GetDashboardData(ctx, role)
		return dataMsg{role: role, data: data, err: err}
	}
}

func (a *App) loadUsers() tea.Cmd {
	a.busy = true
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		users, err := api.ListUsers(ctx)
		return usersMsg{users: users, err: err}
	}
}

// deleteSelected removes the highlighted user on the admin dashboard
func (a *App) deleteSelected() tea.Cmd {
	if !a.isAdminPage() || a.busy {
		return nil
	}
	row := a.table.SelectedRow()
	if len(row) == 0 {
		return nil
	}

	id := domain.ID(row[0])
	if st := a.session.State(); st.User != nil && st.User.ID == id.String() {
		a.loadErr = "You cannot delete your own account."
		return nil
	}

	a.busy = true
	a.loadErr = ""
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		return deletedMsg{id: id, err: api.DeleteUser(ctx, id)}
	}
}

func (a *App) setUsers(users []domain.UserProfile) {
	a.users = users
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, table.Row{u.ID.String(), u.FullName(), u.Email, string(u.Role)})
	}
	a.table.SetRows(rows)
}

func (a *App) isAdminPage() bool {
	return a.landing.Path == access.DashboardPath(domain.RoleAdmin)
}

// roleCounts tallies the loaded users per role
func (a *App) roleCounts() map[domain.Role]int {
	counts := make(map[domain.Role]int, len(domain.Roles()))
	for _, u := range a.users {
		counts[u.Role]++
	}
	return counts
}

func newUserTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 36},
			{Title: "Name", Width: 20},
			{Title: "Email", Width: 28},
			{Title: "Role", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
}

// dashboardRole reports which role's dashboard path is
func dashboardRole(path string) (domain.Role, bool) {
	for _, r := range domain.Roles() {
		if access.DashboardPath(r) == path {
			return r, true
		}
	}
	return "", false
}

func article(r domain.Role) string {
	if strings.IndexAny(string(r), "aeiou") == 0 {
		return "an " + string(r)
	}
	return "a " + string(r)
}

// sortedKeys returns the keys of data in order
func sortedKeys(data platform.DashboardData) []string {
	out := make([]string, 0, len(data))
	for k := range data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
