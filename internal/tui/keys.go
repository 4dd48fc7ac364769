package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard shortcuts
type keyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Back      key.Binding
	Home      key.Binding
	Dashboard key.Binding
	SignIn    key.Binding
	SignUp    key.Binding
	Logout    key.Binding
	Refresh   key.Binding
	Delete    key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Home: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "home"),
	),
	Dashboard: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "dashboard"),
	),
	SignIn: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "sign in"),
	),
	SignUp: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "sign up"),
	),
	Logout: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "log out"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete user"),
	),
}

// shortHelp lists the bindings shown in the footer for the current page
func (k keyMap) shortHelp(signedIn, admin bool) []key.Binding {
	bindings := []key.Binding{k.Home}
	if signedIn {
		bindings = append(bindings, k.Dashboard, k.Refresh)
		if admin {
			bindings = append(bindings, k.Delete)
		}
		bindings = append(bindings, k.Logout)
	} else {
		bindings = append(bindings, k.SignIn, k.SignUp)
	}
	return append(bindings, k.Quit)
}
