package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/forms"
	"github.com/felixgeelhaar/rolegate/internal/session"
	"github.com/felixgeelhaar/rolegate/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign up, sign out and inspect the session",
	Long: `Manage the local session.

The session token is kept in storage_dir/auth-storage.json and is used by
every other command. Expired tokens are discarded the next time the session
is read.

Subcommands:
  login     Sign in with email and password
  register  Create an account and sign in
  logout    Sign out and clear the stored session
  status    Show the current session

Examples:
  rolegate auth login --email employee@example.com --password password123
  rolegate auth login --redirect /dashboard/employee
  rolegate auth register --name "Ann Lee" --email ann@example.com --role employee
  rolegate auth status --remote -o yaml
  rolegate auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Long: `Sign in with email and password.

Missing values are prompted for when running in a terminal. --redirect
names the page to continue to; it is used only if your role may open it,
otherwise you land on your own dashboard.`,
	RunE: runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Long: `Sign out and clear the stored session.

The backend is told about the logout on a best-effort basis; the local
session is cleared even if it cannot be reached.`,
	RunE: runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email")
	authLoginCmd.Flags().String("password", "", "account password")
	authLoginCmd.Flags().String("redirect", "", "page to open after signing in")

	authRegisterCmd.Flags().String("name", "", "full name")
	authRegisterCmd.Flags().String("email", "", "account email")
	authRegisterCmd.Flags().String("password", "", "account password (at least 6 characters)")
	authRegisterCmd.Flags().String("role", "", "role: employee, manager or admin")

	authStatusCmd.Flags().Bool("remote", false, "also fetch the account from the backend")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

// signInReport is printed after a successful login or registration
type signInReport struct {
	User *domain.User `json:"user" yaml:"user"`
	Next string       `json:"next" yaml:"next"`
}

func (r signInReport) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Signed in as %s <%s> (%s)\nNext: %s\n", r.User.Name, r.User.Email, r.User.Role, r.Next)
	return err
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	f := forms.Login{}
	f.Email, _ = cmd.Flags().GetString("email")
	f.Password, _ = cmd.Flags().GetString("password")
	redirect, _ := cmd.Flags().GetString("redirect")

	if f.Email == "" || f.Password == "" {
		if !tui.ShouldPrompt() {
			return NonInteractiveError("email and password", "--email", "--password")
		}
		if err := tui.PromptLogin(&f); err != nil {
			return err
		}
	}
	if err := forms.Check(f); err != nil {
		return err
	}

	if redirect != "" {
		cc.Navigator.Remember(redirect)
	}

	if err := cc.Session.Login(cmd.Context(), strings.TrimSpace(f.Email), f.Password); err != nil {
		return err
	}
	return printSignIn(cc)
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	f := forms.Register{}
	f.Name, _ = cmd.Flags().GetString("name")
	f.Email, _ = cmd.Flags().GetString("email")
	f.Password, _ = cmd.Flags().GetString("password")
	role, _ := cmd.Flags().GetString("role")
	f.Role = domain.Role(strings.ToLower(strings.TrimSpace(role)))
	if f.Password != "" {
		f.ConfirmPassword = f.Password
	}

	if f.Name == "" || f.Email == "" || f.Password == "" || f.Role == "" {
		if !tui.ShouldPrompt() {
			return NonInteractiveError("name, email, password and role", "--name", "--email", "--password", "--role")
		}
		if err := tui.PromptRegister(&f); err != nil {
			return err
		}
	}
	if err := forms.Check(f); err != nil {
		return err
	}

	err = cc.Session.Register(cmd.Context(), session.RegisterInput{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     f.Role,
	})
	if err != nil {
		return err
	}
	return printSignIn(cc)
}

func printSignIn(cc *CommandContext) error {
	st := cc.Session.State()
	return cc.Print(signInReport{
		User: st.User,
		Next: cc.Navigator.AfterLogin(access.PathLogin),
	})
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if !cc.Session.State().IsAuthenticated {
		fmt.Fprintln(cc.Out, "Not signed in.")
		return nil
	}

	cc.Session.Logout(cmd.Context())
	fmt.Fprintln(cc.Out, "Signed out.")
	return nil
}

// statusReport describes the stored session
type statusReport struct {
	Authenticated bool                `json:"authenticated" yaml:"authenticated"`
	User          *domain.User        `json:"user,omitempty" yaml:"user,omitempty"`
	Dashboard     string              `json:"dashboard,omitempty" yaml:"dashboard,omitempty"`
	Account       *domain.UserProfile `json:"account,omitempty" yaml:"account,omitempty"`
	APIURL        string              `json:"api_url" yaml:"api_url"`
	StorageDir    string              `json:"storage_dir" yaml:"storage_dir"`
}

func (r statusReport) RenderText(w io.Writer) error {
	var b strings.Builder
	if !r.Authenticated {
		b.WriteString("Not signed in.\n")
	} else {
		fmt.Fprintf(&b, "Signed in as %s <%s>\n", r.User.Name, r.User.Email)
		fmt.Fprintf(&b, "Role:      %s\n", r.User.Role)
		fmt.Fprintf(&b, "Dashboard: %s\n", r.Dashboard)
	}
	if r.Account != nil {
		fmt.Fprintf(&b, "Account:   %s (id %s)\n", r.Account.FullName(), r.Account.ID)
	}
	fmt.Fprintf(&b, "API:       %s\n", r.APIURL)
	fmt.Fprintf(&b, "Storage:   %s\n", r.StorageDir)
	_, err := io.WriteString(w, b.String())
	return err
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	remote, _ := cmd.Flags().GetBool("remote")

	st := cc.Session.State()
	report := statusReport{
		Authenticated: st.IsAuthenticated,
		User:          st.User,
		APIURL:        cc.Config.APIURL,
		StorageDir:    cc.Config.StorageDir,
	}
	if st.IsAuthenticated {
		report.Dashboard = cc.Navigator.Home()
		if remote {
			account, err := cc.Client.GetCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			report.Account = account
		}
	}
	return cc.Print(report)
}
