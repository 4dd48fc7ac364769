package cmd

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/forms"
	"github.com/felixgeelhaar/rolegate/internal/platform"
	"github.com/felixgeelhaar/rolegate/internal/tui"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administer accounts (admin role)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List, add, update and delete accounts",
	Long: `Manage accounts from the command line. Requires a session with role admin.

Examples:
  rolegate admin users list
  rolegate admin users add --first-name Ann --last-name Lee --email ann@example.com \
      --password s3cretpass --role employee --employment-date 2024-01-15 \
      --department Sales --position Rep
  rolegate admin users update <id> --role manager --managed-department Sales
  rolegate admin users delete <id> --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var adminUsersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runAdminUsersList,
}

var adminUsersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE:  runAdminUsersAdd,
}

var adminUsersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an account; only the given flags are updated",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersUpdate,
}

var adminUsersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUsersDelete,
}

func init() {
	addUserFlags(adminUsersAddCmd)
	addUserFlags(adminUsersUpdateCmd)
	adminUsersDeleteCmd.Flags().BoolP("yes", "y", false, "delete without asking")

	adminUsersCmd.AddCommand(adminUsersListCmd)
	adminUsersCmd.AddCommand(adminUsersAddCmd)
	adminUsersCmd.AddCommand(adminUsersUpdateCmd)
	adminUsersCmd.AddCommand(adminUsersDeleteCmd)
	adminCmd.AddCommand(adminUsersCmd)
	rootCmd.AddCommand(adminCmd)
}

func addUserFlags(c *cobra.Command) {
	c.Flags().String("first-name", "", "first name")
	c.Flags().String("last-name", "", "last name")
	c.Flags().String("email", "", "email address")
	c.Flags().String("password", "", "password (at least 8 characters)")
	c.Flags().String("role", "", "role: employee, manager or admin")
	c.Flags().String("employment-date", "", "employment date (YYYY-MM-DD)")
	c.Flags().String("department", "", "department (employees)")
	c.Flags().String("position", "", "position (employees)")
	c.Flags().String("managed-department", "", "managed department (managers)")
}

// applyUserFlags copies every flag the user set onto f
func applyUserFlags(cmd *cobra.Command, f *forms.UserForm) {
	fields := map[string]*string{
		"first-name":         &f.FirstName,
		"last-name":          &f.LastName,
		"email":              &f.Email,
		"password":           &f.Password,
		"employment-date":    &f.EmploymentDate,
		"department":         &f.Department,
		"position":           &f.Position,
		"managed-department": &f.ManagedDepartment,
	}
	for name, dst := range fields {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	if cmd.Flags().Changed("role") {
		role, _ := cmd.Flags().GetString("role")
		f.Role = domain.Role(strings.ToLower(strings.TrimSpace(role)))
	}
}

// requireAdmin guards admin commands with the admin dashboard's rule
func requireAdmin(cc *CommandContext) error {
	return guardError(cc.Navigator.Navigate(access.DashboardPath(domain.RoleAdmin)))
}

// userList renders accounts as a table
type userList []domain.UserProfile

func (l userList) RenderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "No users.")
		return err
	}

	rows := make([][]string, 0, len(l))
	for _, u := range l {
		rows = append(rows, []string{u.ID.String(), u.FullName(), u.Email, string(u.Role), profileSummary(u)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "EMAIL", "ROLE", "PROFILE").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// userCard renders one account
type userCard domain.UserProfile

func (u userCard) RenderText(w io.Writer) error {
	p := domain.UserProfile(u)
	fmt.Fprintf(w, "ID:         %s\n", p.ID)
	fmt.Fprintf(w, "Name:       %s\n", p.FullName())
	fmt.Fprintf(w, "Email:      %s\n", p.Email)
	fmt.Fprintf(w, "Role:       %s\n", p.Role)
	if p.EmploymentDate != "" {
		fmt.Fprintf(w, "Employed:   %s\n", p.EmploymentDate)
	}
	if s := profileSummary(p); s != "" {
		fmt.Fprintf(w, "Profile:    %s\n", s)
	}
	return nil
}

func profileSummary(u domain.UserProfile) string {
	switch {
	case u.EmployeeProfile != nil:
		return fmt.Sprintf("%s / %s", u.EmployeeProfile.Department, u.EmployeeProfile.Position)
	case u.ManagerProfile != nil:
		return "manages " + u.ManagerProfile.ManagedDepartment
	}
	return ""
}

func runAdminUsersList(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := requireAdmin(cc); err != nil {
		return err
	}

	users, err := cc.Client.ListUsers(cmd.Context())
	if err != nil {
		return err
	}
	return cc.Print(userList(users))
}

func runAdminUsersAdd(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := requireAdmin(cc); err != nil {
		return err
	}

	f := forms.UserForm{Creating: true}
	applyUserFlags(cmd, &f)
	if tui.ShouldPrompt() {
		if err := tui.PromptUserForm(&f); err != nil {
			return err
		}
	}
	if err := forms.Check(f); err != nil {
		return err
	}

	created, err := cc.Client.CreateUser(cmd.Context(), f.ToInput())
	if err != nil {
		return err
	}
	return cc.Print(userCard(*created))
}

func runAdminUsersUpdate(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := requireAdmin(cc); err != nil {
		return err
	}

	id := domain.ID(args[0])
	current, err := cc.Client.GetUser(cmd.Context(), id)
	if err != nil {
		if platform.StatusOf(err) == http.StatusNotFound {
			return UserNotFoundError(args[0])
		}
		return err
	}

	f := forms.UserFormFromProfile(*current)
	applyUserFlags(cmd, &f)
	if err := forms.Check(f); err != nil {
		return err
	}

	updated, err := cc.Client.UpdateUser(cmd.Context(), id, f.ToInput())
	if err != nil {
		return err
	}
	return cc.Print(userCard(*updated))
}

func runAdminUsersDelete(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	if err := requireAdmin(cc); err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !tui.ShouldPrompt() {
			return NonInteractiveError("confirmation", "--yes")
		}
		ok, err := tui.PromptForConfirmation(fmt.Sprintf("Delete user %s?", args[0]), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cc.Out, "Cancelled.")
			return nil
		}
	}

	if err := cc.Client.DeleteUser(cmd.Context(), domain.ID(args[0])); err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "Deleted user %s.\n", args[0])
	return nil
}
