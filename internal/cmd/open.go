package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/platform"
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Open a page and print what it shows",
	Long: `Open a page the way the terminal UI would and print the result.

The page is resolved through the route table (legacy paths such as
/employee-dashboard are followed) and guarded against the current session.
Dashboards print their data; pages you may not open exit non-zero:

  3  your role may not open the page
  5  you need to sign in first

Examples:
  rolegate open /dashboard/employee
  rolegate open /manager-dashboard -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

// pageReport is the outcome of one navigation
type pageReport struct {
	Requested string                 `json:"requested" yaml:"requested"`
	Path      string                 `json:"path" yaml:"path"`
	Page      string                 `json:"page" yaml:"page"`
	Outcome   string                 `json:"outcome" yaml:"outcome"`
	Data      platform.DashboardData `json:"data,omitempty" yaml:"data,omitempty"`
	Users     userList               `json:"users,omitempty" yaml:"users,omitempty"`
}

func (r pageReport) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Requested: %s\n", r.Requested)
	fmt.Fprintf(w, "Showing:   %s (%s)\n", r.Path, r.Page)
	fmt.Fprintf(w, "Outcome:   %s\n", r.Outcome)

	if len(r.Data) > 0 {
		data, err := yaml.Marshal(map[string]interface{}(r.Data))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%s", data)
	}
	if r.Users != nil {
		fmt.Fprintln(w)
		return r.Users.RenderText(w)
	}
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	landing := cc.Navigator.Navigate(args[0])
	report := pageReport{
		Requested: landing.Requested,
		Path:      landing.Path,
		Page:      landing.Route.Name,
		Outcome:   landing.Decision.Outcome.String(),
	}
	if landing.NotFound {
		report.Outcome = "not_found"
	}

	if gerr := guardError(landing); gerr != nil {
		if err := cc.Print(report); err != nil {
			return err
		}
		return gerr
	}

	if role, ok := dashboardRole(landing.Path); ok {
		if role == domain.RoleAdmin {
			users, err := cc.Client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			report.Users = users
		} else {
			data, err := cc.Client.GetDashboardData(cmd.Context(), role)
			if err != nil {
				return err
			}
			report.Data = data
		}
	}
	return cc.Print(report)
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
