package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rolegate",
	Short: "Role-based access client for the employee, manager and admin API",
	Long: `rolegate signs you in to the employee/manager/admin backend, keeps the
session on disk and opens the pages your role may see.

Commands that need a session read it from storage_dir (default ~/.rolegate).
Pages are guarded the same way everywhere: signed-out users are sent to
sign in, users with the wrong role are refused.

Examples:
  rolegate auth login --email employee@example.com
  rolegate open /dashboard/employee
  rolegate admin users list
  rolegate ui
  rolegate mock-server`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExecuteContext runs the root command with ctx
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.rolegate/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL including /api (overrides api_url)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text, json or yaml")
}
