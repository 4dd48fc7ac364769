package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rolegate/internal/config"
	"github.com/felixgeelhaar/rolegate/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show rolegate configuration",
	Long: `Show the configuration rolegate runs with.

Settings come from, in increasing precedence:
  • built-in defaults
  • the config file (--config, or ~/.rolegate/config.yaml if present)
  • ROLEGATE_* environment variables, e.g. ROLEGATE_API_URL
  • global flags such as --api-url and --log-level

Examples:
  rolegate config show
  rolegate config show -o json
  rolegate config path
`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !output.Structured() {
		file := cfg.File
		if file == "" {
			file = "(none, using defaults and environment)"
		}
		fmt.Fprintf(out, "Configuration file: %s\n\n", file)
	}
	return ux.Print(out, output, cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("config")
	if file == "" {
		file = config.DefaultFile()
	}
	fmt.Fprintln(cmd.OutOrStdout(), file)
	return nil
}
