package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rolegate/internal/ux"
	"github.com/felixgeelhaar/rolegate/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "show detailed version information")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.GetInfo()
	out := cmd.OutOrStdout()

	output, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if output.Structured() {
		return ux.Print(out, output, info)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		fmt.Fprintln(out, info.String())
		return nil
	}

	fmt.Fprintf(out, "rolegate %s\n", info.Short())
	return nil
}
