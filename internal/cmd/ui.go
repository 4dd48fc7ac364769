package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Start the interactive terminal client",
	Long: `Start the interactive terminal client.

The client shares the stored session with the other commands, so signing
in here also signs in 'rolegate open' and 'rolegate admin'.

Keys:
  i sign in   u sign up   g dashboard   h home   r refresh
  d delete the selected user (admin dashboard)   l log out   q quit`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().String("path", access.PathHome, "page to open first")
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	if !tui.IsInteractive() {
		return NonInteractiveError("a terminal is", "commands such as 'rolegate open' instead")
	}

	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("path")

	app := tui.NewApp(cmd.Context(), cc.Session, cc.Client, cc.Navigator, path)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
