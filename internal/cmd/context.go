package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rolegate/internal/access"
	"github.com/felixgeelhaar/rolegate/internal/config"
	"github.com/felixgeelhaar/rolegate/internal/log"
	"github.com/felixgeelhaar/rolegate/internal/platform"
	"github.com/felixgeelhaar/rolegate/internal/session"
	"github.com/felixgeelhaar/rolegate/internal/ux"
)

// CommandContext holds everything a command needs, built once per
// invocation from flags and configuration:
// - the resolved Config and Logger
// - the API client, wired to read the bearer token from the session
// - the session store rehydrated from storage_dir
// - a Navigator over the default route table
type CommandContext struct {
	Config    *config.Config
	Logger    *log.Logger
	Client    *platform.Client
	Session   *session.Store
	Navigator *access.Navigator

	// Output is the --output format
	Output ux.Output
	Out    io.Writer
}

// NewCommandContext builds the command context from cobra flags.
// Commands call this in their RunE function:
//
//	func runCommand(cmd *cobra.Command, args []string) error {
//		cc, err := NewCommandContext(cmd)
//		if err != nil {
//			return err
//		}
//		// Use cc.Session, cc.Client, etc.
//	}
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	output, err := outputFormat(cmd)
	if err != nil {
		return nil, err
	}

	logger := log.New(cfg.Logger())
	client := platform.NewClient(cfg.APIURL,
		platform.WithTimeout(cfg.Timeout),
		platform.WithLogger(logger),
	)
	store := session.New(cmd.Context(), session.Options{
		Gateway: client,
		Storage: session.NewFileStorage(cfg.StorageDir),
		Logger:  logger,
	})
	client.SetTokenSource(store.Token)

	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Session:   store,
		Navigator: access.NewNavigator(nil, store),
		Output:    output,
		Out:       cmd.OutOrStdout(),
	}, nil
}

// Print writes v in the selected output format
func (c *CommandContext) Print(v interface{}) error {
	return ux.Print(c.Out, c.Output, v)
}

// loadConfig resolves configuration from --config, the environment and the
// global flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	apiURL, _ := cmd.Flags().GetString("api-url")
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	return config.Load(config.LoadOptions{
		File: file,
		Overrides: map[string]string{
			"api_url":    apiURL,
			"log.level":  level,
			"log.format": format,
		},
	})
}

func outputFormat(cmd *cobra.Command) (ux.Output, error) {
	output, _ := cmd.Flags().GetString("output")
	return ux.ParseOutput(output)
}
