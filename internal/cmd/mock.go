package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rolegate/internal/log"
	"github.com/felixgeelhaar/rolegate/internal/mockapi"
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local backend with seeded accounts",
	Long: `Run an in-memory backend that speaks the same API as the real one.

Three accounts are seeded unless --no-seed is given, all with password
password123:
  employee@example.com   manager@example.com   admin@example.com

Tokens are HS256 JWTs signed with mock.signing_key and valid for
mock.token_ttl. All data is lost when the server stops.

Example:
  rolegate mock-server --addr :8000`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	mockServerCmd.Flags().String("addr", "", "listen address (overrides mock.addr)")
	mockServerCmd.Flags().Bool("no-seed", false, "start without the seeded accounts")
	mockServerCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "maximum time to drain connections on shutdown")
	rootCmd.AddCommand(mockServerCmd)
}

func runMockServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Mock.Addr
	}
	noSeed, _ := cmd.Flags().GetBool("no-seed")
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	logCfg := cfg.Logger()
	if !cmd.Flags().Changed("log-level") && cfg.Log.Level == "warn" {
		logCfg.Level = log.LevelInfo
	}
	logCfg.ServiceName = "mock-api"
	logger := log.New(logCfg)

	srv, err := mockapi.NewServer(mockapi.Config{
		Address:         addr,
		SigningKey:      cfg.Mock.SigningKey,
		TokenTTL:        cfg.Mock.TokenTTL,
		ShutdownTimeout: shutdownTimeout,
		Seed:            !noSeed,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mock API listening on http://%s/api\n", displayAddr(addr))
	if !noSeed {
		fmt.Fprintf(out, "Seeded accounts (password %s):\n", mockapi.SeedPassword)
		for _, email := range []string{"employee@example.com", "manager@example.com", "admin@example.com"} {
			fmt.Fprintf(out, "  %s\n", email)
		}
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop the server")

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Fprintln(out, "\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		fmt.Fprintln(out, "Server stopped")
		return nil
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
