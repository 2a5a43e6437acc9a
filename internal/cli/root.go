// Package cli provides the chatctl command-line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Rrens/qorix-chat/internal/app"
	"github.com/Rrens/qorix-chat/internal/config"
	"github.com/Rrens/qorix-chat/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	cfg       *config.Config
	logCloser io.Closer
	chatApp   *app.App
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Local client for Qorix chat sessions",
	Long: `chatctl works on the same storage as the Qorix chat server.

It lists and manages conversations, sends messages to the configured
completion provider and stores settings such as the API key.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			cfg.Logging.Level = "debug"
		} else if cfg.Logging.Level == "info" {
			cfg.Logging.Level = "warn"
		}
		logCloser, err = logging.Setup(cfg.Logging)
		if err != nil {
			return fmt.Errorf("setup logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if chatApp != nil {
			if err := chatApp.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
			}
			chatApp = nil
		}
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// getApp builds the application on first use. Commands that only touch
// configuration (token, migrate) never open storage.
func getApp(ctx context.Context) (*app.App, error) {
	if chatApp != nil {
		return chatApp, nil
	}
	a, err := app.Build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	chatApp = a
	return chatApp, nil
}

// ExecuteContext runs the root command; ctx cancels in-flight requests.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
}
