// Package cli implements the davbox command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmaehler/davbox/davclient"
	"github.com/tmaehler/davbox/internal/config"
	"github.com/tmaehler/davbox/notes"
)

var (
	configPath string
	verbose    bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "davbox",
	Short: "davbox talks CalDAV, CardDAV and Notes to a groupware server",
	Long: `davbox is a command-line groupware client: events, tasks and contacts
over CalDAV/CardDAV, JSON notes, and raw file transfer.

The server is the single source of truth. Every command reads fresh
state, guards writes with entity tags, and keeps fields it does not
understand byte-for-byte intact.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

// Execute runs the CLI, reporting the failure on stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// requireSetup loads and validates the config and builds the DAV client.
// Network commands start here.
func requireSetup() (*davclient.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	c, err := davclient.New(davclient.Options{
		ServerURL: cfg.URL,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Insecure:  cfg.Insecure,
		Timeout:   cfg.Timeout(),
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

func requireNotes() (*notes.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return notes.New(notes.Options{
		ServerURL: cfg.URL,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Timeout:   cfg.Timeout(),
		Logger:    logger,
	})
}
