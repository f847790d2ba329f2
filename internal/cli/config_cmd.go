package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmaehler/davbox/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the davbox configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := configPath
		if target == "" {
			target = config.DefaultPath()
		}
		existed := false
		if _, err := os.Stat(target); err == nil {
			existed = true
		}
		written, err := config.Init(target)
		if err != nil {
			return err
		}
		if existed {
			fmt.Fprintf(cmd.OutOrStdout(), "config already exists at %s, left untouched\n", written)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, fill in your server details\n", written)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		password := "(not set)"
		if cfg.Password != "" {
			password = "(set)"
		}
		w := newTable(cmd.OutOrStdout())
		fmt.Fprintf(w, "url\t%s\n", cfg.URL)
		fmt.Fprintf(w, "username\t%s\n", cfg.Username)
		fmt.Fprintf(w, "password\t%s\n", password)
		fmt.Fprintf(w, "calendar\t%s\n", cfg.Calendar)
		fmt.Fprintf(w, "addressbook\t%s\n", cfg.Addressbook)
		fmt.Fprintf(w, "insecure\t%t\n", cfg.Insecure)
		fmt.Fprintf(w, "timeout\t%s\n", cfg.Timeout())
		return w.Flush()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := configPath
		if target == "" {
			target = config.DefaultPath()
		}
		fmt.Fprintln(cmd.OutOrStdout(), target)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
