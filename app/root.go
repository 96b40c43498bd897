// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/logger"
)

var (
	configPath string // path to the directory holding main.toml
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "zymptek-api",
		Short: "Zymptek API serves the admin authentication backend",
		Long: `Zymptek API serves admin sign-in, sign-out and session refresh against
the identity provider and guards the admin routes by role and account status.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory of main.toml")
}

// loadConfig reads the configuration and initialises the logger.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err //nolint:wrapcheck
	}

	return logger.Init(cfg.Log) //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute() //nolint:wrapcheck
}
