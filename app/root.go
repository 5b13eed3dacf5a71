// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/sitesettings/sitesettings/internal/config"
	"github.com/sitesettings/sitesettings/internal/logger"
)

var configPath string // directory holding main.toml

var rootCmd = &cobra.Command{
	Use:   "site-settings",
	Short: "Site Settings is a versioned runtime settings store",
	Long: `Site Settings lets administrators change named configuration values
of a web application at runtime. Every change is versioned, auditable and reversible.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "path to the configuration directory")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and initialises the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err = logger.Init(cfg.Log); err != nil {
		return nil, err
	}

	return &cfg, nil
}
