package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sitesettings/sitesettings/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate the database and create missing roles, settings and the bootstrap admin",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err = daemon.RunSeed(cmd.Context(), cfg); err != nil {
			return err
		}

		log.Info().Msg("seed done")

		return nil
	},
}
