package main

import (
	"github.com/spf13/cobra"

	"github.com/javaniecampbell/storymap/internal/config"
	"github.com/javaniecampbell/storymap/internal/database"
	"github.com/javaniecampbell/storymap/internal/logger"
)

var migrateTo int32

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		log := logger.NewLoggerWithService(cfg.Observability, &logger.LoggerService{})

		if cmd.Flags().Changed("to") {
			return database.MigrateTo(cmd.Context(), &log, cfg, migrateTo)
		}
		return database.Migrate(cmd.Context(), &log, cfg)
	},
}

func init() {
	migrateCmd.Flags().Int32Var(&migrateTo, "to", 0, "migrate to this version instead of the latest")
}
