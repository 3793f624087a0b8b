package cmd

import (
	"github.com/spf13/cobra"

	"account-ledger/internal/config"
	"account-ledger/internal/server"
	"account-ledger/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the ledger schema to Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := cfg.NewLogger()

		db, err := server.OpenDB(cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			return err
		}
		defer db.Close()

		if err := migrations.Apply(cmd.Context(), db, logger); err != nil {
			logger.Error("Migration failed", "error", err)
			return err
		}
		logger.Info("Migrations applied")
		return nil
	},
}
