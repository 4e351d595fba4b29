package main

import (
	"errors"

	"github.com/spf13/cobra"

	pg "pet-adoption-portal/internal/adapters/storage/postgres"
)

func newMigrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer syncLogger(log)

			db, err := openDB(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("database.dsn is required")
			}
			defer db.Close()

			if err := pg.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("schema applied", nil)
			return nil
		},
	}
}
