package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	pg "pet-adoption-portal/internal/adapters/storage/postgres"
	"pet-adoption-portal/internal/config"
	"pet-adoption-portal/internal/platform/logger"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "api",
		Short:         "Portal de adopción de mascotas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "archivo de configuración YAML")

	load := func() (*config.Config, logger.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		log := logger.New(logger.Options{
			Level:  logger.ParseLevel(cfg.Logging.Level),
			Format: logger.ParseFormat(cfg.Logging.Format),
			App:    cfg.Logging.App,
		})
		return cfg, log, nil
	}

	root.AddCommand(newServeCmd(load))
	root.AddCommand(newMigrateCmd(load))
	root.AddCommand(newCreateModeratorCmd(load))
	return root
}

type loadFunc func() (*config.Config, logger.Logger, error)

// openDB abre Postgres si hay DSN. Sin DSN devuelve nil (store en memoria).
func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	return pg.Open(ctx, pg.Options{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
}

func syncLogger(log logger.Logger) {
	if z, ok := log.(*logger.ZapLogger); ok {
		_ = z.Sync()
	}
}
