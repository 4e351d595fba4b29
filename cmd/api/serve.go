package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	pg "pet-adoption-portal/internal/adapters/storage/postgres"
	"pet-adoption-portal/internal/catalog"
	"pet-adoption-portal/internal/platform/blob"
	"pet-adoption-portal/internal/platform/metrics"
	"pet-adoption-portal/internal/platform/tracing"
	"pet-adoption-portal/internal/router"
)

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer syncLogger(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Setup(ctx, tracing.Options{
				Endpoint:    cfg.Tracing.Endpoint,
				Insecure:    cfg.Tracing.Insecure,
				ServiceName: cfg.Tracing.ServiceName,
			})
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdownTracing(sctx)
			}()

			cat := catalog.Default()
			if cfg.CatalogPath != "" {
				if cat, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
					return err
				}
			}

			photos, err := blob.Open(ctx, blob.Options{
				Driver: blob.Driver(cfg.Blob.Driver),
				FSRoot: cfg.Blob.FSRoot,
				S3: blob.S3Config{
					Bucket:    cfg.Blob.S3Bucket,
					Region:    cfg.Blob.S3Region,
					Endpoint:  cfg.Blob.S3Endpoint,
					PathStyle: cfg.Blob.S3PathStyle,
				},
			})
			if err != nil {
				return err
			}

			db, err := openDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				if cfg.Database.Migrate {
					if err := pg.Migrate(ctx, db); err != nil {
						return err
					}
				}
			} else {
				log.Warn("no database dsn, using in-memory store", nil)
			}

			srv := &http.Server{
				Addr: cfg.Server.Addr,
				Handler: router.NewRouter(router.Options{
					Config:  cfg,
					Logger:  log,
					DB:      db,
					Catalog: cat,
					Photos:  photos,
					Metrics: metrics.New(),
				}),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting server", map[string]any{"addr": cfg.Server.Addr, "blob": photos.Driver()})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down", nil)
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}
}
