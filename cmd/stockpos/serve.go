package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stockpos/internal/infrastructure/mysql"
	"stockpos/internal/product"
	"stockpos/internal/sale"
	saleusecase "stockpos/internal/sale/usecase"
	"stockpos/internal/server"
	"stockpos/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, zapLogger, err := root.setup()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			if migrateFirst {
				if err := runMigration(cfg.Database, zapLogger, true); err != nil {
					return err
				}
			}

			db, err := mysql.NewConnection(cfg.Database, zapLogger)
			if err != nil {
				return err
			}
			defer db.Close()
			zapLogger.Info("database connected")

			store := storage.NewStore(db)
			productModule := product.NewModule(store, zapLogger)
			saleCtrl := sale.NewModule(store, productModule.Service, cfg.Sale, zapLogger)

			router := server.NewRouter(cfg.Server.RateLimit, zapLogger, productModule.Controller, saleCtrl)
			srvCfg := cfg.Server
			saleBudget := saleusecase.MaxDuration(cfg.Sale.TxTimeout, cfg.Sale.MaxRetryAttempts)
			srvCfg.WriteTimeout = server.EffectiveWriteTimeout(cfg.Server.WriteTimeout, saleBudget)
			if srvCfg.WriteTimeout != cfg.Server.WriteTimeout {
				zapLogger.Warn("write timeout adjusted to outlast a sale with all retries",
					zap.Duration("configured", cfg.Server.WriteTimeout),
					zap.Duration("effective", srvCfg.WriteTimeout),
					zap.Duration("saleBudget", saleBudget),
				)
			}
			srv := server.New(srvCfg, router, zapLogger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				zapLogger.Info("received shutdown signal")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				zapLogger.Error("server shutdown failed", zap.Error(err))
				return err
			}

			zapLogger.Info("server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending schema migrations before serving")

	return cmd
}
