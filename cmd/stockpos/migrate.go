package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stockpos/internal/config"
	"stockpos/internal/infrastructure/mysql"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return migrateWith(root, true)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return migrateWith(root, false)
		},
	})

	return cmd
}

func migrateWith(root *rootOptions, up bool) error {
	cfg, zapLogger, err := root.setup()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	return runMigration(cfg.Database, zapLogger, up)
}

func runMigration(cfg config.DatabaseConfig, logger *zap.Logger, up bool) error {
	m, err := mysql.NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("closing migrator", zap.Error(err))
		}
	}()

	if up {
		return m.Up()
	}
	return m.Down()
}
