package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stockpos/internal/commons"
	"stockpos/internal/config"
	"stockpos/internal/infrastructure/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "stockpos",
		Short:         "Point-of-sale backend: product catalog, stock and sales",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file; defaults and environment only when empty")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))

	return cmd
}

// loadConfig reads the config file when one is given. Environment variables
// win over both the file and the defaults.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Load()
	}
	return commons.LoadConfig(o.configPath)
}

func (o *rootOptions) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	return cfg, zapLogger, nil
}
