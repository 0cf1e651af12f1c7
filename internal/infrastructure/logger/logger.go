package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stockpos/internal/config"
)

// New builds the process logger. An unknown level falls back to info.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	return build(cfg).Build()
}

func build(cfg config.LogConfig) zap.Config {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return zc
}
