package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"stockpos/internal/config"
)

const pingTimeout = 5 * time.Second

// driverConfig builds the driver settings for cfg. ClientFoundRows makes
// UPDATE report matched rows, so an update that leaves a row as it was is not
// mistaken for a missing row.
func driverConfig(cfg config.DatabaseConfig) *gomysql.Config {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	return mc
}

// DSN returns the connection string the application pool uses.
func DSN(cfg config.DatabaseConfig) string {
	return driverConfig(cfg).FormatDSN()
}

// NewConnection opens the pool and waits until the server answers, trying up
// to cfg.ConnectRetries extra times with cfg.ConnectBackoff between attempts.
func NewConnection(cfg config.DatabaseConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := pingWithRetry(db, cfg.ConnectRetries, cfg.ConnectBackoff, logger); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func pingWithRetry(db pinger, retries int, backoff time.Duration, logger *zap.Logger) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			logger.Warn("database not ready, retrying",
				zap.Int("attempt", attempt),
				zap.Int("maxRetries", retries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
	}

	return fmt.Errorf("pinging database after %d attempts: %w", retries+1, err)
}
