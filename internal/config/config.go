package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Sale     SaleConfig     `yaml:"sale"`
}

// ServerConfig sets the listener and its timeouts. A zero timeout means no
// limit. WriteTimeout is raised at startup when it is too short for a sale
// to finish with all of its retries.
type ServerConfig struct {
	Port         int             `yaml:"port"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	IdleTimeout  time.Duration   `yaml:"idleTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig bounds requests per second across the API. RPS <= 0
// disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnectRetries  int           `yaml:"connectRetries"`
	ConnectBackoff  time.Duration `yaml:"connectBackoff"`
}

// LogConfig selects the zap level and encoder. Format is "json" or "console".
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SaleConfig struct {
	TxTimeout        time.Duration `yaml:"txTimeout"`
	MaxRetryAttempts int           `yaml:"maxRetryAttempts"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			RateLimit: RateLimitConfig{
				RPS:   50,
				Burst: 100,
			},
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            3306,
			User:            "stockpos",
			Password:        "secret",
			Name:            "stockpos",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectRetries:  5,
			ConnectBackoff:  2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Sale: SaleConfig{
			TxTimeout:        5 * time.Second,
			MaxRetryAttempts: 3,
		},
	}
}

// Load builds the configuration from defaults and the environment. A .env
// file in the working directory is read first when present.
func Load() (*Config, error) {
	return FromEnv(Default())
}

// FromEnv overrides base with any of the recognised environment variables
// that are set. base is not modified.
func FromEnv(base *Config) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", base.Server.Port)
	v.SetDefault("SERVER_READ_TIMEOUT", base.Server.ReadTimeout.String())
	v.SetDefault("SERVER_WRITE_TIMEOUT", base.Server.WriteTimeout.String())
	v.SetDefault("SERVER_IDLE_TIMEOUT", base.Server.IdleTimeout.String())
	v.SetDefault("SERVER_RATE_LIMIT_RPS", base.Server.RateLimit.RPS)
	v.SetDefault("SERVER_RATE_LIMIT_BURST", base.Server.RateLimit.Burst)
	v.SetDefault("DB_HOST", base.Database.Host)
	v.SetDefault("DB_PORT", base.Database.Port)
	v.SetDefault("DB_USER", base.Database.User)
	v.SetDefault("DB_PASSWORD", base.Database.Password)
	v.SetDefault("DB_NAME", base.Database.Name)
	v.SetDefault("DB_MAX_OPEN_CONNS", base.Database.MaxOpenConns)
	v.SetDefault("DB_MAX_IDLE_CONNS", base.Database.MaxIdleConns)
	v.SetDefault("DB_CONN_MAX_LIFETIME", base.Database.ConnMaxLifetime.String())
	v.SetDefault("DB_CONNECT_RETRIES", base.Database.ConnectRetries)
	v.SetDefault("DB_CONNECT_BACKOFF", base.Database.ConnectBackoff.String())
	v.SetDefault("LOG_LEVEL", base.Log.Level)
	v.SetDefault("LOG_FORMAT", base.Log.Format)
	v.SetDefault("SALE_TX_TIMEOUT", base.Sale.TxTimeout.String())
	v.SetDefault("SALE_MAX_RETRY_ATTEMPTS", base.Sale.MaxRetryAttempts)

	readTimeout, err := time.ParseDuration(v.GetString("SERVER_READ_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(v.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := time.ParseDuration(v.GetString("SERVER_IDLE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_IDLE_TIMEOUT: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	connectBackoff, err := time.ParseDuration(v.GetString("DB_CONNECT_BACKOFF"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONNECT_BACKOFF: %w", err)
	}

	txTimeout, err := time.ParseDuration(v.GetString("SALE_TX_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SALE_TX_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("SERVER_PORT"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
			RateLimit: RateLimitConfig{
				RPS:   v.GetFloat64("SERVER_RATE_LIMIT_RPS"),
				Burst: v.GetInt("SERVER_RATE_LIMIT_BURST"),
			},
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			ConnectRetries:  v.GetInt("DB_CONNECT_RETRIES"),
			ConnectBackoff:  connectBackoff,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Sale: SaleConfig{
			TxTimeout:        txTimeout,
			MaxRetryAttempts: v.GetInt("SALE_MAX_RETRY_ATTEMPTS"),
		},
	}

	return cfg, nil
}
