// Package config reads the server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/pkg/utils"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	ApplySchema bool
}

// DSN returns a lib/pq key=value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type BrokerConfig struct {
	URL      string // empty selects the log-only publisher
	Exchange string
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

type LogConfig struct {
	Level  string
	Format string
}

// Config is the fully parsed process configuration.
type Config struct {
	Env                string
	Port               string
	Database           DatabaseConfig
	JWT                JWTConfig
	CORSAllowedOrigins []string
	Broker             BrokerConfig
	Outbox             OutboxConfig
	Log                LogConfig
}

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Load reads .env (when present) and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		Env:  utils.Getenv("APP_ENV", EnvDevelopment),
		Port: utils.Getenv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:        utils.Getenv("DB_HOST", "localhost"),
			Port:        utils.Getenv("DB_PORT", "5432"),
			User:        utils.Getenv("DB_USER", "resto_pos"),
			Password:    utils.Getenv("DB_PASSWORD", "resto_pos"),
			Name:        utils.Getenv("DB_NAME", "resto_pos"),
			SSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
			ApplySchema: utils.GetenvBool("DB_APPLY_SCHEMA", true),
		},
		JWT: JWTConfig{
			Secret: utils.Getenv("JWT_SECRET", ""),
			TTL:    utils.GetenvDuration("JWT_TTL", utils.DefaultAccessTokenTTL),
		},
		CORSAllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		Broker: BrokerConfig{
			URL:      utils.Getenv("AMQP_URL", ""),
			Exchange: utils.Getenv("AMQP_EXCHANGE", "pos.broadcast"),
		},
		Outbox: OutboxConfig{
			PollInterval: utils.GetenvDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:    utils.GetenvInt("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:  utils.GetenvInt("OUTBOX_MAX_ATTEMPTS", 5),
		},
		Log: LogConfig{
			Level:  utils.Getenv("LOG_LEVEL", "info"),
			Format: utils.Getenv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			c.JWT.Secret = "development-only-jwt-secret"
		}
	}
	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.Outbox.MaxAttempts <= 0 {
		errs = append(errs, errors.New("OUTBOX_MAX_ATTEMPTS must be positive"))
	}
	if c.Broker.URL != "" && c.Broker.Exchange == "" {
		errs = append(errs, errors.New("AMQP_EXCHANGE is required when AMQP_URL is set"))
	}
	return errors.Join(errs...)
}
