package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	minSecretLength = 32
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StoreDriver selects the credential and task store.
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`

	// HashWorkers bounds concurrent bcrypt work; 0 means GOMAXPROCS.
	HashWorkers int `env:"HASH_WORKERS, default=0"`

	JWT      JWTConfig
	Mongo    MongoConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Throttle ThrottleConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	TTL    time.Duration `env:"JWT_TTL,    default=30m"`
	Issuer string        `env:"JWT_ISSUER, default=taskify-api"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskify"`
}

type SQLiteConfig struct {
	DSN string `env:"SQLITE_DSN, default=file:taskify.db"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ThrottleConfig struct {
	Enabled     bool          `env:"LOGIN_THROTTLE_ENABLED,      default=true"`
	MaxAttempts int           `env:"LOGIN_THROTTLE_MAX_ATTEMPTS, default=10"`
	Window      time.Duration `env:"LOGIN_THROTTLE_WINDOW,       default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < minSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	if c.JWT.TTL < time.Second {
		return fmt.Errorf("config: JWT_TTL must be at least 1s, got %s", c.JWT.TTL)
	}
	switch c.StoreDriver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.HashWorkers < 0 {
		return fmt.Errorf("config: HASH_WORKERS must not be negative")
	}
	if c.Throttle.Enabled && (c.Throttle.MaxAttempts <= 0 || c.Throttle.Window <= 0) {
		return fmt.Errorf("config: login throttle needs positive max attempts and window")
	}
	return nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
