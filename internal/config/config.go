package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8080"`

	StoreBackend     string        `env:"STORE_BACKEND" envDefault:"sqlite"`
	DBPath           string        `env:"DB_PATH" envDefault:"./dev.db"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	DBMaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"1m"`

	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"shutterquote:"`

	// AutoMigrate forces migrations on startup outside development.
	AutoMigrate      bool   `env:"AUTO_MIGRATE"`
	SeedDefaultCells bool   `env:"SEED_DEFAULT_CELLS"`
	RebaseScope      string `env:"REBASE_SCOPE" envDefault:"persisted"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads an optional .env file, then environment variables, and returns
// a validated Config.
func Load() (Config, error) {
	// Local development convenience; production injects the environment.
	if _, err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be sqlite, postgres or redis, got %q", c.StoreBackend)
	}

	switch c.RebaseScope {
	case "persisted", "full":
	default:
		return fmt.Errorf("REBASE_SCOPE must be persisted or full, got %q", c.RebaseScope)
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "development" || c.AppEnv == "dev"
}

// ShouldMigrate reports whether SQL migrations run on startup.
func (c Config) ShouldMigrate() bool {
	return c.IsDev() || c.AutoMigrate
}

// DSN returns the data source name for the SQL backends.
func (c Config) DSN() string {
	if c.StoreBackend == BackendPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}
