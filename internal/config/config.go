package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MigrationsPath  string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret string
	// APIKey guards the local token-mint endpoint. When empty the endpoint
	// is disabled and only externally issued tokens are accepted.
	APIKey   string
	TokenTTL time.Duration
}

type Config struct {
	App struct {
		Port string
		Env  string
	}
	Postgres PostgresConfig
	Auth     AuthConfig
}

// Load reads configuration from the environment, optionally preloading a
// .env file. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = getenv("APP_PORT", "8080")
	cfg.App.Env = getenv("APP_ENV", "development")

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	cfg.Postgres.Port = getenv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	cfg.Postgres.SSLMode = getenv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getenv("DB_MIGRATIONS_PATH", "migrations")
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = time.Hour

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.Auth.APIKey = os.Getenv("AUTH_API_KEY")
	cfg.Auth.TokenTTL = 72 * time.Hour

	for name, value := range map[string]string{
		"DB_HOST":     cfg.Postgres.Host,
		"DB_USER":     cfg.Postgres.User,
		"DB_PASSWORD": cfg.Postgres.Password,
		"DB_NAME":     cfg.Postgres.DBName,
		"JWT_SECRET":  cfg.Auth.JWTSecret,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
