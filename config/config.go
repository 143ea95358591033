package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to whatever needs it.
type Config struct {
	Env                string
	Port               string
	GinMode            string
	DBDriver           string
	DatabaseURL        string
	SecretKey          string
	Algorithm          string
	AccessTokenTTL     time.Duration
	CORSOrigins        []string
	RedisURL           string
	LogLevel           string
	AdminUsername      string
	AdminPassword      string
	LoginRatePerMinute int
}

const devSecret = "dev-only-secret-change-me"

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	// .env is optional, a missing file is not an error
	_ = godotenv.Load(files...)

	cfg := &Config{
		Env:           getEnv("APP_ENV", "production"),
		Port:          getEnv("PORT", "12447"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL:   getEnv("DATABASE_URL", "restaurant.db"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		Algorithm:     getEnv("ALGORITHM", "HS256"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	minutes, err := getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 43200)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = time.Duration(minutes) * time.Minute

	if cfg.LoginRatePerMinute, err = getInt("LOGIN_RATE_PER_MINUTE", 10); err != nil {
		return nil, err
	}

	if cfg.SecretKey == "" && cfg.IsDevelopment() {
		cfg.SecretKey = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY environment variable is not set")
	}
	if c.Algorithm != "HS256" {
		return fmt.Errorf("unsupported token algorithm %q", c.Algorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.LoginRatePerMinute <= 0 {
		return errors.New("LOGIN_RATE_PER_MINUTE must be positive")
	}
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("CORS origin %q must start with http:// or https://", o)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
