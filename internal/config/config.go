package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the runtime settings shared by the server and dbtool.
type Config struct {
	Port     string
	LogLevel string

	// DBDriver selects the listing store: "postgres" or "sqlite".
	DBDriver    string
	DatabaseURL string
	DBPath      string
	SeedPath    string

	// Optional collaborators; empty disables them.
	RedisAddr string
	CacheTTL  time.Duration
	NATSURL   string

	MaxResults            int
	OwnerMatchConcurrency int
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_PATH", "data/kolimeet.db")
	v.SetDefault("SEED_PATH", "data/seeds/listings.json")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CACHE_TTL", "30s")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("MATCH_MAX_RESULTS", 5)
	v.SetDefault("OWNER_MATCH_CONCURRENCY", 4)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file found, using environment variables")
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                  strings.TrimSpace(v.GetString("PORT")),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DBDriver:              strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseURL:           strings.TrimSpace(v.GetString("DATABASE_URL")),
		DBPath:                v.GetString("DB_PATH"),
		SeedPath:              v.GetString("SEED_PATH"),
		RedisAddr:             strings.TrimSpace(v.GetString("REDIS_ADDR")),
		CacheTTL:              v.GetDuration("CACHE_TTL"),
		NATSURL:               strings.TrimSpace(v.GetString("NATS_URL")),
		MaxResults:            v.GetInt("MATCH_MAX_RESULTS"),
		OwnerMatchConcurrency: v.GetInt("OWNER_MATCH_CONCURRENCY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the binaries cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("config: DB_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.MaxResults < 1 || c.MaxResults > 20 {
		return fmt.Errorf("config: MATCH_MAX_RESULTS must be between 1 and 20, got %d", c.MaxResults)
	}
	if c.OwnerMatchConcurrency < 1 {
		return fmt.Errorf("config: OWNER_MATCH_CONCURRENCY must be positive, got %d", c.OwnerMatchConcurrency)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: CACHE_TTL must not be negative")
	}
	return nil
}
