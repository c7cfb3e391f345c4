package config

import (
	"fmt"
	"time"

	"sportsviz/etl/internal/ranking"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"sai_badminton_viz"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"sai_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching TTL (in seconds)
	CacheTTLHistory int `envconfig:"CACHE_TTL_HISTORY" default:"21600"` // 6 hours

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Focus sets (athletes, teams, years) live in a YAML file
	FocusFile string `envconfig:"FOCUS_FILE" default:"config/focus.yaml"`

	// Output
	OutputDir  string `envconfig:"OUTPUT_DIR" default:"output"`
	WriteCSV   bool   `envconfig:"WRITE_CSV" default:"true"`
	WriteTable bool   `envconfig:"WRITE_TABLES" default:"true"`

	// Resolver
	ResolveMode     ranking.Mode            `envconfig:"RESOLVER_MODE" default:"on_or_before"`
	DuplicatePolicy ranking.DuplicatePolicy `envconfig:"RESOLVER_DUPLICATE_POLICY" default:"keep_last"`
	ResolveWorkers  int                     `envconfig:"RESOLVER_WORKERS" default:"4"`

	// Notable wins: "strict" only counts a win over a strictly better-ranked
	// opponent, "inclusive" also counts an equally-ranked one.
	NotableTiePolicy string `envconfig:"NOTABLE_TIE_POLICY" default:"strict"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialRunEnabled  bool   `envconfig:"INITIAL_RUN_ENABLED" default:"true"`
	NightlyRefreshCron string `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.ResolveWorkers < 1 {
		return fmt.Errorf("RESOLVER_WORKERS must be at least 1, got %d", c.ResolveWorkers)
	}

	switch c.NotableTiePolicy {
	case "strict", "inclusive":
	default:
		return fmt.Errorf("NOTABLE_TIE_POLICY must be strict or inclusive, got %q", c.NotableTiePolicy)
	}

	if !c.WriteCSV && !c.WriteTable {
		return fmt.Errorf("at least one of WRITE_CSV and WRITE_TABLES must be enabled")
	}

	if c.WriteCSV && c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required when WRITE_CSV is enabled")
	}

	return nil
}

// HistoryTTL returns the cache TTL for per-entity ranking history
func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.CacheTTLHistory) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
