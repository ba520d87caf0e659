package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Upstream provider
	Tushare TushareConfig

	// Cache
	Cache CacheConfig

	// Screening rules
	Screen ScreenConfig

	// Optional run-history database
	Database DatabaseConfig

	// Scheduler
	ScheduleSpec string // cron spec for the daily screening job
	ExportDir    string // where scheduled runs drop CSV files

	// Logging
	LogLevel  string
	LogFormat string
}

// TushareConfig holds Tushare pro API configuration.
type TushareConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// CacheConfig holds the on-disk bar cache configuration.
type CacheConfig struct {
	Path string
	TTL  time.Duration
}

// ScreenConfig holds the screening rule parameters.
type ScreenConfig struct {
	LimitUpPct      float64  // daily pct change treated as limit-up
	StreakDays      int      // required consecutive limit-up days
	TrendDays       int      // trend window, calendar days
	TrendUpPct      float64  // minimum window return, percent
	TrendVolPct     float64  // maximum average 20-day volatility, percent
	MinPrice        float64  // minimum last price, CNY
	ExcludeBoards   []string // board names dropped from the universe
	BatchSize       int      // candidates per screening batch
	BatchDelay      time.Duration
	QuoteBatchSize  int // codes per daily-quote request
	QuoteBatchDelay time.Duration
}

// DatabaseConfig holds PostgreSQL configuration for run history.
// Persistence is optional: an empty URL disables it.
type DatabaseConfig struct {
	URL string

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether run-history persistence is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8086"),
		Env:  getEnv("ENV", "development"),

		Tushare: TushareConfig{
			Token:   getEnv("TUSHARE_TOKEN", ""),
			BaseURL: getEnv("TUSHARE_BASE_URL", "http://api.tushare.pro"),
			Timeout: getEnvAsDuration("TUSHARE_TIMEOUT", "30s"),
		},

		Cache: CacheConfig{
			Path: getEnv("CACHE_PATH", "screener_cache.db"),
			TTL:  getEnvAsDuration("CACHE_TTL", "24h"),
		},

		Screen: ScreenConfig{
			LimitUpPct:      getEnvAsFloat("LIMIT_UP_PCT", 9.8),
			StreakDays:      getEnvAsInt("STREAK_DAYS", 2),
			TrendDays:       getEnvAsInt("TREND_DAYS", 60),
			TrendUpPct:      getEnvAsFloat("TREND_UP_PCT", 30),
			TrendVolPct:     getEnvAsFloat("TREND_VOLATILITY_PCT", 25),
			MinPrice:        getEnvAsFloat("MIN_STOCK_PRICE", 3.0),
			ExcludeBoards:   getEnvAsSlice("EXCLUDE_BOARDS", []string{"创业板", "科创板"}),
			BatchSize:       getEnvAsInt("SCREEN_BATCH_SIZE", 10),
			BatchDelay:      getEnvAsDuration("SCREEN_BATCH_DELAY", "1s"),
			QuoteBatchSize:  getEnvAsInt("QUOTE_BATCH_SIZE", 500),
			QuoteBatchDelay: getEnvAsDuration("QUOTE_BATCH_DELAY", "500ms"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		ScheduleSpec: getEnv("SCREEN_SCHEDULE", "0 30 15 * * MON-FRI"),
		ExportDir:    getEnv("EXPORT_DIR", "exports"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Tushare.Token == "" {
		return fmt.Errorf("TUSHARE_TOKEN is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screen.BatchSize <= 0 || c.Screen.QuoteBatchSize <= 0 {
		return fmt.Errorf("batch sizes must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
