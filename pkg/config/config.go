package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-level configuration for the scanner
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
// 전략 파라미터(윈도우, 가중치, 레짐 임계값)는 internal/strategyconfig YAML 에서 관리
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: empty URL disables persistence)
	Database DatabaseConfig

	// Redis (optional: series cache)
	Redis RedisConfig

	// Market data provider
	MarketData MarketDataConfig

	// Scanner
	StrategyPath    string
	ReportLogPath   string
	ScanSchedule    string
	CollectSchedule string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	Enabled   bool
	SeriesTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// MarketDataConfig holds the daily bar provider settings
type MarketDataConfig struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RPS        float64
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Enabled:   getEnvAsBool("REDIS_ENABLED", false),
			SeriesTTL: getEnvAsDuration("REDIS_SERIES_TTL", "6h"),
		},

		MarketData: MarketDataConfig{
			BaseURL:    getEnv("MARKET_DATA_BASE_URL", "https://query1.finance.yahoo.com"),
			UserAgent:  getEnv("MARKET_DATA_USER_AGENT", "Mozilla/5.0 (compatible; bullscan/1.0)"),
			Timeout:    getEnvAsDuration("MARKET_DATA_TIMEOUT", "15s"),
			MaxRetries: getEnvAsInt("MARKET_DATA_MAX_RETRIES", 3),
			RPS:        getEnvAsFloat("MARKET_DATA_RPS", 2),
		},

		StrategyPath:    getEnv("STRATEGY_CONFIG", "config/strategy/bullish_scanner.yaml"),
		ReportLogPath:   getEnv("REPORT_LOG", "adaptive_bullish_log.csv"),
		ScanSchedule:    getEnv("SCAN_SCHEDULE", "0 30 16 * * 1-5"),
		CollectSchedule: getEnv("COLLECT_SCHEDULE", "0 10 16 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.MarketData.RPS <= 0 {
		return fmt.Errorf("MARKET_DATA_RPS must be positive")
	}

	if c.MarketData.MaxRetries < 0 {
		return fmt.Errorf("MARKET_DATA_MAX_RETRIES must not be negative")
	}

	if c.StrategyPath == "" {
		return fmt.Errorf("STRATEGY_CONFIG is required")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
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
