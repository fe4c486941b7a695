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

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB         DatabaseConfig
	Redis      RedisConfig
	Flash      FlashConfig
	MobileMart MobileMartConfig
	Sync       SyncConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// FlashConfig contains credentials for the Flash supplier API.
type FlashConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// MobileMartConfig contains credentials for the MobileMart supplier API.
type MobileMartConfig struct {
	BaseURL    string
	MerchantID string
	SecretKey  string
}

// SyncConfig contains the schedule and behavior parameters of the catalog
// sync engine.
type SyncConfig struct {
	DailySweepTime  string // "HH:MM" local wall-clock time
	Timezone        string
	RefreshInterval time.Duration
	AdapterTimeout  time.Duration
	EventChannel    string
	SupplierRanking []string // tie-break order, best first
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Flash
	cfg.Flash = FlashConfig{
		BaseURL:      getEnv("FLASH_BASE_URL", "https://api.flashswitch.flash-group.com"),
		ClientID:     getEnv("FLASH_CLIENT_ID", ""),
		ClientSecret: getEnv("FLASH_CLIENT_SECRET", ""),
	}

	// MobileMart
	cfg.MobileMart = MobileMartConfig{
		BaseURL:    getEnv("MOBILEMART_BASE_URL", "https://api.mobilemart.co.za"),
		MerchantID: getEnv("MOBILEMART_MERCHANT_ID", ""),
		SecretKey:  getEnv("MOBILEMART_SECRET_KEY", ""),
	}

	// Sync engine
	cfg.Sync = SyncConfig{
		DailySweepTime:  getEnv("SYNC_DAILY_SWEEP_TIME", "02:00"),
		Timezone:        getEnv("SYNC_TIMEZONE", "Africa/Johannesburg"),
		EventChannel:    getEnv("SYNC_EVENT_CHANNEL", "catalog:events"),
		SupplierRanking: splitCSV(getEnv("SYNC_SUPPLIER_RANKING", "flash,mobilemart")),
	}

	var err error
	if cfg.Sync.RefreshInterval, err = parseDurationEnv("SYNC_REFRESH_INTERVAL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_REFRESH_INTERVAL: %w", err)
	}
	if cfg.Sync.AdapterTimeout, err = parseDurationEnv("SYNC_ADAPTER_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_ADAPTER_TIMEOUT: %w", err)
	}

	if _, err := time.Parse("15:04", cfg.Sync.DailySweepTime); err != nil {
		return nil, fmt.Errorf("invalid SYNC_DAILY_SWEEP_TIME %q: expected HH:MM", cfg.Sync.DailySweepTime)
	}
	if _, err := time.LoadLocation(cfg.Sync.Timezone); err != nil {
		return nil, fmt.Errorf("invalid SYNC_TIMEZONE %q: %w", cfg.Sync.Timezone, err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
