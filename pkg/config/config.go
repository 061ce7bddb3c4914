package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Parse    ParseConfig
	Recon    ReconConfig
	Vendor   VendorConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ParseConfig controls the statement parsing pipeline.
type ParseConfig struct {
	HeaderScanLines int // how deep to scan for format probes and the statement period
	DefaultYear     int // substituted when no statement period is found; 0 = current year
}

// ReconConfig controls reconciliation behavior.
type ReconConfig struct {
	PersistRuns bool // store runs/findings in Postgres when a database is configured
}

// VendorConfig controls vendor name matching.
type VendorConfig struct {
	AcceptThreshold int // minimum confidence (0-100) to substitute a matched name
	SheetColumn     int // 0-based column of the vendor list spreadsheet
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type LoggingConfig struct {
	Level string // debug, info, warn, error
}

// Load reads configuration from environment variables, first filling the
// environment from a .env file when one is present.
func Load() (*Config, error) {
	// Missing .env is fine; real environment variables always win.
	_ = godotenv.Load()

	cfg := &Config{
		Parse: ParseConfig{
			HeaderScanLines: getEnvAsInt("PARSE_HEADER_SCAN_LINES", 60),
			DefaultYear:     getEnvAsInt("PARSE_DEFAULT_YEAR", 0),
		},
		Recon: ReconConfig{
			PersistRuns: getEnvAsBool("RECON_PERSIST_RUNS", false),
		},
		Vendor: VendorConfig{
			AcceptThreshold: getEnvAsInt("VENDOR_ACCEPT_THRESHOLD", 90),
			SheetColumn:     getEnvAsInt("VENDOR_SHEET_COLUMN", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "statement-recon"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Vendor.AcceptThreshold < 0 || cfg.Vendor.AcceptThreshold > 100 {
		return nil, fmt.Errorf("VENDOR_ACCEPT_THRESHOLD must be 0-100, got %d", cfg.Vendor.AcceptThreshold)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
