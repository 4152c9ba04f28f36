package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"epistack/internal"
	"epistack/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	LogLevel string
	Table    TableConfig
	Data     DataConfig
	Database DatabaseConfig
	Batch    BatchConfig
}

// TableConfig holds defaults for tabulation options
type TableConfig struct {
	Decimal          int
	AssumptionPValue float64
	Percent          string
	Format           string
}

// DataConfig holds dataset intake settings
type DataConfig struct {
	MissingTokens []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// BatchConfig holds batch-mode settings
type BatchConfig struct {
	Concurrency int
}

// DefaultMissingTokens are the cell values read as missing
var DefaultMissingTokens = []string{"", "NA", "NaN", "null", "."}

var (
	validPercents = map[string]bool{"col": true, "column": true, "row": true, "none": true}
	validFormats  = map[string]bool{"text": true, "markdown": true, "html": true, "json": true}
)

// LoadDotEnv reads a .env file into the process environment when present
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to load .env")
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
		Table: TableConfig{
			Decimal:          getEnvIntOrDefault("TABLESTACK_DECIMAL", 1),
			AssumptionPValue: getEnvFloatOrDefault("TABLESTACK_ASSUMPTION_P", 0.01),
			Percent:          getEnvOrDefault("TABLESTACK_PERCENT", "col"),
			Format:           getEnvOrDefault("TABLESTACK_FORMAT", "text"),
		},
		Data: DataConfig{
			MissingTokens: getEnvListOrDefault("TABLESTACK_MISSING", DefaultMissingTokens),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Batch: BatchConfig{
			Concurrency: getEnvIntOrDefault("TABLESTACK_BATCH_CONCURRENCY", 4),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Logger builds a logger at the configured level
func (c *Config) Logger() *internal.Logger {
	level, _ := internal.ParseLogLevel(c.LogLevel)
	return internal.NewLogger(level)
}

func validateConfig(config *Config) error {
	if _, ok := internal.ParseLogLevel(config.LogLevel); !ok {
		return errors.ConfigInvalid(fmt.Sprintf("unknown LOG_LEVEL %q", config.LogLevel))
	}
	if config.Table.Decimal < 0 || config.Table.Decimal > 10 {
		return errors.ConfigInvalid(fmt.Sprintf("TABLESTACK_DECIMAL must be between 0 and 10, got %d", config.Table.Decimal))
	}
	if p := config.Table.AssumptionPValue; p <= 0 || p >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("TABLESTACK_ASSUMPTION_P must be in (0, 1), got %g", p))
	}
	if !validPercents[config.Table.Percent] {
		return errors.ConfigInvalid(fmt.Sprintf("TABLESTACK_PERCENT must be col, row or none, got %q", config.Table.Percent))
	}
	if !validFormats[config.Table.Format] {
		return errors.ConfigInvalid(fmt.Sprintf("unknown TABLESTACK_FORMAT %q", config.Table.Format))
	}
	if config.Batch.Concurrency < 1 {
		return errors.ConfigInvalid("TABLESTACK_BATCH_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value; the token "<empty>"
// stands for the empty cell
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return append([]string(nil), defaultValue...)
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "<empty>" {
			p = ""
		}
		out = append(out, p)
	}
	return out
}
