package config

import (
	stderrors "errors"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"randalloc/internal/errors"
)

// Default locations used when the environment leaves them unset
const (
	DefaultDatabaseURL  = "./data/randalloc.db"
	DefaultReportFormat = "xlsx"
	DefaultHistoryLimit = 20
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `validate:"required"`
	Report   ReportConfig   `validate:"required"`
	Logging  LoggingConfig
}

// DatabaseConfig holds the group list and run history store settings
type DatabaseConfig struct {
	// URL is a sqlite file path or a postgres:// connection string
	URL    string `validate:"required"`
	Driver string `validate:"required,oneof=sqlite postgres"`
}

// ReportConfig holds report output settings
type ReportConfig struct {
	// OutputDir may be empty; randomize then requires --out
	OutputDir    string
	Format       string `validate:"required,oneof=xlsx csv"`
	HistoryLimit int    `validate:"gte=1"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbURL := getEnvOrDefault("RANDALLOC_DATABASE_URL", DefaultDatabaseURL)

	config := &Config{
		Database: DatabaseConfig{
			URL:    dbURL,
			Driver: DriverFor(dbURL),
		},
		Report: ReportConfig{
			OutputDir:    strings.TrimSpace(os.Getenv("RANDALLOC_OUTPUT_DIR")),
			Format:       strings.ToLower(getEnvOrDefault("RANDALLOC_REPORT_FORMAT", DefaultReportFormat)),
			HistoryLimit: getEnvIntOrDefault("RANDALLOC_HISTORY_LIMIT", DefaultHistoryLimit),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// database/sql driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DriverFor picks the database/sql driver name from a database URL
func DriverFor(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.ConfigInvalid(fe.Namespace() + " failed '" + fe.Tag() + "' validation (value: " + toString(fe.Value()) + ")")
		}
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case int:
		return strconv.Itoa(x)
	default:
		return "?"
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
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
