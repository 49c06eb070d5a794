package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
)

type Config struct {
	// Storage
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// Insights
	InsightWindowDays     int
	SmallExpenseThreshold int64
	SmallExpenseLimit     int
	LowBalanceRatio       float64

	// Logging
	LogLevel string

	// Google Sheets publish sink
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleMonthlySheetName   string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

var validBackends = []string{"csv", "sqlite"}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "csv"),
		DataDir:      getEnv("DATA_DIR", "data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "data/moneyboard.db"),

		InsightWindowDays:     getEnvInt("INSIGHT_WINDOW_DAYS", 30),
		SmallExpenseThreshold: int64(getEnvInt("SMALL_EXPENSE_THRESHOLD", 50000)),
		SmallExpenseLimit:     getEnvInt("SMALL_EXPENSE_LIMIT", 5),
		LowBalanceRatio:       getEnvFloat("LOW_BALANCE_RATIO", 0.10),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "transactions"),
		GoogleMonthlySheetName:   getEnv("GOOGLE_MONTHLY_SHEET_NAME", "monthly"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
	}
}

// Validate validates the configuration and returns an error listing every
// invalid field.
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "csv" && strings.TrimSpace(c.DataDir) == "" {
		errors = append(errors, "data directory cannot be empty when using csv backend")
	}
	if c.DataBackend == "sqlite" && strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.InsightWindowDays < 1 || c.InsightWindowDays > 366 {
		errors = append(errors, fmt.Sprintf("invalid insight window %d: must be between 1 and 366 days", c.InsightWindowDays))
	}
	if c.SmallExpenseThreshold < 1 {
		errors = append(errors, fmt.Sprintf("invalid small expense threshold %d: must be at least 1", c.SmallExpenseThreshold))
	}
	if c.SmallExpenseLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid small expense limit %d: must not be negative", c.SmallExpenseLimit))
	}
	if c.LowBalanceRatio <= 0 || c.LowBalanceRatio > 1 {
		errors = append(errors, fmt.Sprintf("invalid low balance ratio %v: must be greater than 0 and at most 1", c.LowBalanceRatio))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// PublishEnabled reports whether a Google spreadsheet is configured.
func (c *Config) PublishEnabled() bool {
	return strings.TrimSpace(c.GoogleSpreadsheetID) != ""
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
