package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	minSessionSecretLen = 16
)

type Config struct {
	// HTTP Server
	Port               string        `yaml:"port" env:"PORT" env-default:"8081"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute" env:"LOGIN_RATE_PER_MINUTE" env-default:"20"`
	LogLevel           string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Storage
	DataBackend     string `yaml:"data_backend" env:"DATA_BACKEND" env-default:"json"`
	UsersFile       string `yaml:"users_file" env:"USERS_FILE" env-default:"users.json"`
	ExpensesFile    string `yaml:"expenses_file" env:"EXPENSES_FILE" env-default:"expenses.json"`
	SQLiteDBPath    string `yaml:"sqlite_db_path" env:"SQLITE_DB_PATH" env-default:"./data/expenses.db"`
	PasswordStorage string `yaml:"password_storage" env:"PASSWORD_STORAGE" env-default:"bcrypt"`

	// Session
	SessionSecret       string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL          time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"12h"`
	SessionCookie       string        `yaml:"session_cookie" env:"SESSION_COOKIE" env-default:"expense_session"`
	SessionSecureCookie bool          `yaml:"session_secure_cookie" env:"SESSION_SECURE_COOKIE" env-default:"false"`

	// AMQP, optional
	AMQPURL      string `yaml:"amqp_url" env:"AMQP_URL"`
	AMQPExchange string `yaml:"amqp_exchange" env:"AMQP_EXCHANGE" env-default:"expensetracker"`
	AMQPQueue    string `yaml:"amqp_queue" env:"AMQP_QUEUE" env-default:"expense_recorded"`

	// Google Sheets mirror, used by the sync worker
	GoogleSpreadsheetID      string `yaml:"google_spreadsheet_id" env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `yaml:"google_sheet_name" env:"GOOGLE_SHEET_NAME" env-default:"Expenses"`
	GoogleServiceAccountFile string `yaml:"google_service_account_file" env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `yaml:"google_service_account_json" env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
}

// Load reads the configuration from the environment. When CONFIG_PATH names
// a YAML file it is read first and environment variables override it.
func Load() (*Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &cfg, nil
}

// AMQPEnabled reports whether expense events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendJSON, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendJSON:
		if c.UsersFile == "" {
			errors = append(errors, "users file cannot be empty when using json backend")
		}
		if c.ExpensesFile == "" {
			errors = append(errors, "expenses file cannot be empty when using json backend")
		}
		if c.UsersFile != "" && c.UsersFile == c.ExpensesFile {
			errors = append(errors, "users file and expenses file must differ")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	validStorage := []string{"bcrypt", "plaintext"}
	if !slices.Contains(validStorage, c.PasswordStorage) {
		errors = append(errors, fmt.Sprintf("invalid password storage '%s': must be one of %v", c.PasswordStorage, validStorage))
	}

	if c.SessionSecret != "" && len(c.SessionSecret) < minSessionSecretLen {
		errors = append(errors, fmt.Sprintf("session secret too short: must be at least %d characters", minSessionSecretLen))
	}
	if c.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be positive", c.SessionTTL))
	}
	if c.SessionCookie == "" {
		errors = append(errors, "session cookie name cannot be empty")
	}

	if c.LoginRatePerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid login rate %d: must be at least 1 per minute", c.LoginRatePerMinute))
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
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

// ValidateWorker adds the checks the sync worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the sync worker")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided with GOOGLE_SPREADSHEET_ID")
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
