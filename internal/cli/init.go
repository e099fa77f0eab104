// Package cli provides common CLI initialization utilities shared by
// cmd/expensetracker and cmd/expense-sync-worker.
package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
)

// SetupLogger builds the bootstrap logger for component at the LOG_LEVEL
// found in the environment and sets it as the slog default. It is used
// until the configuration is loaded.
func SetupLogger(component string) *log.Logger {
	return setupLogger(component, os.Getenv("LOG_LEVEL"))
}

// ConfigureLogger replaces the bootstrap logger with one at cfg.LogLevel,
// which also reflects log_level from the YAML file.
func ConfigureLogger(component string, cfg *config.Config) *log.Logger {
	return setupLogger(component, cfg.LogLevel)
}

func setupLogger(component, level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", sl.Err(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", sl.Err(err))
		os.Exit(1)
	}
	return cfg
}

// EnsureSessionSecret fills an empty SESSION_SECRET with a random value.
// Sessions signed with it do not survive a restart.
func EnsureSessionSecret(logger *log.Logger, cfg *config.Config) {
	if cfg.SessionSecret != "" {
		return
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.Error("Failed to generate session secret", sl.Err(err))
		os.Exit(1)
	}
	cfg.SessionSecret = hex.EncodeToString(buf)
	logger.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
