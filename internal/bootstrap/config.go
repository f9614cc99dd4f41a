package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/bnastase-alt/rider-onboarding/config"
)

// InitLogger initializes the structured JSON logger at level and makes it the default.
func InitLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables, applies guardrails and validates it.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LogStartup reports the effective configuration without secrets.
func LogStartup(logger *slog.Logger, cfg *config.AppConfig) {
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	logger.Info("starting onboarding service",
		"env", cfg.Env,
		"dev", cfg.IsDev,
		"auth_mode", cfg.Auth.Mode,
		"role_source", cfg.Auth.RoleSource,
		"captcha_bypassed", cfg.Captcha.Bypassed(),
		"addr", cfg.HTTP.Addr,
	)
}
