package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Environment names the deployment tier.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// UnmarshalText implements encoding.TextUnmarshaler for Environment.
func (e *Environment) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "development", "dev":
		*e = EnvDevelopment
	case "production", "prod":
		*e = EnvProduction
	default:
		return fmt.Errorf("invalid APP_ENV: %q (valid options: development, production)", v)
	}
	return nil
}

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: identity provider, roles and sessions
//   - captcha.go: captcha relay and enforcement
//   - database.go: Postgres and Redis
//   - http.go: HTTP server configuration
//   - onboarding.go: interview and training slots
type AppConfig struct {
	Env Environment `env:"APP_ENV" envDefault:"development"`

	// IsDev controls development mode behavior (templates and static files read from disk).
	// Never honored in production.
	IsDev bool `env:"DEV" envDefault:"false"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	Auth       AuthConfig
	Captcha    CaptchaConfig `envPrefix:"CAPTCHA_"`
	HTTP       HTTPConfig
	Postgres   DBConfig    `envPrefix:"DB_"`
	Redis      RedisConfig `envPrefix:"REDIS_"`
	Onboarding OnboardingConfig `envPrefix:"ONBOARDING_"`

	Observability ObservabilityConfig

	// Warnings lists the overrides Sanitize applied. Logged once at startup.
	Warnings []string `env:"-"`
}

// IsProduction reports whether APP_ENV is production.
func (c *AppConfig) IsProduction() bool { return c.Env == EnvProduction }

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Observability.Sanitize()
	if c.Captcha.Sanitize(c.IsProduction()) {
		c.Warnings = append(c.Warnings, "captcha enforcement cannot be disabled in production; forcing it on")
	}
	if c.IsProduction() {
		c.IsDev = false
	}
}

// Validate reports configuration that must stop startup.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.IsProduction() && c.Auth.Mode == AuthModeMock {
		errs = append(errs, errors.New("AUTH_MODE=mock is not allowed in production"))
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Captcha.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Onboarding.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
