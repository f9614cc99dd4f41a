package config

import (
	"errors"
	"strings"
	"time"
)

// CaptchaConfig contains reCAPTCHA settings.
type CaptchaConfig struct {
	SiteKey   string `env:"SITE_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	VerifyURL string `env:"VERIFY_URL"`

	// Enabled turns the server-side relay on.
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// EnforceDisabled skips captcha on the auth forms entirely.
	EnforceDisabled bool `env:"ENFORCE_DISABLED" envDefault:"false"`

	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// Bypassed reports whether submissions skip captcha verification.
func (c *CaptchaConfig) Bypassed() bool {
	return !c.Enabled || c.EnforceDisabled
}

// Sanitize normalises values and, in production, forces enforcement on.
// It reports whether an override was applied.
func (c *CaptchaConfig) Sanitize(production bool) bool {
	c.SiteKey = strings.TrimSpace(c.SiteKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.VerifyURL = strings.TrimSpace(c.VerifyURL)
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if production && c.Bypassed() {
		c.Enabled = true
		c.EnforceDisabled = false
		return true
	}
	return false
}

// Validate requires keys whenever captcha is enforced.
func (c *CaptchaConfig) Validate() error {
	if c.Bypassed() {
		return nil
	}
	if c.SiteKey == "" || c.SecretKey == "" {
		return errors.New("captcha enforcement requires CAPTCHA_SITE_KEY and CAPTCHA_SECRET_KEY")
	}
	return nil
}
