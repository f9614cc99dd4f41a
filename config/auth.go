package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AuthMode selects the identity provider.
type AuthMode string

const (
	// AuthModeGoTrue talks to a Supabase-compatible GoTrue REST API.
	AuthModeGoTrue AuthMode = "gotrue"
	// AuthModeOIDC uses the OAuth2 password grant against an OIDC provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses a local in-memory provider (non-production only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "gotrue", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: gotrue, oidc, mock)", v)
	}
}

// RoleSource selects where the role of a signed-in user comes from.
type RoleSource string

const (
	// RoleSourceProfiles reads the role column of the profiles table.
	RoleSourceProfiles RoleSource = "profiles"
	// RoleSourceClaims evaluates a JMESPath expression over the identity claims.
	RoleSourceClaims RoleSource = "claims"
)

// UnmarshalText implements encoding.TextUnmarshaler for RoleSource.
func (r *RoleSource) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "profiles", "claims":
		*r = RoleSource(v)
		return nil
	default:
		return fmt.Errorf("invalid RoleSource: %q (valid options: profiles, claims)", v)
	}
}

// GoTrueConfig contains GoTrue connection settings.
type GoTrueConfig struct {
	URL     string `env:"URL"`
	AnonKey string `env:"ANON_KEY"`
}

// OIDCConfig contains OAuth/OIDC configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
}

// DevAuthConfig is the default account of the mock provider.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Email     string `env:"EMAIL"      envDefault:"rider@example.com"`
	Password  string `env:"PASSWORD"   envDefault:"password123"`
	UserID    string `env:"USER_ID"    envDefault:"00000000-0000-0000-0000-000000000001"`
	FirstName string `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string `env:"LAST_NAME"  envDefault:"Rider"`
	Role      string `env:"ROLE"       envDefault:"applicant"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"gotrue"`

	// RoleSource determines how the signed-in user's role is resolved.
	RoleSource RoleSource `env:"ROLE_SOURCE" envDefault:"profiles"`

	// RoleClaimExpr is the JMESPath expression used when RoleSource=claims.
	RoleClaimExpr string `env:"ROLE_CLAIM_EXPR" envDefault:"app_metadata.role"`

	// SessionTTL overrides the provider's session expiry when positive.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"0s"`

	// IdentityTimeout bounds each call to the identity provider.
	IdentityTimeout time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"10s"`

	GoTrue  GoTrueConfig  `envPrefix:"GOTRUE_"`
	OIDC    OIDCConfig    `envPrefix:"OIDC_"`
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.GoTrue.URL = strings.TrimSuffix(strings.TrimSpace(a.GoTrue.URL), "/")
	a.RoleClaimExpr = strings.TrimSpace(a.RoleClaimExpr)
	if a.IdentityTimeout <= 0 {
		a.IdentityTimeout = 10 * time.Second
	}
	if a.SessionTTL < 0 {
		a.SessionTTL = 0
	}
}

// Validate checks that the selected mode is fully configured.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeGoTrue:
		if a.GoTrue.URL == "" || a.GoTrue.AnonKey == "" {
			return errors.New("AUTH_MODE=gotrue requires GOTRUE_URL and GOTRUE_ANON_KEY")
		}
	case AuthModeOIDC:
		if a.OIDC.DiscoveryURL == "" || a.OIDC.ClientID == "" || a.OIDC.ClientSecret == "" {
			return errors.New("AUTH_MODE=oidc requires OIDC_DISCOVERY_URL, OIDC_CLIENT_ID and OIDC_CLIENT_SECRET")
		}
	case AuthModeMock:
		if a.DevAuth.Email == "" || a.DevAuth.Password == "" {
			return errors.New("AUTH_MODE=mock requires DEV_AUTH_EMAIL and DEV_AUTH_PASSWORD")
		}
	}
	if a.RoleSource == RoleSourceClaims && a.RoleClaimExpr == "" {
		return errors.New("ROLE_SOURCE=claims requires ROLE_CLAIM_EXPR")
	}
	return nil
}
