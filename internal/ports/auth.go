// Package ports defines interfaces (hexagonal ports) for auth, captcha and onboarding behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
)

// SignUpInput groups the registration payload sent to the identity service.
type SignUpInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// IdentityProvider authenticates and registers users against an external identity service.
// Adapters return *ProviderError for failures reported by the service itself so callers can
// classify them; transport failures are returned as plain errors.
type IdentityProvider interface {
	// SignInWithPassword exchanges email/password for an authenticated identity.
	SignInWithPassword(ctx context.Context, email, password string) (domainauth.Identity, error)

	// SignUp registers a new account. No session is issued.
	SignUp(ctx context.Context, in SignUpInput) error
}

// RoleResolver looks up the role attribute of an authenticated user.
type RoleResolver interface {
	ResolveRole(ctx context.Context, id domainauth.Identity) (domainauth.Role, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ProviderErrorKind classifies failures reported by the identity service.
type ProviderErrorKind string

const (
	ProviderRateLimited        ProviderErrorKind = "rate_limited"
	ProviderInvalidCredentials ProviderErrorKind = "invalid_credentials"
	ProviderUserExists         ProviderErrorKind = "user_exists"
	ProviderOther              ProviderErrorKind = "other"
)

// ProviderError is a failure reported by the identity service in its own vocabulary.
type ProviderError struct {
	Kind    ProviderErrorKind
	Status  int    // HTTP status when the provider speaks HTTP, 0 otherwise
	Message string // provider message, safe to show to users
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return "identity provider error: " + string(e.Kind)
	}
	return e.Message
}
