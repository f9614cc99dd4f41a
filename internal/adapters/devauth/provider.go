package devauth

// Package devauth provides a config-driven IdentityProvider for local development.
// It must never be wired when APP_ENV=production.

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// Config controls the dev auth provider behavior.
// Email and Password are required; the rest have defaults.
type Config struct {
	UserID          string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	Role            string        // exposed as app_metadata.role in claims
	SessionDuration time.Duration // default 8h when zero
}

type account struct {
	identity domainauth.Identity
	password string
}

// Provider implements ports.IdentityProvider with one configured account
// plus any accounts registered through SignUp during the process lifetime.
type Provider struct {
	mu              sync.Mutex
	accounts        map[string]account // keyed by lower-cased email
	sessionDuration time.Duration
	now             func() time.Time
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("dev auth: Password is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	userID := cfg.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	role := cfg.Role
	if role == "" {
		role = string(domainauth.RoleApplicant)
	}

	p := &Provider{
		accounts:        make(map[string]account),
		sessionDuration: dur,
		now:             time.Now,
	}
	p.accounts[normalizeEmail(cfg.Email)] = account{
		identity: newIdentity(identityParams{
			userID: userID, email: cfg.Email, first: cfg.FirstName, last: cfg.LastName, role: role,
		}),
		password: cfg.Password,
	}
	return p, nil
}

// SignInWithPassword checks the credentials against the in-memory accounts.
func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (domainauth.Identity, error) {
	p.mu.Lock()
	acct, ok := p.accounts[normalizeEmail(email)]
	p.mu.Unlock()

	if !ok || acct.password != password {
		return domainauth.Identity{}, &ports.ProviderError{
			Kind:    ports.ProviderInvalidCredentials,
			Status:  400,
			Message: "Invalid login credentials",
		}
	}
	id := acct.identity
	id.ExpiresAt = p.now().Add(p.sessionDuration)
	return id, nil
}

// SignUp registers an applicant account in memory.
func (p *Provider) SignUp(_ context.Context, in ports.SignUpInput) error {
	key := normalizeEmail(in.Email)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[key]; exists {
		return &ports.ProviderError{
			Kind:    ports.ProviderUserExists,
			Status:  422,
			Message: "User already registered",
		}
	}
	p.accounts[key] = account{
		identity: newIdentity(identityParams{
			userID: uuid.NewString(),
			email:  strings.TrimSpace(in.Email),
			first:  in.FirstName,
			last:   in.LastName,
			role:   string(domainauth.RoleApplicant),
		}),
		password: in.Password,
	}
	return nil
}

type identityParams struct {
	userID, email, first, last, role string
}

func newIdentity(p identityParams) domainauth.Identity {
	return domainauth.Identity{
		UserID:    p.userID,
		Email:     p.email,
		FirstName: p.first,
		LastName:  p.last,
		Claims: map[string]any{
			"id":    p.userID,
			"email": p.email,
			"user_metadata": map[string]any{
				"first_name": p.first,
				"last_name":  p.last,
			},
			"app_metadata": map[string]any{"role": p.role},
		},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
