package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/metrics"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/statsd"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// User-facing authentication messages.
const (
	MsgRateLimited        = "Too many login attempts. Please wait a few minutes before trying again."
	MsgInvalidCredentials = "Invalid email or password. Please try again or create an account."
	MsgDuplicateAccount   = "You already have an account. Please try resetting your password."
	MsgProfileLookup      = "We couldn't load your profile. Please try again later."
	MsgSessionExpired     = "Your session has expired. Please sign in again."
	MsgSignUpSuccess      = "Account created successfully!"

	genericFailureMessage = "Something went wrong. Please try again."
)

// DefaultSessionTTL applies when neither configuration nor the provider gives a lifetime.
const DefaultSessionTTL = 8 * time.Hour

// Credentials is the auth form payload. It is never persisted.
type Credentials struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider   ports.IdentityProvider // Required
	Roles      ports.RoleResolver     // Required
	Sessions   ports.SessionStore     // Required
	Wizard     ports.WizardStore      // Optional: onboarding state discarded on logout
	SessionTTL time.Duration          // Optional: overrides the provider token lifetime
	Metrics    statsd.Sink            // Optional
	Logger     *slog.Logger           // Optional
}

// AuthService orchestrates authentication flows by coordinating the identity provider,
// role resolution, and session persistence.
type AuthService struct {
	provider   ports.IdentityProvider
	roles      ports.RoleResolver
	sessions   ports.SessionStore
	wizard     ports.WizardStore
	sessionTTL time.Duration
	metrics    statsd.Sink
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	switch {
	case opts.Provider == nil:
		return nil, errors.New("identity provider is required")
	case opts.Roles == nil:
		return nil, errors.New("role resolver is required")
	case opts.Sessions == nil:
		return nil, errors.New("session store is required")
	}
	return &AuthService{
		provider:   opts.Provider,
		roles:      opts.Roles,
		sessions:   opts.Sessions,
		wizard:     opts.Wizard,
		sessionTTL: opts.SessionTTL,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		now:        time.Now,
	}, nil
}

// MustNewAuthService constructs a new AuthService and panics on error.
func MustNewAuthService(opts AuthServiceOptions) *AuthService {
	svc, err := NewAuthService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

func (s *AuthService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// SignInResult contains the persisted session and where to send the user.
type SignInResult struct {
	Session domainauth.Session
	Target  domainauth.RoutingTarget
}

// SignIn authenticates with email and password, resolves the user's role and persists a session.
// A failed role lookup is fatal: no session is created and no default role is assumed.
func (s *AuthService) SignIn(ctx context.Context, creds Credentials) (SignInResult, error) {
	start := s.now()
	email := strings.TrimSpace(creds.Email)

	identity, err := s.provider.SignInWithPassword(ctx, email, creds.Password)
	if err != nil {
		appErr := classifyProviderError(err)
		s.record(metrics.AuthSignIn, start, appErr)
		s.log().InfoContext(ctx, "sign-in failed", "code", appErr.Code, "error", err)
		return SignInResult{}, appErr
	}

	role, err := s.roles.ResolveRole(ctx, identity)
	if err != nil {
		appErr := apperrors.Wrap(err, apperrors.ErrCodeProfileLookup, MsgProfileLookup)
		s.record(metrics.AuthSignIn, start, appErr)
		s.log().ErrorContext(ctx, "profile lookup failed", "user_id", identity.UserID, "error", err)
		return SignInResult{}, appErr
	}

	session := s.newSession(identity, role)
	if err := s.sessions.Save(ctx, session); err != nil {
		appErr := apperrors.Wrap(fmt.Errorf("save session: %w", err), apperrors.ErrCodeInternal, genericFailureMessage)
		s.record(metrics.AuthSignIn, start, appErr)
		return SignInResult{}, appErr
	}

	s.record(metrics.AuthSignIn, start, nil)
	s.log().DebugContext(ctx, "signed in", "user_id", session.UserID, "email", session.Email, "role", session.Role)
	return SignInResult{Session: session, Target: session.Target()}, nil
}

// SignUp registers a new account. No session is created; callers send the user back to the landing page.
func (s *AuthService) SignUp(ctx context.Context, creds Credentials) error {
	start := s.now()
	err := s.provider.SignUp(ctx, ports.SignUpInput{
		Email:     strings.TrimSpace(creds.Email),
		Password:  creds.Password,
		FirstName: strings.TrimSpace(creds.FirstName),
		LastName:  strings.TrimSpace(creds.LastName),
	})
	if err != nil {
		appErr := classifyProviderError(err)
		s.record(metrics.AuthSignUp, start, appErr)
		s.log().InfoContext(ctx, "sign-up failed", "code", appErr.Code, "error", err)
		return appErr
	}
	s.record(metrics.AuthSignUp, start, nil)
	return nil
}

// GetSession retrieves a live session by ID. Expired sessions are deleted and reported as session errors.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, apperrors.Session("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(fmt.Errorf("get session: %w", err), apperrors.ErrCodeSession, MsgSessionExpired)
	}

	if s.now().After(session.ExpiresAt) {
		expired := apperrors.Session(MsgSessionExpired)
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(expired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, expired
	}

	return &session, nil
}

// Logout removes a session and any onboarding progress tied to it.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	var errs []error
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}
	if s.wizard != nil {
		if err := s.wizard.Delete(ctx, sessionID); err != nil {
			errs = append(errs, fmt.Errorf("delete wizard state: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *AuthService) newSession(identity domainauth.Identity, role domainauth.Role) domainauth.Session {
	return domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      role,
		ExpiresAt: s.expiry(identity),
	}
}

func (s *AuthService) expiry(identity domainauth.Identity) time.Time {
	now := s.now()
	switch {
	case s.sessionTTL > 0:
		return now.Add(s.sessionTTL)
	case identity.ExpiresAt.After(now):
		return identity.ExpiresAt
	default:
		return now.Add(DefaultSessionTTL)
	}
}

func (s *AuthService) record(name string, start time.Time, err *apperrors.AppError) {
	outcome := metrics.Outcome{Name: name, Result: metrics.ResultSuccess, Duration: s.now().Sub(start)}
	if err != nil {
		outcome.Err = err
		outcome.Result = metrics.ResultError
		if apperrors.IsAuthProvider(err) && err.Code != apperrors.ErrCodeProvider {
			outcome.Result = metrics.ResultRejected
		}
	}
	metrics.Emit(s.metrics, outcome)
}

// classifyProviderError converts identity-service failures into user-facing AppErrors.
// Anything that is not a provider error becomes a generic failure.
func classifyProviderError(err error) *apperrors.AppError {
	var perr *ports.ProviderError
	if !errors.As(err, &perr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Wrap(err, apperrors.ErrCodeTimeout, genericFailureMessage)
		}
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, genericFailureMessage)
	}

	switch {
	case perr.Kind == ports.ProviderRateLimited || perr.Status == http.StatusTooManyRequests:
		return apperrors.Wrap(err, apperrors.ErrCodeRateLimited, MsgRateLimited)
	case perr.Kind == ports.ProviderInvalidCredentials:
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidCredentials, MsgInvalidCredentials)
	case perr.Kind == ports.ProviderUserExists:
		return apperrors.Wrap(err, apperrors.ErrCodeDuplicateAccount, MsgDuplicateAccount)
	default:
		msg := strings.TrimSpace(perr.Message)
		if msg == "" {
			msg = genericFailureMessage
		}
		return apperrors.Wrap(err, apperrors.ErrCodeProvider, msg)
	}
}

// generateSessionID creates a random, URL-safe session ID.
func generateSessionID() string {
	return uuid.New().String()
}
