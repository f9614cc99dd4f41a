package auth

// Package auth contains simple hand-written test doubles for the auth, captcha and onboarding ports.
// They are safe for concurrent use and record calls for assertions.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.RoleResolver     = (*StaticRoleResolver)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.WizardStore      = (*MemoryWizardStore)(nil)
	_ ports.CaptchaVerifier  = (*MockCaptchaVerifier)(nil)
)

// ErrNotFound is returned by the memory stores when an entity is not present.
var ErrNotFound = errors.New("not found")

// MockIdentityProvider returns DefaultUser for any credentials unless a func field overrides it.
type MockIdentityProvider struct {
	SignInFunc func(ctx context.Context, email, password string) (domainauth.Identity, error)
	SignUpFunc func(ctx context.Context, in ports.SignUpInput) error

	DefaultUser domainauth.Identity

	mu          sync.Mutex
	SignInCalls int
	SignUpCalls []ports.SignUpInput
}

// NewMockIdentityProvider creates a MockIdentityProvider with a default applicant identity.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "Rider",
			Email:     "mock.rider@example.com",
			Claims:    map[string]any{"app_metadata": map[string]any{"role": "applicant"}},
		},
	}
}

func (m *MockIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (domainauth.Identity, error) {
	m.mu.Lock()
	m.SignInCalls++
	m.mu.Unlock()

	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	user := m.DefaultUser
	if user.UserID == "" {
		user.UserID = "mock-user-1"
	}
	if user.Email == "" {
		user.Email = email
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, in ports.SignUpInput) error {
	m.mu.Lock()
	m.SignUpCalls = append(m.SignUpCalls, in)
	m.mu.Unlock()

	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, in)
	}
	return nil
}

// Calls returns the number of sign-in and sign-up calls seen so far.
func (m *MockIdentityProvider) Calls() (signIns, signUps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SignInCalls, len(m.SignUpCalls)
}

// StaticRoleResolver returns Role (or Err) for every identity.
type StaticRoleResolver struct {
	Role domainauth.Role
	Err  error
}

func (r StaticRoleResolver) ResolveRole(_ context.Context, _ domainauth.Identity) (domainauth.Role, error) {
	if r.Err != nil {
		return "", r.Err
	}
	return r.Role, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemoryWizardStore is an in-memory wizard-state store for unit tests.
type MemoryWizardStore struct {
	mu     sync.Mutex
	states map[string]onboarding.State
	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewMemoryWizardStore creates a new in-memory wizard store.
func NewMemoryWizardStore() *MemoryWizardStore {
	return &MemoryWizardStore{states: make(map[string]onboarding.State)}
}

func (m *MemoryWizardStore) Load(_ context.Context, sessionID string) (onboarding.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[sessionID]
	return st, ok, nil
}

func (m *MemoryWizardStore) Save(_ context.Context, sessionID string, state onboarding.State) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = state
	return nil
}

func (m *MemoryWizardStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

// MockCaptchaVerifier returns Verdict (or Err) and counts calls.
type MockCaptchaVerifier struct {
	Verdict ports.CaptchaVerdict
	Err     error

	mu        sync.Mutex
	Tokens    []string
	RemoteIPs []string
}

func (m *MockCaptchaVerifier) Verify(_ context.Context, token, remoteIP string) (ports.CaptchaVerdict, error) {
	m.mu.Lock()
	m.Tokens = append(m.Tokens, token)
	m.RemoteIPs = append(m.RemoteIPs, remoteIP)
	m.mu.Unlock()
	if m.Err != nil {
		return ports.CaptchaVerdict{}, m.Err
	}
	return m.Verdict, nil
}

// CallCount returns how many times Verify was called.
func (m *MockCaptchaVerifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tokens)
}
