package ports

import (
	"context"

	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
)

// CaptchaVerdict is the outcome of one verification attempt.
type CaptchaVerdict struct {
	Success    bool
	ErrorCodes []string
}

// CaptchaVerifier relays a client token to the external verification service.
// Transport failures, timeouts and non-2xx responses are returned as errors, never as success.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (CaptchaVerdict, error)
}

// WizardStore persists onboarding progress for a session.
// Load returns (state, false, nil) when nothing has been stored yet.
type WizardStore interface {
	Load(ctx context.Context, sessionID string) (onboarding.State, bool, error)
	Save(ctx context.Context, sessionID string, state onboarding.State) error
	Delete(ctx context.Context, sessionID string) error
}
