package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	authmocks "github.com/bnastase-alt/rider-onboarding/internal/mocks/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/metrics"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

func TestNewCaptchaService_RequiresVerifier(t *testing.T) {
	_, err := NewCaptchaService(CaptchaServiceOptions{})
	require.Error(t, err)

	svc, err := NewCaptchaService(CaptchaServiceOptions{Bypass: true})
	require.NoError(t, err)
	assert.True(t, svc.Bypassed())
}

func TestCaptchaService_BypassSkipsVerifier(t *testing.T) {
	verifier := &authmocks.MockCaptchaVerifier{}
	sink := &recordingSink{}
	svc, err := NewCaptchaService(CaptchaServiceOptions{Verifier: verifier, Bypass: true, Metrics: sink})
	require.NoError(t, err)

	verdict, err := svc.Verify(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, verdict.Success)
	require.NoError(t, svc.Check(context.Background(), "", ""))

	assert.Zero(t, verifier.CallCount())
	assert.Equal(t, []string{metrics.ResultBypassed}, sink.results(metrics.CaptchaVerify))
}

func TestCaptchaService_MissingTokenNeverCallsVerifier(t *testing.T) {
	verifier := &authmocks.MockCaptchaVerifier{Verdict: ports.CaptchaVerdict{Success: true}}
	svc, err := NewCaptchaService(CaptchaServiceOptions{Verifier: verifier})
	require.NoError(t, err)

	err = svc.Check(context.Background(), "   ", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCaptcha(err))
	assert.Equal(t, MsgCaptchaMissing, apperrors.UserMessage(err, ""))

	verdict, err := svc.Verify(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, verdict.Success)
	assert.Equal(t, []string{"missing-input-response"}, verdict.ErrorCodes)
	assert.Zero(t, verifier.CallCount())
}

func TestCaptchaService_Check(t *testing.T) {
	tests := []struct {
		name     string
		verifier *authmocks.MockCaptchaVerifier
		wantErr  bool
		wantMsg  string
	}{
		{
			name:     "success",
			verifier: &authmocks.MockCaptchaVerifier{Verdict: ports.CaptchaVerdict{Success: true}},
		},
		{
			name: "rejected with codes",
			verifier: &authmocks.MockCaptchaVerifier{
				Verdict: ports.CaptchaVerdict{ErrorCodes: []string{"timeout-or-duplicate"}},
			},
			wantErr: true,
			wantMsg: "Captcha verification failed (timeout-or-duplicate)",
		},
		{
			name:     "relay failure",
			verifier: &authmocks.MockCaptchaVerifier{Err: errors.New("dial tcp: refused")},
			wantErr:  true,
			wantMsg:  MsgCaptchaFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewCaptchaService(CaptchaServiceOptions{Verifier: tt.verifier})
			require.NoError(t, err)

			err = svc.Check(context.Background(), "token", "203.0.113.9")
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsCaptcha(err))
			assert.Equal(t, tt.wantMsg, apperrors.UserMessage(err, ""))
			assert.Equal(t, 1, tt.verifier.CallCount())
		})
	}
}

func TestCaptchaService_VerifyRelayErrorIsInternal(t *testing.T) {
	sink := &recordingSink{}
	svc, err := NewCaptchaService(CaptchaServiceOptions{
		Verifier: &authmocks.MockCaptchaVerifier{Err: context.DeadlineExceeded},
		Metrics:  sink,
	})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), "token", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{metrics.ResultError}, sink.results(metrics.CaptchaVerify))
}
