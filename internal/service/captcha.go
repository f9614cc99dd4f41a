package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/bnastase-alt/rider-onboarding/internal/errors"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/metrics"
	"github.com/bnastase-alt/rider-onboarding/internal/observability/statsd"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// User-facing captcha messages.
const (
	MsgCaptchaMissing = "Please complete the captcha"
	MsgCaptchaFailed  = "Captcha verification failed"
)

// errCodeMissingInput mirrors the verification service's code for an absent token.
const errCodeMissingInput = "missing-input-response"

// CaptchaServiceOptions groups dependencies for CaptchaService.
type CaptchaServiceOptions struct {
	Verifier ports.CaptchaVerifier // Required unless Bypass is set
	Bypass   bool                  // Skip verification entirely (non-production only)
	Metrics  statsd.Sink           // Optional: verdict counters
	Logger   *slog.Logger          // Optional: structured logger
}

// CaptchaService applies the bypass policy in front of the captcha relay.
type CaptchaService struct {
	verifier ports.CaptchaVerifier
	bypass   bool
	metrics  statsd.Sink
	logger   *slog.Logger
}

// NewCaptchaService constructs a new CaptchaService.
func NewCaptchaService(opts CaptchaServiceOptions) (*CaptchaService, error) {
	if opts.Verifier == nil && !opts.Bypass {
		return nil, errors.New("captcha verifier is required unless bypass is enabled")
	}
	return &CaptchaService{
		verifier: opts.Verifier,
		bypass:   opts.Bypass,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}, nil
}

func (s *CaptchaService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Bypassed reports whether verification is skipped.
func (s *CaptchaService) Bypassed() bool { return s.bypass }

// Verify relays a token and returns the verdict. A rejected token is a verdict, not an error;
// errors mean the verification service could not be reached or answered badly.
func (s *CaptchaService) Verify(ctx context.Context, token, remoteIP string) (ports.CaptchaVerdict, error) {
	if s.bypass {
		metrics.Emit(s.metrics, metrics.Outcome{Name: metrics.CaptchaVerify, Result: metrics.ResultBypassed})
		return ports.CaptchaVerdict{Success: true}, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		metrics.Emit(s.metrics, metrics.Outcome{Name: metrics.CaptchaVerify, Result: metrics.ResultRejected})
		return ports.CaptchaVerdict{ErrorCodes: []string{errCodeMissingInput}}, nil
	}

	start := time.Now()
	verdict, err := s.verifier.Verify(ctx, token, remoteIP)
	outcome := metrics.Outcome{Name: metrics.CaptchaVerify, Duration: time.Since(start), Err: err}
	switch {
	case err != nil:
		outcome.Result = metrics.ResultError
		metrics.Emit(s.metrics, outcome)
		s.log().WarnContext(ctx, "captcha verification unavailable", "error", err)
		return ports.CaptchaVerdict{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, genericFailureMessage)
	case !verdict.Success:
		outcome.Result = metrics.ResultRejected
		s.log().InfoContext(ctx, "captcha rejected", "error_codes", verdict.ErrorCodes)
	default:
		outcome.Result = metrics.ResultSuccess
	}
	metrics.Emit(s.metrics, outcome)
	return verdict, nil
}

// Check enforces the captcha for a form submission: a missing token fails before any network call,
// and any rejection or relay failure becomes a captcha error.
func (s *CaptchaService) Check(ctx context.Context, token, remoteIP string) error {
	if s.bypass {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return apperrors.Captcha(MsgCaptchaMissing)
	}
	verdict, err := s.Verify(ctx, token, remoteIP)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCaptcha, MsgCaptchaFailed)
	}
	if !verdict.Success {
		msg := MsgCaptchaFailed
		if len(verdict.ErrorCodes) > 0 {
			msg += " (" + strings.Join(verdict.ErrorCodes, ", ") + ")"
		}
		return apperrors.Captcha(msg)
	}
	return nil
}
