package recaptcha

// Package recaptcha relays captcha tokens to a siteverify-compatible endpoint
// (Google reCAPTCHA, hCaptcha and Turnstile all accept the same form POST).

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// DefaultVerifyURL is Google's reCAPTCHA siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

const maxResponseBytes = 64 << 10

// VerifierConfig holds configuration for the siteverify client.
type VerifierConfig struct {
	Secret     string
	VerifyURL  string        // defaults to DefaultVerifyURL
	Timeout    time.Duration // per call; defaults to 5s
	HTTPClient *http.Client  // optional
}

// Verifier implements ports.CaptchaVerifier. It never retries.
type Verifier struct {
	secret    string
	verifyURL string
	timeout   time.Duration
	client    *http.Client
}

var _ ports.CaptchaVerifier = (*Verifier)(nil)

// NewVerifier creates a Verifier.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("captcha secret is required")
	}
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if _, err := url.ParseRequestURI(verifyURL); err != nil {
		return nil, fmt.Errorf("invalid captcha verify URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Verifier{secret: cfg.Secret, verifyURL: verifyURL, timeout: timeout, client: client}, nil
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to the verification endpoint and decodes the verdict.
// Transport failures, timeouts and non-2xx statuses are errors.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (ports.CaptchaVerdict, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return ports.CaptchaVerdict{}, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return ports.CaptchaVerdict{}, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return ports.CaptchaVerdict{}, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return ports.CaptchaVerdict{}, fmt.Errorf("decode siteverify response: %w", err)
	}
	return ports.CaptchaVerdict{Success: body.Success, ErrorCodes: body.ErrorCodes}, nil
}
