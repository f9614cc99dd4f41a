package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bnastase-alt/rider-onboarding/internal/ports"
	"github.com/bnastase-alt/rider-onboarding/internal/service"
)

// Relay responses.
const (
	msgCaptchaRejected = "Captcha verification failed"
	msgRelayInternal   = "Internal server error"
)

// CaptchaVerifier is the captcha operation used by the relay endpoint.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (ports.CaptchaVerdict, error)
}

var _ CaptchaVerifier = (*service.CaptchaService)(nil)

// CaptchaHandlers serves the captcha relay endpoint.
type CaptchaHandlers struct {
	Svc     CaptchaVerifier
	Proxies ProxyTrust
	Logger  *slog.Logger
}

func (h *CaptchaHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type verifyCaptchaRequest struct {
	Token string `json:"token"`
}

type verifyCaptchaResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// VerifyCaptcha relays a client token to the verification service.
// POST /api/verify-captcha {"token": "..."} → 200 verified, 400 rejected or malformed, 500 verifier failure.
func (h *CaptchaHandlers) VerifyCaptcha(w http.ResponseWriter, r *http.Request) {
	var req verifyCaptchaRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, verifyCaptchaResponse{Error: "Invalid request body"})
		return
	}

	verdict, err := h.Svc.Verify(r.Context(), req.Token, h.Proxies.ClientIP(r))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "captcha relay failed", "error", err)
		WriteJSON(w, http.StatusInternalServerError, verifyCaptchaResponse{Error: msgRelayInternal})
		return
	}
	if !verdict.Success {
		h.logger().InfoContext(r.Context(), "captcha rejected", "codes", verdict.ErrorCodes)
		WriteJSON(w, http.StatusBadRequest, verifyCaptchaResponse{Error: msgCaptchaRejected})
		return
	}
	WriteJSON(w, http.StatusOK, verifyCaptchaResponse{Success: true})
}
