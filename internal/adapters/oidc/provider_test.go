package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newIdentityServer serves discovery, a password-grant token endpoint and userinfo.
func newIdentityServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, DiscoveryDocument{
			Issuer:                srv.URL,
			AuthorizationEndpoint: srv.URL + "/authorize",
			TokenEndpoint:         srv.URL + "/token",
			UserinfoEndpoint:      srv.URL + "/userinfo",
			JwksURI:               srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		switch {
		case r.PostForm.Get("username") == "busy@example.com":
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "slow_down"})
		case r.PostForm.Get("grant_type") != "password" || r.PostForm.Get("password") != "correct-horse":
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid user credentials",
			})
		default:
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "at-123",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"sub":         "user-42",
			"email":       "jo@example.com",
			"given_name":  "Jo",
			"family_name": "Bloggs",
			"roles":       []string{"recruiter"},
		})
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func createTestProvider(t *testing.T) *Provider {
	t.Helper()
	srv := newIdentityServer(t)
	provider, err := NewProvider(context.Background(), ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Scope:        "profile email",
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	return provider
}

func TestNewProvider_Success(t *testing.T) {
	provider := createTestProvider(t)
	assert.Contains(t, provider.config.Endpoint.TokenURL, "/token")
	assert.Equal(t, []string{"profile", "email"}, provider.config.Scopes)
	assert.False(t, provider.hasOpenIDScope())
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "secret", DiscoveryURL: "http://example.com"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "client", DiscoveryURL: "http://example.com"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret"},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSignInWithPassword_Success(t *testing.T) {
	provider := createTestProvider(t)

	id, err := provider.SignInWithPassword(context.Background(), "jo@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.Equal(t, "jo@example.com", id.Email)
	assert.Equal(t, "Jo", id.FirstName)
	assert.Equal(t, "Bloggs", id.LastName)
	assert.Equal(t, []any{"recruiter"}, id.Claims["roles"])
	assert.False(t, id.ExpiresAt.IsZero())
}

func TestSignInWithPassword_InvalidGrant(t *testing.T) {
	provider := createTestProvider(t)

	_, err := provider.SignInWithPassword(context.Background(), "jo@example.com", "wrong")
	var pe *ports.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ports.ProviderInvalidCredentials, pe.Kind)
	assert.Equal(t, "Invalid user credentials", pe.Message)
}

func TestSignInWithPassword_RateLimited(t *testing.T) {
	provider := createTestProvider(t)

	_, err := provider.SignInWithPassword(context.Background(), "busy@example.com", "correct-horse")
	var pe *ports.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ports.ProviderRateLimited, pe.Kind)
	assert.Equal(t, http.StatusTooManyRequests, pe.Status)
}

func TestSignUp_Unsupported(t *testing.T) {
	provider := createTestProvider(t)

	err := provider.SignUp(context.Background(), ports.SignUpInput{Email: "a@b.co"})
	var pe *ports.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ports.ProviderOther, pe.Kind)
	assert.Equal(t, SignUpUnsupportedMessage, pe.Message)
}

func TestClassifyTokenError_Transport(t *testing.T) {
	err := classifyTokenError(errors.New("dial tcp: connection refused"))
	var pe *ports.ProviderError
	assert.False(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "password grant")
}

func TestGetIDTokenFromToken(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	idTok, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", idTok)

	_, err = getIDTokenFromToken((&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id_token")

	_, err = getIDTokenFromToken(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil token")
}
