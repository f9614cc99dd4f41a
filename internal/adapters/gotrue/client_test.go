package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

const userOne = "0d3c8a52-7f1e-4b7a-9a51-3c2d1e0f9b8a"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(ClientConfig{BaseURL: srv.URL, AnonKey: "anon", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestSignInWithPassword_Success(t *testing.T) {
	expires := time.Now().Add(time.Hour).Unix()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))

		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jo@example.com", body.Email)
		assert.Equal(t, "hunter22!", body.Password)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "jwt",
			"expires_at":   expires,
			"user": map[string]any{
				"id":            userOne,
				"email":         "jo@example.com",
				"user_metadata": map[string]any{"first_name": "Jo", "last_name": "Bloggs"},
				"app_metadata":  map[string]any{"role": "recruiter"},
			},
		})
	})

	id, err := c.SignInWithPassword(context.Background(), "jo@example.com", "hunter22!")
	require.NoError(t, err)
	assert.Equal(t, userOne, id.UserID)
	assert.Equal(t, "jo@example.com", id.Email)
	assert.Equal(t, "Jo", id.FirstName)
	assert.Equal(t, "Bloggs", id.LastName)
	assert.Equal(t, time.Unix(expires, 0), id.ExpiresAt)

	appMeta, ok := id.Claims["app_metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "recruiter", appMeta["role"])
}

func TestSignInWithPassword_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ports.ProviderErrorKind
		wantMsg  string
	}{
		{
			name:     "rate limited by status",
			status:   http.StatusTooManyRequests,
			body:     `{"code":429,"error_code":"over_request_rate_limit","msg":"Request rate limit reached"}`,
			wantKind: ports.ProviderRateLimited,
			wantMsg:  "Request rate limit reached",
		},
		{
			name:     "invalid credentials",
			status:   http.StatusBadRequest,
			body:     `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`,
			wantKind: ports.ProviderInvalidCredentials,
			wantMsg:  "Invalid login credentials",
		},
		{
			name:     "legacy invalid grant",
			status:   http.StatusBadRequest,
			body:     `{"error":"invalid_grant","error_description":"Invalid login credentials"}`,
			wantKind: ports.ProviderInvalidCredentials,
			wantMsg:  "Invalid login credentials",
		},
		{
			name:     "email not confirmed",
			status:   http.StatusBadRequest,
			body:     `{"code":400,"error_code":"email_not_confirmed","msg":"Email not confirmed"}`,
			wantKind: ports.ProviderOther,
			wantMsg:  "Email not confirmed",
		},
		{
			name:     "empty body",
			status:   http.StatusServiceUnavailable,
			body:     ``,
			wantKind: ports.ProviderOther,
			wantMsg:  "Service Unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.SignInWithPassword(context.Background(), "jo@example.com", "pw")
			var pe *ports.ProviderError
			require.True(t, errors.As(err, &pe), "want ProviderError, got %v", err)
			assert.Equal(t, tt.wantKind, pe.Kind)
			assert.Equal(t, tt.status, pe.Status)
			assert.Equal(t, tt.wantMsg, pe.Message)
		})
	}
}

func TestSignInWithPassword_MissingUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"jwt"}`))
	})
	_, err := c.SignInWithPassword(context.Background(), "a@b.co", "pw")
	assert.Error(t, err)
}

func TestSignUp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		var body struct {
			Email string            `json:"email"`
			Data  map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new@example.com", body.Email)
		assert.Equal(t, map[string]string{"first_name": "Sam", "last_name": "Rider"}, body.Data)
		_, _ = w.Write([]byte(`{"id":"6b0f1c3e-2d4a-4f6b-9c8d-1e2f3a4b5c6d","email":"new@example.com"}`))
	})

	err := c.SignUp(context.Background(), ports.SignUpInput{
		Email: "new@example.com", Password: "longenough", FirstName: "Sam", LastName: "Rider",
	})
	assert.NoError(t, err)
}

func TestSignUp_AlreadyRegistered(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`))
	})

	err := c.SignUp(context.Background(), ports.SignUpInput{Email: "a@b.co", Password: "longenough"})
	var pe *ports.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ports.ProviderUserExists, pe.Kind)
}

func TestSignIn_TransportErrorIsNotProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, err := NewClient(ClientConfig{BaseURL: srv.URL, AnonKey: "anon"})
	require.NoError(t, err)
	srv.Close()

	_, err = c.SignInWithPassword(context.Background(), "a@b.co", "pw")
	require.Error(t, err)
	var pe *ports.ProviderError
	assert.False(t, errors.As(err, &pe))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientConfig{AnonKey: "k"})
	assert.EqualError(t, err, "gotrue base URL is required")

	_, err = NewClient(ClientConfig{BaseURL: "http://x"})
	assert.EqualError(t, err, "gotrue anon key is required")

	_, err = NewClient(ClientConfig{BaseURL: "not a url", AnonKey: "k"})
	assert.Error(t, err)
}

func TestSignIn_HonorsContextCancel(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SignInWithPassword(ctx, "a@b.co", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var pe *ports.ProviderError
	assert.False(t, errors.As(err, &pe))
}

func TestSignUp_ServerErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.SignUp(context.Background(), ports.SignUpInput{Email: "a@b.co", Password: "longenough"})
	var pe *ports.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ports.ProviderOther, pe.Kind)
	assert.Equal(t, http.StatusInternalServerError, pe.Status)
	assert.Equal(t, "Internal Server Error", pe.Message)
}
