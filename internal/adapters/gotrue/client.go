// Package gotrue implements ports.IdentityProvider against a GoTrue (Supabase Auth) server
// through the supabase-community client.
package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	gotruesdk "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// authPath is where GoTrue is mounted under a Supabase project URL.
const authPath = "/auth/v1"

// statusError matches the error text the SDK produces for non-2xx responses.
var statusError = regexp.MustCompile(`(?s)^response status code (\d{3})(?::\s?(.*))?$`)

// ClientConfig holds configuration for the GoTrue client.
type ClientConfig struct {
	BaseURL    string // project URL, e.g. https://xyz.supabase.co
	AnonKey    string // sent as apikey header and bearer token
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the GoTrue password and signup endpoints.
type Client struct {
	api       gotruesdk.Client
	timeout   time.Duration
	transport http.RoundTripper
}

var _ ports.IdentityProvider = (*Client)(nil)

// NewClient creates a GoTrue client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gotrue base URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("gotrue anon key is required")
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gotrue base URL %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		transport = cfg.HTTPClient.Transport
	}

	// The project reference is unused once a custom URL is set.
	api := gotruesdk.New(u.Host, cfg.AnonKey).
		WithCustomGoTrueURL(base + authPath).
		WithToken(cfg.AnonKey)

	return &Client{api: api, timeout: timeout, transport: transport}, nil
}

// SignInWithPassword exchanges email/password for the authenticated user.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (domainauth.Identity, error) {
	tok, err := c.withContext(ctx).SignInWithEmailPassword(email, password)
	if err != nil {
		return domainauth.Identity{}, classify("token", err)
	}
	return identityFromSession(tok.Session)
}

// SignUp registers a new account with first/last name metadata. No session is kept.
func (c *Client) SignUp(ctx context.Context, in ports.SignUpInput) error {
	_, err := c.withContext(ctx).Signup(types.SignupRequest{
		Email:    in.Email,
		Password: in.Password,
		Data:     map[string]any{"first_name": in.FirstName, "last_name": in.LastName},
	})
	if err != nil {
		return classify("signup", err)
	}
	return nil
}

// withContext returns a client copy whose requests carry ctx.
func (c *Client) withContext(ctx context.Context) gotruesdk.Client {
	return c.api.WithClient(http.Client{
		Timeout:   c.timeout,
		Transport: contextTransport{ctx: ctx, base: c.transport},
	})
}

// contextTransport binds every outgoing request to a caller context.
type contextTransport struct {
	ctx  context.Context //nolint:containedctx // scoped to a single SDK call
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// errorResponse covers both the current (error_code/msg) and legacy (error/error_description) shapes.
type errorResponse struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// classify converts a non-2xx SDK error into a *ports.ProviderError.
// Transport and decode failures are wrapped and returned as plain errors.
func classify(op string, err error) error {
	m := statusError.FindStringSubmatch(err.Error())
	if m == nil {
		return fmt.Errorf("gotrue %s: %w", op, err)
	}
	status, _ := strconv.Atoi(m[1])

	var er errorResponse
	_ = json.Unmarshal([]byte(m[2]), &er)

	msg := firstNonEmpty(er.Msg, er.Message, er.ErrorDescription, er.Error, http.StatusText(status))
	pe := &ports.ProviderError{Kind: ports.ProviderOther, Status: status, Message: msg}

	switch {
	case status == http.StatusTooManyRequests,
		strings.HasPrefix(er.ErrorCode, "over_") && strings.HasSuffix(er.ErrorCode, "_rate_limit"):
		pe.Kind = ports.ProviderRateLimited
	case er.ErrorCode == "invalid_credentials",
		strings.EqualFold(msg, "Invalid login credentials"):
		pe.Kind = ports.ProviderInvalidCredentials
	case er.ErrorCode == "user_already_exists", er.ErrorCode == "email_exists",
		strings.EqualFold(msg, "User already registered"):
		pe.Kind = ports.ProviderUserExists
	}
	return pe
}

func identityFromSession(s types.Session) (domainauth.Identity, error) {
	user := s.User
	if user.ID == uuid.Nil {
		return domainauth.Identity{}, errors.New("gotrue token response has no user")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("encode gotrue user: %w", err)
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode gotrue claims: %w", err)
	}

	expiresAt := time.Now().Add(time.Hour)
	switch {
	case s.ExpiresAt > 0:
		expiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		expiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	return domainauth.Identity{
		UserID:    user.ID.String(),
		Email:     user.Email,
		FirstName: metadataString(user.UserMetadata, "first_name"),
		LastName:  metadataString(user.UserMetadata, "last_name"),
		Claims:    claims,
		ExpiresAt: expiresAt,
	}, nil
}

func metadataString(md map[string]any, key string) string {
	s, _ := md[key].(string)
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
