package oidc

// Package oidc provides an IdentityProvider backed by an OIDC/OAuth2 server
// using the resource-owner password grant.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
)

// SignUpUnsupportedMessage is the provider message returned by SignUp.
const SignUpUnsupportedMessage = "Sign up is not available. Please contact your recruiter."

// Provider implements ports.IdentityProvider using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client
	timeout    time.Duration

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.IdentityProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string
	Timeout      time.Duration // per identity call; defaults to 10s
	HTTPClient   *http.Client  // Optional, defaults to a client with a 30s timeout
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider creates a new OIDC provider. It performs discovery once.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx = gooidc.ClientContext(ctx, httpClient)
	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scope := config.Scope
	if strings.TrimSpace(scope) == "" {
		scope = "openid profile email"
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       strings.Fields(scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient:   httpClient,
		timeout:      timeout,
		oidcProvider: op,
		verifier:     op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

// SignInWithPassword runs the password grant and maps the ID token (or userinfo) claims to an Identity.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (domainauth.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return domainauth.Identity{}, classifyTokenError(err)
	}

	claims, err := p.claimsFromToken(ctx, token)
	if err != nil {
		return domainauth.Identity{}, err
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		UserID:    claimString(claims, "sub"),
		Email:     firstNonEmpty(claimString(claims, "email"), email),
		FirstName: claimString(claims, "given_name"),
		LastName:  claimString(claims, "family_name"),
		Claims:    claims,
		ExpiresAt: expiresAt,
	}, nil
}

// SignUp is not offered by generic OIDC servers.
func (p *Provider) SignUp(_ context.Context, _ ports.SignUpInput) error {
	return &ports.ProviderError{Kind: ports.ProviderOther, Message: SignUpUnsupportedMessage}
}

func (p *Provider) claimsFromToken(ctx context.Context, tok *oauth2.Token) (map[string]any, error) {
	claims := map[string]any{}
	if p.hasOpenIDScope() {
		rawID, err := getIDTokenFromToken(tok)
		if err != nil {
			return nil, err
		}
		idTok, err := p.verifier.Verify(ctx, rawID)
		if err != nil {
			return nil, fmt.Errorf("verify id_token: %w", err)
		}
		if err := idTok.Claims(&claims); err != nil {
			return nil, fmt.Errorf("parse id_token claims: %w", err)
		}
	}
	if claimString(claims, "sub") != "" {
		return claims, nil
	}

	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	extra := map[string]any{}
	if err := ui.Claims(&extra); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	for k, v := range extra {
		if _, ok := claims[k]; !ok {
			claims[k] = v
		}
	}
	if claimString(claims, "sub") == "" {
		return nil, errors.New("identity has no subject")
	}
	return claims, nil
}

// classifyTokenError maps token endpoint failures to provider errors.
// invalid_grant is what RFC 6749 servers return for a wrong password.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return fmt.Errorf("password grant: %w", err)
	}
	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	pe := &ports.ProviderError{
		Kind:    ports.ProviderOther,
		Status:  status,
		Message: firstNonEmpty(re.ErrorDescription, re.ErrorCode, http.StatusText(status)),
	}
	switch {
	case status == http.StatusTooManyRequests:
		pe.Kind = ports.ProviderRateLimited
	case re.ErrorCode == "invalid_grant":
		pe.Kind = ports.ProviderInvalidCredentials
	}
	return pe
}

func (p *Provider) hasOpenIDScope() bool {
	return slices.Contains(p.config.Scopes, "openid")
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
