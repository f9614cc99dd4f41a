package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
	authmocks "github.com/bnastase-alt/rider-onboarding/internal/mocks/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/ports"
	"github.com/bnastase-alt/rider-onboarding/internal/service"
)

const testCSRFToken = "test-csrf-token"

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

// testEnvOptions tweaks the services behind a test router.
type testEnvOptions struct {
	Role          domainauth.Role
	RoleErr       error
	CaptchaBypass bool
	HealthChecks  map[string]HealthCheck
	Compression   *CompressionConfig
}

// testEnv is a fully wired router backed by in-memory doubles.
type testEnv struct {
	Router   http.Handler
	Renderer *TemplateRenderer
	Auth     *service.AuthService
	Wizard   *service.WizardService
	Provider *authmocks.MockIdentityProvider
	Captcha  *authmocks.MockCaptchaVerifier
	Sessions *authmocks.MemorySessionStore
	States   *authmocks.MemoryWizardStore
}

func testRules() onboarding.Rules {
	return onboarding.Rules{
		InterviewSlots: []onboarding.Option{{Value: "2024-06-10T10:00", Label: "Mon 10 June, 10:00"}},
		TrainingSlots:  []onboarding.Option{{Value: "2024-06-17T09:00", Label: "Mon 17 June, 09:00"}},
	}
}

func newTestEnv(t *testing.T, opts testEnvOptions) *testEnv {
	t.Helper()
	if opts.Role == "" {
		opts.Role = domainauth.RoleApplicant
	}

	env := &testEnv{
		Renderer: RequireTemplateRenderer(t),
		Provider: authmocks.NewMockIdentityProvider(),
		Captcha:  &authmocks.MockCaptchaVerifier{Verdict: ports.CaptchaVerdict{Success: true}},
		Sessions: authmocks.NewMemorySessionStore(),
		States:   authmocks.NewMemoryWizardStore(),
	}

	captcha, err := service.NewCaptchaService(service.CaptchaServiceOptions{
		Verifier: env.Captcha,
		Bypass:   opts.CaptchaBypass,
	})
	require.NoError(t, err)

	env.Auth, err = service.NewAuthService(service.AuthServiceOptions{
		Provider: env.Provider,
		Roles:    authmocks.StaticRoleResolver{Role: opts.Role, Err: opts.RoleErr},
		Sessions: env.Sessions,
		Wizard:   env.States,
	})
	require.NoError(t, err)

	forms, err := service.NewAuthFormService(service.AuthFormServiceOptions{Captcha: captcha, Auth: env.Auth})
	require.NoError(t, err)

	env.Wizard, err = service.NewWizardService(service.WizardServiceOptions{Store: env.States, Rules: testRules()})
	require.NoError(t, err)

	env.Router, err = NewRouter(RouterServices{
		Auth:           env.Auth,
		Forms:          forms,
		Captcha:        captcha,
		Wizard:         env.Wizard,
		Templates:      env.Renderer,
		HealthChecks:   opts.HealthChecks,
		Compression:    opts.Compression,
		CaptchaSiteKey: "test-site-key",
	})
	require.NoError(t, err)
	return env
}

// session stores a live session for role and returns its cookie.
func (e *testEnv) session(t *testing.T, role domainauth.Role) *http.Cookie {
	t.Helper()
	sess := domainauth.Session{
		ID:        "sess-" + string(role),
		UserID:    "user-" + string(role),
		FirstName: "Ada",
		LastName:  "Rider",
		Email:     "ada@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, e.Sessions.Save(context.Background(), sess))
	return &http.Cookie{Name: SessionCookieName, Value: sess.ID}
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// formPost builds a form POST carrying a valid CSRF cookie and field.
func formPost(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFCookieName, testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// htmxPost is formPost as sent by htmx.
func htmxPost(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := formPost(path, form, cookies...)
	req.Header.Set("Hx-Request", "true")
	return req
}

func getWithCookies(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// hxTriggers decodes the Hx-Trigger header.
func hxTriggers(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	raw := rec.Header().Get("Hx-Trigger")
	if raw == "" {
		return map[string]any{}
	}
	events := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(raw), &events))
	return events
}

// toast returns the message and type of a showToast trigger, if any.
func toast(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	payload, ok := hxTriggers(t, rec)[EventShowToast].(map[string]any)
	if !ok {
		return "", ""
	}
	msg, _ := payload["message"].(string)
	typ, _ := payload["type"].(string)
	return msg, typ
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *testEnv) serveHandler(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
