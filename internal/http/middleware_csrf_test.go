package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler(cfg CSRFConfig) http.Handler {
	return CSRFProtection(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func issuedCSRFCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	c := responseCookie(rec, DefaultCSRFCookieName)
	require.NotNil(t, c, "CSRF cookie not set")
	return c
}

func TestCSRFProtection_IssuesToken(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler(CSRFConfig{CookieDomain: "example.com"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	c := issuedCSRFCookie(t, rec)
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, c.Value, rec.Body.String(), "the context token matches the cookie")
	assert.False(t, c.HttpOnly, "page scripts read the token")
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "/", c.Path)
}

func TestCSRFProtection_ReusesExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "existing"})
	rec := httptest.NewRecorder()

	csrfHandler(CSRFConfig{}).ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, "existing", rec.Body.String())
}

func TestCSRFProtection_SecureCookie(t *testing.T) {
	for name, req := range map[string]*http.Request{
		"tls": httptest.NewRequest(http.MethodGet, "https://example.com/", nil),
		"forwarded proto": func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
			r.Header.Set("X-Forwarded-Proto", "https")
			return r
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			csrfHandler(CSRFConfig{}).ServeHTTP(rec, req)
			assert.True(t, issuedCSRFCookie(t, rec).Secure)
		})
	}
}

func TestCSRFProtection_Validation(t *testing.T) {
	const token = "cookie-token"

	tests := []struct {
		name        string
		method      string
		path        string
		cookie      string
		header      string
		form        url.Values
		contentType string
		want        int
	}{
		{name: "safe method", method: http.MethodGet, want: http.StatusOK},
		{name: "head", method: http.MethodHead, want: http.StatusOK},
		{name: "options", method: http.MethodOptions, want: http.StatusOK},
		{name: "post without token", method: http.MethodPost, cookie: token, want: http.StatusForbidden},
		{name: "post without cookie", method: http.MethodPost, header: token, want: http.StatusForbidden},
		{name: "header token", method: http.MethodPost, cookie: token, header: token, want: http.StatusOK},
		{name: "mismatched header", method: http.MethodPost, cookie: token, header: "other", want: http.StatusForbidden},
		{
			name:        "form token",
			method:      http.MethodPost,
			cookie:      token,
			form:        url.Values{DefaultCSRFCookieName: {token}},
			contentType: "application/x-www-form-urlencoded",
			want:        http.StatusOK,
		},
		{
			name:        "form token ignored for json",
			method:      http.MethodPost,
			cookie:      token,
			form:        url.Values{DefaultCSRFCookieName: {token}},
			contentType: "application/json",
			want:        http.StatusForbidden,
		},
		{name: "exempt prefix", method: http.MethodPost, path: "/api/verify-captcha", want: http.StatusOK},
		{name: "exempt prefix is a prefix", method: http.MethodPost, path: "/apix", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if path == "" {
				path = "/auth/submit"
			}
			var body *strings.Reader
			if tt.form != nil {
				body = strings.NewReader(tt.form.Encode())
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, path, body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(DefaultCSRFHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()

			csrfHandler(CSRFConfig{ExemptPrefixes: []string{"/api/"}}).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetCSRFToken_NoToken(t *testing.T) {
	assert.Empty(t, GetCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil)))
}
