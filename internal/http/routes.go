package httpx

import (
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"strings"

	rideronboarding "github.com/bnastase-alt/rider-onboarding"
	"github.com/bnastase-alt/rider-onboarding/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth    *service.AuthService     // Required
	Forms   *service.AuthFormService // Required
	Captcha *service.CaptchaService  // Required
	Wizard  *service.WizardService   // Required

	// Optional: overrides the embedded or on-disk templates (tests).
	Templates *TemplateRenderer
	// Optional: named readiness probes reported by /healthz.
	HealthChecks map[string]HealthCheck
	// Optional: gzip responses when set.
	Compression *CompressionConfig

	CookieDomain   string
	CaptchaSiteKey string
	// Optional: proxies whose X-Forwarded-For is honored.
	TrustedProxies []netip.Prefix
	IsDev          bool         // Development mode: templates and static files are read from disk
	Logger         *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router with its middleware chain:
// Recover, Logging, CSRF, then optional compression.
func NewRouter(services RouterServices) (http.Handler, error) {
	renderer := services.Templates
	if renderer == nil {
		var err error
		renderer, err = NewTemplateRenderer(TemplateRendererConfig{
			TemplateFS: templateFS(services.IsDev, services.Logger),
			Logger:     services.Logger,
		})
		if err != nil {
			return nil, err
		}
	}

	authHandlers := &AuthHandlers{
		T:              renderer,
		Svc:            services.Auth,
		Forms:          services.Forms,
		CaptchaSiteKey: services.CaptchaSiteKey,
		CookieDomain:   services.CookieDomain,
		Proxies:        services.TrustedProxies,
		IsDev:          services.IsDev,
		Logger:         services.Logger,
	}
	uiHandlers := &UIHandlers{
		T:        renderer,
		Sessions: services.Auth,
		Wizard:   services.Wizard,
		IsDev:    services.IsDev,
		Logger:   services.Logger,
	}

	mux := http.NewServeMux()
	registerAPIRoutes(mux, &CaptchaHandlers{
		Svc:     services.Captcha,
		Proxies: services.TrustedProxies,
		Logger:  services.Logger,
	}, authHandlers)
	registerAuthRoutes(mux, authHandlers)
	registerUIRoutes(mux, uiHandlers, RequireSession(services.Auth, services.Logger))

	health := &HealthHandler{Checks: services.HealthChecks, Logger: services.Logger}
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	mux.Handle("GET /static/", staticHandler(services.IsDev, services.Logger))

	var handler http.Handler = &notFoundHandler{mux: mux, ui: uiHandlers}
	if services.Compression != nil {
		handler = Compression(*services.Compression)(handler)
	}
	handler = CSRFProtection(CSRFConfig{
		CookieDomain:   services.CookieDomain,
		ExemptPrefixes: []string{"/api/"},
	})(handler)
	handler = Logging(services.Logger)(handler)
	return Recover(services.Logger)(handler), nil
}

func registerAPIRoutes(mux *http.ServeMux, captcha *CaptchaHandlers, auth *AuthHandlers) {
	mux.HandleFunc("POST /api/verify-captcha", captcha.VerifyCaptcha)
	mux.HandleFunc("GET /api/auth/status", auth.Status)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /{$}", h.Page)
	mux.HandleFunc("POST /auth/toggle", h.Toggle)
	mux.HandleFunc("POST /auth/submit", h.Submit)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
}

// registerUIRoutes wires the protected pages behind the session gate.
func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, requireSession func(http.Handler) http.Handler) {
	elevated := RequireElevated()
	mux.Handle("GET /dashboard", requireSession(elevated(http.HandlerFunc(h.Dashboard))))

	mux.Handle("GET /applicant", requireSession(http.HandlerFunc(h.Applicant)))
	mux.Handle("POST /applicant/tabs/{tab}", requireSession(http.HandlerFunc(h.SubmitTab)))
	mux.Handle("POST /applicant/tabs/{tab}/select", requireSession(http.HandlerFunc(h.SelectTab)))
	mux.Handle("POST /applicant/sections/{section}", requireSession(http.HandlerFunc(h.SubmitSection)))
	mux.Handle("POST /applicant/sections/{section}/open", requireSession(http.HandlerFunc(h.OpenSection)))

	// Anything else under a protected prefix is gated before it can 404.
	notFound := requireSession(http.HandlerFunc(h.NotFound))
	mux.Handle("/dashboard/", notFound)
	mux.Handle("/applicant/", notFound)
}

// templateFS reads templates from disk in dev mode and from the embedded copy otherwise.
func templateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(rideronboarding.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		loggerOrDefault(logger).Warn("embedded templates unavailable, falling back to disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode and from the embedded copy otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	sub, err := fs.Sub(rideronboarding.StaticFS, "frontend/static")
	if err != nil {
		loggerOrDefault(logger).Warn("embedded static assets unavailable, falling back to disk", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static"))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServerFS(sub)), true)
}

// staticWithCacheHeaders lets browsers cache embedded assets for an hour; disk assets are never cached.
func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		handler.ServeHTTP(w, r)
	})
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// notFoundHandler wraps a ServeMux and renders the 404 page for unmatched routes.
type notFoundHandler struct {
	mux *http.ServeMux
	ui  *UIHandlers
}

// ServeHTTP implements http.Handler.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}
	// Unmatched: keep the mux's 405 for known paths, render our page for real 404s.
	cw := &captureWriter{header: make(http.Header), status: http.StatusOK}
	h.mux.ServeHTTP(cw, r)
	if cw.status != http.StatusNotFound || strings.HasPrefix(r.URL.Path, "/static/") || strings.HasPrefix(r.URL.Path, "/api/") {
		cw.flushTo(w)
		return
	}
	h.ui.NotFound(w, r)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}
