package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"

	domainauth "github.com/bnastase-alt/rider-onboarding/internal/domain/auth"
	"github.com/bnastase-alt/rider-onboarding/internal/domain/onboarding"
	"github.com/bnastase-alt/rider-onboarding/internal/service"
)

// WizardService is the subset of onboarding operations the UI needs.
type WizardService interface {
	Load(ctx context.Context, sessionID string) (onboarding.State, error)
	SubmitTab(ctx context.Context, sessionID string, tab onboarding.TabID, get func(string) string) (service.StepResult, error)
	SelectTab(ctx context.Context, sessionID string, tab onboarding.TabID) (onboarding.State, error)
	SubmitSection(
		ctx context.Context,
		sessionID string,
		section onboarding.SectionID,
		get func(string) string,
	) (service.StepResult, error)
	Navigate(ctx context.Context, sessionID string, section onboarding.SectionID) (onboarding.State, error)
	Rules() onboarding.Rules
}

var _ WizardService = (*service.WizardService)(nil)

// UIHandlers serves the protected browser pages.
type UIHandlers struct {
	T        *TemplateRenderer
	Sessions SessionReader
	Wizard   WizardService
	IsDev    bool // Development mode flag for enhanced error reporting
	Logger   *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) pages() pageRenderer {
	return pageRenderer{T: h.T, IsDev: h.IsDev, Logger: h.logger()}
}

// guardLayout runs before any protected page is rendered. It requires a session in the
// request context and confirms it is still live in the store. On failure it redirects
// to the landing page and returns false.
func (h *UIHandlers) guardLayout(w http.ResponseWriter, r *http.Request) (*domainauth.Session, bool) {
	session := CurrentSession(r.Context())
	if session == nil {
		redirect(w, r, string(domainauth.RouteLanding))
		return nil, false
	}
	if h.Sessions != nil {
		fresh, err := h.Sessions.GetSession(r.Context(), session.ID)
		if err != nil {
			h.logger().WarnContext(r.Context(), "layout session check failed", "path", r.URL.Path, "error", err)
			redirect(w, r, string(domainauth.RouteLanding))
			return nil, false
		}
		session = fresh
	}
	return session, true
}

// pageRenderer renders pages with htmx partial support. It is shared by every handler group.
type pageRenderer struct {
	T      *TemplateRenderer
	IsDev  bool
	Logger *slog.Logger
}

// Page renders data as a full page, or as the content area plus out-of-band title updates
// when htmx asks for a partial. Status 0 means 200.
func (p pageRenderer) Page(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if !WantsPartial(r) {
		if err := p.T.RenderFull(withStatus(w, status), r, data); err != nil {
			p.templateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w = withStatus(w, status)

	title, _ := data["Title"].(string)
	pageTitle, _ := data["PageTitle"].(string)
	page, _ := data["CurrentPage"].(string)

	// A <title> element lets htmx update document.title on partial swaps.
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>`)); err != nil {
		p.Logger.Error("failed to write partial document title", "error", err)
		return
	}
	if _, err := w.Write([]byte(
		`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` + html.EscapeString(pageTitle) + `</h1>`,
	)); err != nil {
		p.Logger.Error("failed to write partial header title", "error", err)
		return
	}
	if err := p.T.t.ExecuteTemplate(w, ContentTemplateFor(page), data); err != nil {
		p.Logger.Error("partial content render failed", "error", err, "path", r.URL.Path)
	}
}

// Fragment renders a named fragment on its own.
func (p pageRenderer) Fragment(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := p.T.RenderFragment(w, name, data); err != nil {
		p.templateError(w, r, err, "fragment "+name)
	}
}

// templateError logs template errors and shows the detail in dev mode.
func (p pageRenderer) templateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	p.Logger.Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if p.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(
			`<div class="template-error"><h2>Template Rendering Error</h2>` +
				`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
				`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
				`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`,
		)); writeErr != nil {
			p.Logger.Error("failed to write template error response", "error", writeErr)
		}
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
