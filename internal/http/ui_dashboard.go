package httpx

import (
	"net/http"
	"time"

	"github.com/bnastase-alt/rider-onboarding/internal/http/uiutil"
)

// Dashboard renders the operator landing page. RequireElevated keeps applicants out.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := h.guardLayout(w, r)
	if !ok {
		return
	}
	data := NewTemplateData(r, PageMeta{
		Title:       "Dashboard | " + appTitle,
		PageTitle:   "Dashboard",
		CurrentPage: PageDashboard,
	}).
		With("Greeting", session.DisplayName()).
		With("Role", string(session.Role)).
		With("SessionExpiresAt", session.ExpiresAt).
		With("SessionExpiresIn", uiutil.FriendlyRemaining(session.ExpiresAt, time.Now())).
		Build()
	h.pages().Page(w, r, http.StatusOK, data)
}

// NotFound renders the 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.pages().renderErrorPage(w, r, ErrorPageOpts{
		Status:  http.StatusNotFound,
		Title:   "Page not found",
		Message: "The page you're looking for doesn't exist.",
	})
}
